package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tempo-lab/project-tempo/internal/core/rrule"
)

func TestRuleFields_ToFields(t *testing.T) {
	two := 2

	tests := []struct {
		name    string
		in      RuleFields
		want    string
		wantErr string
	}{
		{
			name: "biweekly on two days",
			in:   RuleFields{Frequency: "weekly", Interval: &two, ByWeekday: []string{"th", "TU"}},
			want: "FREQ=WEEKLY;INTERVAL=2;BYDAY=TU,TH",
		},
		{
			name: "last friday with end date",
			in:   RuleFields{Frequency: "monthly", WeekOfMonth: -1, Weekday: "FR", Until: "2025-12-31"},
			want: "FREQ=MONTHLY;BYDAY=-1FR;UNTIL=20251231",
		},
		{
			name: "daily with exclusions",
			in:   RuleFields{Frequency: "daily", Count: 10, ExcludedDates: []string{"2025-01-03"}},
			want: "FREQ=DAILY;COUNT=10;EXDATE=20250103",
		},
		{
			name:    "unknown day code",
			in:      RuleFields{Frequency: "weekly", ByWeekday: []string{"XX"}},
			wantErr: "by_weekday",
		},
		{
			name:    "malformed until",
			in:      RuleFields{Frequency: "daily", Until: "31/12/2025"},
			wantErr: "until",
		},
		{
			name:    "nth weekday without weekday",
			in:      RuleFields{Frequency: "monthly", WeekOfMonth: 2},
			wantErr: "weekday",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := tt.in.ToFields()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			got, err := rrule.BuildRRule(fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuleFieldsFrom_RoundTrip(t *testing.T) {
	for _, s := range []string{
		"FREQ=DAILY",
		"FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE,FR",
		"FREQ=MONTHLY;BYDAY=2TU;COUNT=6",
		"FREQ=MONTHLY;BYMONTHDAY=-1;UNTIL=20261231",
		"FREQ=YEARLY;EXDATE=20270101,20280101",
	} {
		r := rrule.MustParse(s)

		fields, err := RuleFieldsFrom(r).ToFields()
		require.NoError(t, err, s)

		back, err := rrule.NewRule(fields)
		require.NoError(t, err, s)
		assert.True(t, rrule.AreRRulesEqual(r, back), s)
	}
}

func TestCreateSeriesRequest_Validate(t *testing.T) {
	valid := func() CreateSeriesRequest {
		return CreateSeriesRequest{
			Slug:            "tuesday-run-club",
			Title:           "Tuesday Run Club",
			RRule:           "FREQ=WEEKLY;BYDAY=TU",
			StartDate:       "2025-01-07",
			StartTime:       "19:00",
			DurationMinutes: 90,
			Timezone:        "America/New_York",
		}
	}

	req := valid()
	req.Slug = "  tuesday-run-club "
	require.NoError(t, req.Validate())
	assert.Equal(t, "tuesday-run-club", req.Slug)

	for name, mutate := range map[string]func(*CreateSeriesRequest){
		"slug":     func(r *CreateSeriesRequest) { r.Slug = "" },
		"delims":   func(r *CreateSeriesRequest) { r.Slug = "a/b" },
		"title":    func(r *CreateSeriesRequest) { r.Title = " " },
		"rule":     func(r *CreateSeriesRequest) { r.RRule = "" },
		"date":     func(r *CreateSeriesRequest) { r.StartDate = "" },
		"time":     func(r *CreateSeriesRequest) { r.StartTime = "" },
		"duration": func(r *CreateSeriesRequest) { r.DurationMinutes = 0 },
		"timezone": func(r *CreateSeriesRequest) { r.Timezone = "" },
	} {
		req := valid()
		mutate(&req)
		assert.Error(t, req.Validate(), name)
	}

	withFields := valid()
	withFields.RRule = ""
	withFields.Rule = &RuleFields{Frequency: "daily"}
	assert.NoError(t, withFields.Validate())
}
