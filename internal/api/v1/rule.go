package v1

import (
	"fmt"
	"time"

	"github.com/samber/mo"
	"github.com/tempo-lab/project-tempo/internal/core/rrule"
)

// RuleFields is the JSON form of a recurrence rule as edited in the series form.
type RuleFields struct {
	// Frequency is one of daily, weekly, monthly, yearly.
	Frequency string `json:"frequency"`

	// Interval defaults to 1 when omitted.
	Interval *int `json:"interval,omitempty"`

	// ByWeekday holds two-letter day codes ("MO", "TU", ...).
	ByWeekday []string `json:"by_weekday,omitempty"`

	// ByMonthDay is 1..31, or -1..-31 counting from the month's end.
	ByMonthDay int `json:"by_month_day,omitempty"`

	// WeekOfMonth and Weekday together select "the 2nd Tuesday" (2, "TU")
	// or "the last Friday" (-1, "FR").
	WeekOfMonth int    `json:"week_of_month,omitempty"`
	Weekday     string `json:"weekday,omitempty"`

	// Until is an inclusive end date, YYYY-MM-DD.
	Until string `json:"until,omitempty"`

	Count int `json:"count,omitempty"`

	// ExcludedDates are YYYY-MM-DD dates skipped by the series.
	ExcludedDates []string `json:"excluded_dates,omitempty"`
}

// ToFields converts the JSON form into rule fields. Only shape errors
// (unknown day codes, malformed dates) are reported here; rule semantics are
// validated by rrule.NewRule.
func (f RuleFields) ToFields() (rrule.Fields, error) {
	out := rrule.Fields{
		Frequency:   f.Frequency,
		ByMonthDay:  f.ByMonthDay,
		WeekOfMonth: f.WeekOfMonth,
		Count:       f.Count,
	}

	if f.Interval != nil {
		out.Interval = mo.Some(*f.Interval)
	}

	for _, code := range f.ByWeekday {
		wd, ok := rrule.ParseDayAbbreviation(code)
		if !ok {
			return rrule.Fields{}, fmt.Errorf("by_weekday: unknown day code %q", code)
		}
		out.ByWeekday = append(out.ByWeekday, wd)
	}

	if f.WeekOfMonth != 0 {
		wd, ok := rrule.ParseDayAbbreviation(f.Weekday)
		if !ok {
			return rrule.Fields{}, fmt.Errorf("weekday: unknown day code %q", f.Weekday)
		}
		out.Weekday = wd
	}

	if f.Until != "" {
		until, err := rrule.ParseDate(f.Until)
		if err != nil {
			return rrule.Fields{}, fmt.Errorf("until: %w", err)
		}
		out.Until = mo.Some(until)
	}

	for _, s := range f.ExcludedDates {
		d, err := rrule.ParseDate(s)
		if err != nil {
			return rrule.Fields{}, fmt.Errorf("excluded_dates: %w", err)
		}
		out.ExcludedDates = append(out.ExcludedDates, d)
	}

	return out, nil
}

// RuleFieldsFrom renders a validated rule in its JSON form.
func RuleFieldsFrom(r rrule.RecurrenceRule) RuleFields {
	out := RuleFields{
		Frequency:  string(r.Frequency()),
		ByMonthDay: r.ByMonthDay(),
		Count:      r.Count(),
	}
	if n := r.Interval(); n != 1 {
		out.Interval = &n
	}
	for _, wd := range r.ByWeekday() {
		out.ByWeekday = append(out.ByWeekday, rrule.GetDayAbbreviation(wd))
	}
	if week, wd, ok := r.WeekOfMonth(); ok {
		out.WeekOfMonth = week
		out.Weekday = rrule.GetDayAbbreviation(wd)
	}
	if until, ok := r.Until().Get(); ok {
		out.Until = until.String()
	}
	for _, d := range r.ExcludedDates() {
		out.ExcludedDates = append(out.ExcludedDates, d.String())
	}
	return out
}

// RuleResponse is returned by the build and parse endpoints.
type RuleResponse struct {
	RRule       string             `json:"rrule"`
	Fields      RuleFields         `json:"fields"`
	Description string             `json:"description"`
	ShortLabel  string             `json:"short_label"`
	Diagnostics []rrule.Diagnostic `json:"diagnostics,omitempty"`
}

// ParseRuleRequest is the body of POST /v1/rrule/parse.
type ParseRuleRequest struct {
	RRule string `json:"rrule" binding:"required"`
}

// PresetResponse is one entry of GET /v1/rrule/presets.
type PresetResponse struct {
	Key         string     `json:"key"`
	Label       string     `json:"label"`
	RRule       string     `json:"rrule"`
	Fields      RuleFields `json:"fields"`
	Description string     `json:"description"`
}

// Occurrence is one generated date of a rule or series.
type Occurrence struct {
	Date     string     `json:"date"`
	Display  string     `json:"display"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

// OccurrenceList is returned by the preview and series occurrence endpoints.
// Truncated is set when the generation cap stopped the expansion early.
type OccurrenceList struct {
	RRule       string       `json:"rrule"`
	Description string       `json:"description"`
	Occurrences []Occurrence `json:"occurrences"`
	Truncated   bool         `json:"truncated"`
}
