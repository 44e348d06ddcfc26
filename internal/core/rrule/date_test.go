package rrule

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateArithmetic(t *testing.T) {
	d := date(2024, time.February, 28)

	assert.Equal(t, date(2024, time.February, 29), d.AddDays(1))
	assert.Equal(t, date(2024, time.March, 1), d.AddDays(2))
	assert.Equal(t, date(2024, time.May, 1), d.AddMonths(3))
	assert.Equal(t, 29, d.DaysInMonth())
	assert.Equal(t, 28, date(2025, time.February, 1).DaysInMonth())
	assert.Equal(t, time.Wednesday, d.Weekday())
	assert.Equal(t, 366, date(2025, time.February, 28).DaysSince(d))
	assert.Equal(t, -1, d.Compare(d.AddDays(1)))
	assert.Equal(t, 0, d.Compare(date(2024, time.February, 28)))
	assert.Equal(t, d, MinDate(d, d.AddDays(3)))
	assert.Equal(t, d.AddDays(3), MaxDate(d, d.AddDays(3)))
}

func TestDateAtAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2025-03-09 02:30 does not exist in New York; the date must not change.
	at := date(2025, time.March, 9).At(2, 30, loc)
	assert.Equal(t, date(2025, time.March, 9), DateOf(at))
	assert.Equal(t, 19, date(2025, time.March, 9).At(19, 0, loc).Hour())
}

func TestDateJSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		On Date `json:"on"`
	}{On: date(2025, time.January, 5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"on":"2025-01-05"}`, string(raw))

	var decoded struct {
		On Date `json:"on"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"on":"2026-12-31"}`), &decoded))
	assert.Equal(t, date(2026, time.December, 31), decoded.On)

	require.Error(t, json.Unmarshal([]byte(`{"on":"31/12/2026"}`), &decoded))
}
