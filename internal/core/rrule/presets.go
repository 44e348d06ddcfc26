package rrule

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/tempo-lab/project-tempo/internal/core/i18n"
)

// Preset is a named quick-pick rule offered by the series form.
type Preset struct {
	Key  string
	Rule RecurrenceRule
}

var presets = []Preset{
	{Key: "daily", Rule: mustRule(Fields{Frequency: string(Daily)})},
	{Key: "weekdays", Rule: mustRule(Fields{Frequency: string(Weekly), ByWeekday: workWeek})},
	{Key: "weekly", Rule: mustRule(Fields{Frequency: string(Weekly)})},
	{Key: "biweekly", Rule: mustRule(Fields{Frequency: string(Weekly), Interval: mo.Some(2)})},
	{Key: "monthly", Rule: mustRule(Fields{Frequency: string(Monthly)})},
	{Key: "monthly_nth_weekday", Rule: mustRule(Fields{Frequency: string(Monthly), WeekOfMonth: 1, Weekday: time.Monday})},
	{Key: "yearly", Rule: mustRule(Fields{Frequency: string(Yearly)})},
}

// GetRecurrencePresets returns the preset catalog in display order. The
// returned slice is a copy.
func GetRecurrencePresets() []Preset {
	return slices.Clone(presets)
}

// LookupPreset finds a preset by key.
func LookupPreset(key string) (Preset, bool) {
	for _, p := range presets {
		if p.Key == key {
			return p, true
		}
	}
	return Preset{}, false
}

// Label returns the preset's display name in locale.
func (p Preset) Label(locale i18n.Locale) string {
	return i18n.Messages(locale).PresetLabel(p.Key)
}

// ApplyTo anchors the preset on an example date: weekly presets repeat on
// the date's weekday and the nth-weekday preset uses the date's position in
// its month.
func (p Preset) ApplyTo(d Date) RecurrenceRule {
	f := p.Rule.Fields()
	switch p.Key {
	case "weekly", "biweekly":
		f.ByWeekday = []time.Weekday{d.Weekday()}
	case "monthly_nth_weekday":
		f.WeekOfMonth = GetWeekOfMonth(d)
		f.Weekday = d.Weekday()
	default:
		return p.Rule
	}

	anchored, err := NewRule(f)
	if err != nil {
		return p.Rule
	}
	return anchored
}

// GetDayAbbreviation returns the two-letter RFC 5545 code for wd ("MO").
func GetDayAbbreviation(wd time.Weekday) string {
	if wd < time.Sunday || wd > time.Saturday {
		return ""
	}
	return dayCodes[wd]
}

// ParseDayAbbreviation is the inverse of GetDayAbbreviation. It accepts
// lowercase codes.
func ParseDayAbbreviation(code string) (time.Weekday, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for i, c := range dayCodes {
		if c == code {
			return time.Weekday(i), true
		}
	}
	return time.Sunday, false
}

// GetWeekOfMonth returns which occurrence of its weekday d is within the
// month: 1 to 4, or -1 when it is the last one. The last occurrence always
// reports -1, even when it is also the fourth.
func GetWeekOfMonth(d Date) int {
	if d.Day+7 > d.DaysInMonth() {
		return LastWeekOfMonth
	}
	return (d.Day-1)/7 + 1
}

// GetDefaultRecurrenceData returns the rule pre-filled in a new series form:
// weekly on today's weekday with no end.
func GetDefaultRecurrenceData(today Date) RecurrenceRule {
	return mustRule(Fields{
		Frequency: string(Weekly),
		ByWeekday: []time.Weekday{today.Weekday()},
	})
}

func mustRule(f Fields) RecurrenceRule {
	r, err := NewRule(f)
	if err != nil {
		panic(err)
	}
	return r
}
