package rrule

import (
	"strconv"
	"strings"
	"time"

	"github.com/tempo-lab/project-tempo/internal/core/i18n"
)

var workWeek = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// DescribeRRule renders a rule as a sentence in locale, e.g.
// "Every 2 weeks on Tuesday and Thursday until Dec 31, 2025".
// Unknown locales fall back to English. Yearly rules repeat in their series'
// start month, which the rule alone does not carry; use DescribeSeriesRule
// when the start date is known.
func DescribeRRule(r RecurrenceRule, locale i18n.Locale) string {
	return describe(r, 0, locale)
}

// DescribeSeriesRule is DescribeRRule for a rule anchored on seriesStart.
// Yearly rules name the month they repeat in, e.g.
// "Every year on the first Monday of March".
func DescribeSeriesRule(r RecurrenceRule, seriesStart Date, locale i18n.Locale) string {
	return describe(r, seriesStart.Month, locale)
}

// describe renders r. month is the yearly anchor month, or 0 when unknown.
func describe(r RecurrenceRule, month time.Month, locale i18n.Locale) string {
	if r.IsZero() {
		return ""
	}
	c := i18n.Messages(locale)
	if r.freq != Yearly || month < time.January || month > time.December {
		month = 0
	}

	var b strings.Builder
	if r.isWorkWeek() {
		b.WriteString(c.EveryWeekday)
	} else {
		b.WriteString(c.Frequency[string(r.freq)].Format(r.interval))

		switch {
		case r.weekOfMonth != 0 && month != 0:
			b.WriteString(strings.NewReplacer(
				"{ordinal}", c.Ordinal(r.weekOfMonth),
				"{weekday}", c.Weekday(r.weekday),
				"{month}", c.Month(month),
			).Replace(c.OnNthWeekdayOf))
		case r.weekOfMonth != 0:
			b.WriteString(strings.NewReplacer(
				"{ordinal}", c.Ordinal(r.weekOfMonth),
				"{weekday}", c.Weekday(r.weekday),
			).Replace(c.OnNthWeekday))
		case len(r.byWeekday) > 0:
			names := make([]string, len(r.byWeekday))
			for i, wd := range r.byWeekday {
				names[i] = c.Weekday(wd)
			}
			b.WriteString(strings.ReplaceAll(c.OnWeekdays, "{days}", c.JoinList(names)))
		}

		switch {
		case r.byMonthDay == -1:
			b.WriteString(c.OnLastDay)
		case r.byMonthDay < 0:
			b.WriteString(strings.ReplaceAll(c.OnDayFromEnd, "{day}", strconv.Itoa(-r.byMonthDay)))
		case r.byMonthDay > 0:
			b.WriteString(strings.ReplaceAll(c.OnMonthDay, "{day}", strconv.Itoa(r.byMonthDay)))
		}

		if month != 0 && r.weekOfMonth == 0 {
			b.WriteString(strings.ReplaceAll(c.InMonth, "{month}", c.Month(month)))
		}
	}

	if until, ok := r.until.Get(); ok {
		date := c.FormatUntil(until.Year, until.Month, until.Day, until.Weekday())
		b.WriteString(strings.ReplaceAll(c.EndUntil, "{date}", date))
	}
	if r.count > 0 {
		b.WriteString(c.EndCount.Format(r.count))
	}
	return b.String()
}

// ShortLabel is a compact, locale-agnostic badge for a rule. Token is a
// catalog key such as "weekly" or "every_weeks"; Interval fills its count.
type ShortLabel struct {
	Token    string `json:"token"`
	Interval int    `json:"interval"`
}

// GetShortRRuleLabel returns the badge label for r ("Weekly", "Every 2 weeks").
func GetShortRRuleLabel(r RecurrenceRule) ShortLabel {
	switch {
	case r.IsZero():
		return ShortLabel{}
	case r.isWorkWeek():
		return ShortLabel{Token: "weekdays", Interval: 1}
	case r.interval == 1:
		return ShortLabel{Token: string(r.freq), Interval: 1}
	}

	unit := map[Frequency]string{Daily: "days", Weekly: "weeks", Monthly: "months", Yearly: "years"}[r.freq]
	return ShortLabel{Token: "every_" + unit, Interval: r.interval}
}

// Localize renders the label with locale's catalog.
func (l ShortLabel) Localize(locale i18n.Locale) string {
	if l.Token == "" {
		return ""
	}
	return i18n.Messages(locale).ShortLabel(l.Token, l.Interval)
}

func (l ShortLabel) String() string {
	return l.Localize(i18n.English)
}

// isWorkWeek matches "every weekday": Monday through Friday on a daily or
// weekly cadence with no other selector.
func (r RecurrenceRule) isWorkWeek() bool {
	if r.interval != 1 || r.byMonthDay != 0 || r.weekOfMonth != 0 {
		return false
	}
	if r.freq != Daily && r.freq != Weekly {
		return false
	}
	if len(r.byWeekday) != len(workWeek) {
		return false
	}
	for _, wd := range workWeek {
		if !hasWeekday(r.byWeekday, wd) {
			return false
		}
	}
	return true
}
