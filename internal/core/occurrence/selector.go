package occurrence

import (
	"slices"
	"time"

	"github.com/tempo-lab/project-tempo/internal/core/rrule"
)

// selector is one day-selection strategy. A day belongs to the pattern when
// every selector of the rule matches it.
type selector interface {
	matches(d rrule.Date) bool
}

type byWeekday struct {
	days []time.Weekday
}

func (s byWeekday) matches(d rrule.Date) bool {
	return slices.Contains(s.days, d.Weekday())
}

// byMonthDay selects a day of the month; negative values count from the end.
// Months without that day contribute nothing.
type byMonthDay struct {
	day int
}

func (s byMonthDay) matches(d rrule.Date) bool {
	if s.day > 0 {
		return d.Day == s.day
	}
	return d.Day == d.DaysInMonth()+s.day+1
}

// nthWeekday selects the nth weekday of the month, or the last one for -1.
type nthWeekday struct {
	week    int
	weekday time.Weekday
}

func (s nthWeekday) matches(d rrule.Date) bool {
	if d.Weekday() != s.weekday {
		return false
	}
	if s.week == rrule.LastWeekOfMonth {
		return d.Day+7 > d.DaysInMonth()
	}
	return (d.Day-1)/7+1 == s.week
}

// selectorsFor returns the rule's day filters. A rule without explicit
// filters is anchored on the series start: same weekday for weekly rules,
// same day of month for monthly and yearly rules, every day for daily rules.
func selectorsFor(r rrule.RecurrenceRule, start rrule.Date) []selector {
	var sels []selector
	if days := r.ByWeekday(); len(days) > 0 {
		sels = append(sels, byWeekday{days: days})
	}
	if day := r.ByMonthDay(); day != 0 {
		sels = append(sels, byMonthDay{day: day})
	}
	if week, wd, ok := r.WeekOfMonth(); ok {
		sels = append(sels, nthWeekday{week: week, weekday: wd})
	}
	if len(sels) > 0 {
		return sels
	}

	switch r.Frequency() {
	case rrule.Weekly:
		return []selector{byWeekday{days: []time.Weekday{start.Weekday()}}}
	case rrule.Monthly, rrule.Yearly:
		return []selector{byMonthDay{day: start.Day}}
	}
	return nil
}

func matchesAll(sels []selector, d rrule.Date) bool {
	for _, s := range sels {
		if !s.matches(d) {
			return false
		}
	}
	return true
}

// period is an inclusive range of candidate days.
type period struct {
	first, last rrule.Date
}

// periodAt returns the k-th period of the rule counted from the period that
// contains start. Weeks start on Monday. Yearly periods cover only the start
// date's month.
func periodAt(freq rrule.Frequency, start rrule.Date, interval, k int) period {
	step := k * interval
	switch freq {
	case rrule.Daily:
		d := start.AddDays(step)
		return period{first: d, last: d}
	case rrule.Weekly:
		first := weekStart(start).AddDays(7 * step)
		return period{first: first, last: first.AddDays(6)}
	case rrule.Monthly:
		first := rrule.NewDate(start.Year, start.Month, 1).AddMonths(step)
		return period{first: first, last: first.AddDays(first.DaysInMonth() - 1)}
	default:
		first := rrule.NewDate(start.Year+step, start.Month, 1)
		return period{first: first, last: first.AddDays(first.DaysInMonth() - 1)}
	}
}

// periodIndex returns the largest k whose period starts on or before d.
func periodIndex(freq rrule.Frequency, start, d rrule.Date, interval int) int {
	var n int
	switch freq {
	case rrule.Daily:
		n = d.DaysSince(start)
	case rrule.Weekly:
		n = weekStart(d).DaysSince(weekStart(start)) / 7
	case rrule.Monthly:
		n = (d.Year-start.Year)*12 + int(d.Month) - int(start.Month)
	default:
		n = d.Year - start.Year
	}
	if n <= 0 {
		return 0
	}
	return n / interval
}

func weekStart(d rrule.Date) rrule.Date {
	return d.AddDays(-((int(d.Weekday()) + 6) % 7))
}
