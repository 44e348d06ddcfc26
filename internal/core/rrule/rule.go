// Package rrule converts recurrence rules between their structured form and
// the serialized string persisted with a series, and renders them for humans.
package rrule

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/mo"
)

// Frequency is the base period of a rule.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// LastWeekOfMonth selects the last occurrence of a weekday in its month.
const LastWeekOfMonth = -1

// MaxCount bounds COUNT. Windowed expansion of a COUNT rule walks from the
// series start, so the bound also bounds the work of one query.
const MaxCount = 10000

// Fields is the unvalidated, structured input to NewRule and BuildRRule.
// Zero values mean "absent" except for Weekday, which is only read when
// WeekOfMonth is set.
type Fields struct {
	Frequency     string
	Interval      mo.Option[int]
	ByWeekday     []time.Weekday
	ByMonthDay    int
	WeekOfMonth   int
	Weekday       time.Weekday
	Until         mo.Option[Date]
	Count         int
	ExcludedDates []Date
}

// RecurrenceRule is a validated, immutable recurrence rule. Build one with
// NewRule or ParseRRule.
type RecurrenceRule struct {
	freq        Frequency
	interval    int
	byWeekday   []time.Weekday
	byMonthDay  int
	weekOfMonth int
	weekday     time.Weekday
	until       mo.Option[Date]
	count       int
	excluded    []Date
}

// NewRule validates fields and returns the normalized rule. Weekdays are
// de-duplicated and ordered Monday first, excluded dates are sorted.
func NewRule(f Fields) (RecurrenceRule, error) {
	freq := Frequency(strings.ToLower(strings.TrimSpace(f.Frequency)))
	if !freq.Valid() {
		return RecurrenceRule{}, invalid("frequency", "unknown frequency %q", f.Frequency)
	}

	interval := 1
	if n, ok := f.Interval.Get(); ok {
		if n < 1 {
			return RecurrenceRule{}, invalid("interval", "must be at least 1, got %d", n)
		}
		interval = n
	}

	for _, wd := range f.ByWeekday {
		if wd < time.Sunday || wd > time.Saturday {
			return RecurrenceRule{}, invalid("by_weekday", "unknown weekday %d", wd)
		}
	}

	if f.ByMonthDay < -31 || f.ByMonthDay > 31 {
		return RecurrenceRule{}, invalid("by_month_day", "must be within [-31, 31] excluding 0, got %d", f.ByMonthDay)
	}

	if f.WeekOfMonth != 0 {
		switch f.WeekOfMonth {
		case 1, 2, 3, 4, LastWeekOfMonth:
		default:
			return RecurrenceRule{}, invalid("week_of_month", "must be 1, 2, 3, 4 or -1, got %d", f.WeekOfMonth)
		}
		if f.Weekday < time.Sunday || f.Weekday > time.Saturday {
			return RecurrenceRule{}, invalid("weekday", "unknown weekday %d", f.Weekday)
		}
	}

	if f.Count < 0 {
		return RecurrenceRule{}, invalid("count", "must be positive, got %d", f.Count)
	}
	if f.Count > MaxCount {
		return RecurrenceRule{}, invalid("count", "must be at most %d, got %d", MaxCount, f.Count)
	}

	if until, ok := f.Until.Get(); ok && until.IsZero() {
		return RecurrenceRule{}, invalid("until", "must be a calendar date")
	}

	switch {
	case f.WeekOfMonth != 0 && (freq == Daily || freq == Weekly):
		return RecurrenceRule{}, invalid("week_of_month", "only applies to monthly or yearly rules")
	case f.WeekOfMonth != 0 && len(f.ByWeekday) > 0:
		return RecurrenceRule{}, invalid("week_of_month", "cannot be combined with by_weekday")
	case f.WeekOfMonth != 0 && f.ByMonthDay != 0:
		return RecurrenceRule{}, invalid("week_of_month", "cannot be combined with by_month_day")
	case f.ByMonthDay != 0 && freq == Weekly:
		return RecurrenceRule{}, invalid("by_month_day", "does not apply to weekly rules")
	}

	excluded := make([]Date, 0, len(f.ExcludedDates))
	for _, d := range f.ExcludedDates {
		if d.IsZero() {
			return RecurrenceRule{}, invalid("excluded_dates", "must be calendar dates")
		}
		excluded = append(excluded, d)
	}
	slices.SortFunc(excluded, Date.Compare)
	excluded = slices.Compact(excluded)

	r := RecurrenceRule{
		freq:       freq,
		interval:   interval,
		byWeekday:  normalizeWeekdays(f.ByWeekday),
		byMonthDay: f.ByMonthDay,
		until:      f.Until,
		count:      f.Count,
		excluded:   excluded,
	}
	if f.WeekOfMonth != 0 {
		r.weekOfMonth = f.WeekOfMonth
		r.weekday = f.Weekday
	}
	if len(r.excluded) == 0 {
		r.excluded = nil
	}
	return r, nil
}

func (r RecurrenceRule) Frequency() Frequency { return r.freq }
func (r RecurrenceRule) Interval() int        { return r.interval }
func (r RecurrenceRule) ByMonthDay() int      { return r.byMonthDay }
func (r RecurrenceRule) Until() mo.Option[Date] {
	return r.until
}
func (r RecurrenceRule) Count() int { return r.count }

// ByWeekday returns a copy of the weekday set, Monday first.
func (r RecurrenceRule) ByWeekday() []time.Weekday {
	return slices.Clone(r.byWeekday)
}

// WeekOfMonth returns the nth-weekday selector, if the rule has one.
func (r RecurrenceRule) WeekOfMonth() (week int, weekday time.Weekday, ok bool) {
	return r.weekOfMonth, r.weekday, r.weekOfMonth != 0
}

// ExcludedDates returns a sorted copy of the cancelled dates.
func (r RecurrenceRule) ExcludedDates() []Date {
	return slices.Clone(r.excluded)
}

// IsExcluded reports whether d was cancelled from the series.
func (r RecurrenceRule) IsExcluded(d Date) bool {
	_, found := slices.BinarySearchFunc(r.excluded, d, Date.Compare)
	return found
}

// IsZero reports whether r was never constructed.
func (r RecurrenceRule) IsZero() bool {
	return r.freq == ""
}

// OpenEnded reports whether the rule has neither an end date nor a count.
func (r RecurrenceRule) OpenEnded() bool {
	return r.until.IsAbsent() && r.count == 0
}

// Fields returns the structured form of r. NewRule(r.Fields()) equals r.
func (r RecurrenceRule) Fields() Fields {
	return Fields{
		Frequency:     string(r.freq),
		Interval:      mo.Some(r.interval),
		ByWeekday:     r.ByWeekday(),
		ByMonthDay:    r.byMonthDay,
		WeekOfMonth:   r.weekOfMonth,
		Weekday:       r.weekday,
		Until:         r.until,
		Count:         r.count,
		ExcludedDates: r.ExcludedDates(),
	}
}

// WithExcludedDate returns a copy of r that also excludes d.
func (r RecurrenceRule) WithExcludedDate(d Date) RecurrenceRule {
	if d.IsZero() || r.IsExcluded(d) {
		return r
	}
	out := r
	out.byWeekday = slices.Clone(r.byWeekday)
	out.excluded = append(slices.Clone(r.excluded), d)
	slices.SortFunc(out.excluded, Date.Compare)
	return out
}

// Equal reports whether two rules describe the same recurrence. Rules are
// normalized on construction, so an implicit interval of 1 equals an explicit
// one and weekday order does not matter.
func (r RecurrenceRule) Equal(o RecurrenceRule) bool {
	if r.freq != o.freq || r.interval != o.interval || r.byMonthDay != o.byMonthDay ||
		r.weekOfMonth != o.weekOfMonth || r.count != o.count {
		return false
	}
	if r.weekOfMonth != 0 && r.weekday != o.weekday {
		return false
	}
	ru, rok := r.until.Get()
	ou, ook := o.until.Get()
	if rok != ook || ru != ou {
		return false
	}
	return slices.Equal(r.byWeekday, o.byWeekday) && slices.Equal(r.excluded, o.excluded)
}

// AreRRulesEqual reports whether a and b are semantically equal.
func AreRRulesEqual(a, b RecurrenceRule) bool {
	return a.Equal(b)
}

// mondayFirst orders Monday=0 .. Sunday=6.
func mondayFirst(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func normalizeWeekdays(in []time.Weekday) []time.Weekday {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.SortFunc(out, func(a, b time.Weekday) int {
		return mondayFirst(a) - mondayFirst(b)
	})
	return slices.Compact(out)
}

func hasWeekday(set []time.Weekday, wd time.Weekday) bool {
	return slices.Contains(set, wd)
}
