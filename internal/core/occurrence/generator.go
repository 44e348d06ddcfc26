// Package occurrence expands recurrence rules into concrete dates.
//
// Expansion is pure and deterministic. Every call is bounded: at most
// MaxOccurrences results, and never past MaxHorizonYears after the later of
// the series start and the window start. Callers needing more dates re-invoke
// with an advanced window.
package occurrence

import (
	"time"

	"github.com/tempo-lab/project-tempo/internal/core/rrule"
)

const (
	// MaxOccurrences caps the number of occurrences returned by one call.
	MaxOccurrences = 1000

	// MaxHorizonYears bounds how far past the window start one call looks.
	MaxHorizonYears = 50
)

// Occurrence is one date produced by a rule. Start and End are set only for
// series instances.
type Occurrence struct {
	Date     rrule.Date
	Start    time.Time
	End      time.Time
	Excluded bool
}

// Options tune a single expansion.
type Options struct {
	// Limit caps the result below MaxOccurrences. Zero means MaxOccurrences.
	Limit int
	// IncludeExcluded keeps cancelled dates in the output, flagged Excluded.
	IncludeExcluded bool
}

func (o Options) limit() int {
	if o.Limit <= 0 || o.Limit > MaxOccurrences {
		return MaxOccurrences
	}
	return o.Limit
}

// Expansion is the result of Expand. Truncated reports that the rule has
// further occurrences in the requested window that were cut by the limit or
// the horizon.
type Expansion struct {
	Occurrences []Occurrence
	Truncated   bool
}

// GenerateOccurrences returns every date in [windowStart, windowEnd] on or
// after seriesStart that the rule selects, ascending and without duplicates.
// COUNT is cumulative from seriesStart and is applied before exclusions.
func GenerateOccurrences(r rrule.RecurrenceRule, seriesStart, windowStart, windowEnd rrule.Date, opts ...Options) []Occurrence {
	return Expand(r, seriesStart, windowStart, windowEnd, opts...).Occurrences
}

// Expand is GenerateOccurrences with truncation reporting.
func Expand(r rrule.RecurrenceRule, seriesStart, windowStart, windowEnd rrule.Date, opts ...Options) Expansion {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	limit := o.limit()

	var exp Expansion
	clipped := walk(r, seriesStart, windowStart, windowEnd, func(d rrule.Date, excluded bool) bool {
		if excluded && !o.IncludeExcluded {
			return true
		}
		if len(exp.Occurrences) == limit {
			exp.Truncated = true
			return false
		}
		exp.Occurrences = append(exp.Occurrences, Occurrence{Date: d, Excluded: excluded})
		return true
	})
	exp.Truncated = exp.Truncated || clipped
	return exp
}

// GetUpcomingOccurrences returns the next limit occurrences on or after from.
func GetUpcomingOccurrences(r rrule.RecurrenceRule, seriesStart, from rrule.Date, limit int) []Occurrence {
	if limit <= 0 {
		return nil
	}
	to := horizonFrom(rrule.MaxDate(seriesStart, from))
	return GenerateOccurrences(r, seriesStart, from, to, Options{Limit: limit})
}

// FirstOccurrence returns the first date the rule selects on or after
// seriesStart, counting excluded dates. It reports false when the rule
// selects nothing before the horizon.
func FirstOccurrence(r rrule.RecurrenceRule, seriesStart rrule.Date) (rrule.Date, bool) {
	occs := GenerateOccurrences(r, seriesStart, seriesStart, horizonFrom(seriesStart),
		Options{Limit: 1, IncludeExcluded: true})
	if len(occs) == 0 {
		return rrule.Date{}, false
	}
	return occs[0].Date, true
}

// IsOccurrenceDate reports whether the rule produces an occurrence on d.
// Excluded dates are not occurrences.
func IsOccurrenceDate(r rrule.RecurrenceRule, seriesStart, d rrule.Date) bool {
	return len(GenerateOccurrences(r, seriesStart, d, d, Options{Limit: 1})) == 1
}

// GetOccurrenceCount counts what GenerateOccurrences would return for the
// same arguments, without building the slice.
func GetOccurrenceCount(r rrule.RecurrenceRule, seriesStart, windowStart, windowEnd rrule.Date) int {
	n := 0
	walk(r, seriesStart, windowStart, windowEnd, func(_ rrule.Date, excluded bool) bool {
		if excluded {
			return true
		}
		if n == MaxOccurrences {
			return false
		}
		n++
		return true
	})
	return n
}

// walk visits the rule's dates in the window in ascending order until visit
// returns false. It reports whether the window was clipped by the horizon.
func walk(r rrule.RecurrenceRule, seriesStart, windowStart, windowEnd rrule.Date, visit func(d rrule.Date, excluded bool) bool) bool {
	if r.IsZero() || windowEnd.Before(windowStart) {
		return false
	}

	from := rrule.MaxDate(seriesStart, windowStart)
	to := windowEnd
	clipped := false
	if horizon := horizonFrom(from); to.After(horizon) {
		to = horizon
		clipped = true
	}
	if until, ok := r.Until().Get(); ok && until.Before(to) {
		to = until
		clipped = false
	}
	if to.Before(from) {
		return false
	}

	sels := selectorsFor(r, seriesStart)
	count := r.Count()

	// Without COUNT nothing before the window matters, so skip straight to it.
	k := 0
	if count == 0 {
		k = periodIndex(r.Frequency(), seriesStart, from, r.Interval())
	}

	seen := 0
	for ; ; k++ {
		p := periodAt(r.Frequency(), seriesStart, r.Interval(), k)
		if p.first.After(to) {
			return clipped
		}

		for d := p.first; !d.After(p.last); d = d.AddDays(1) {
			if d.Before(seriesStart) {
				continue
			}
			if d.After(to) {
				return clipped
			}
			if !matchesAll(sels, d) {
				continue
			}

			seen++
			if count > 0 && seen > count {
				return false
			}
			if d.Before(from) {
				continue
			}
			if !visit(d, r.IsExcluded(d)) {
				return false
			}
		}
	}
}

func horizonFrom(d rrule.Date) rrule.Date {
	return rrule.NewDate(d.Year+MaxHorizonYears, d.Month, d.Day)
}
