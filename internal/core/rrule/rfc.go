package rrule

import (
	"fmt"
	"time"

	rfc "github.com/teambition/rrule-go"
)

var rfcWeekdays = [...]rfc.Weekday{rfc.SU, rfc.MO, rfc.TU, rfc.WE, rfc.TH, rfc.FR, rfc.SA}

var rfcFrequencies = map[Frequency]rfc.Frequency{
	Daily:   rfc.DAILY,
	Weekly:  rfc.WEEKLY,
	Monthly: rfc.MONTHLY,
	Yearly:  rfc.YEARLY,
}

// ToRFC5545 translates r into an RFC 5545 rule anchored at dtstart, the
// first occurrence's start in the series location. Yearly rules pin BYMONTH to
// dtstart's month so calendar clients expand them the same way we do.
// UNTIL becomes the last second of that date in dtstart's location.
func ToRFC5545(r RecurrenceRule, dtstart time.Time) (*rfc.RRule, error) {
	if r.IsZero() {
		return nil, fmt.Errorf("rrule: cannot translate an empty rule")
	}

	opt := rfc.ROption{
		Freq:     rfcFrequencies[r.freq],
		Dtstart:  dtstart,
		Interval: r.interval,
		Wkst:     rfc.MO,
		Count:    r.count,
	}

	if until, ok := r.until.Get(); ok {
		opt.Until = time.Date(until.Year, until.Month, until.Day, 23, 59, 59, 0, dtstart.Location())
	}
	if r.weekOfMonth != 0 {
		opt.Byweekday = []rfc.Weekday{rfcWeekdays[r.weekday].Nth(r.weekOfMonth)}
	}
	for _, wd := range r.byWeekday {
		opt.Byweekday = append(opt.Byweekday, rfcWeekdays[wd])
	}
	if r.byMonthDay != 0 {
		opt.Bymonthday = []int{r.byMonthDay}
	}
	if r.freq == Yearly {
		opt.Bymonth = []int{int(dtstart.Month())}
	}

	rule, err := rfc.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("rrule: translate %q: %w", r.String(), err)
	}
	return rule, nil
}

// ToRFC5545Set wraps ToRFC5545 with the rule's excluded dates as EXDATEs at
// dtstart's wall-clock time.
func ToRFC5545Set(r RecurrenceRule, dtstart time.Time) (*rfc.Set, error) {
	rule, err := ToRFC5545(r, dtstart)
	if err != nil {
		return nil, err
	}

	set := &rfc.Set{}
	set.RRule(rule)
	for _, d := range r.excluded {
		set.ExDate(d.At(dtstart.Hour(), dtstart.Minute(), dtstart.Location()))
	}
	return set, nil
}

// RFCString returns the RRULE value (without the "RRULE:" prefix) for
// calendar export.
func RFCString(r RecurrenceRule, dtstart time.Time) (string, error) {
	rule, err := ToRFC5545(r, dtstart)
	if err != nil {
		return "", err
	}
	return rule.OrigOptions.RRuleString(), nil
}
