package rrule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"
)

const (
	rfcDateLayout     = "20060102"
	rfcDateTimeLayout = "20060102T150405"
)

var (
	tagNamePattern = regexp.MustCompile(`^[A-Z][A-Z0-9-]*$`)
	byDayPattern   = regexp.MustCompile(`^([+-]?[0-9]{1,2})?(MO|TU|WE|TH|FR|SA|SU)$`)

	dayCodes = [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}
)

// BuildRRule validates fields and returns the canonical serialized rule.
func BuildRRule(f Fields) (string, error) {
	r, err := NewRule(f)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

// String returns the canonical serialization, e.g.
// "FREQ=WEEKLY;INTERVAL=2;BYDAY=TU,TH;UNTIL=20251231". Tags are emitted in a
// fixed order and INTERVAL is omitted when it is 1.
func (r RecurrenceRule) String() string {
	if r.IsZero() {
		return ""
	}

	parts := []string{"FREQ=" + strings.ToUpper(string(r.freq))}
	if r.interval != 1 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(r.interval))
	}
	if r.weekOfMonth != 0 {
		parts = append(parts, fmt.Sprintf("BYDAY=%d%s", r.weekOfMonth, dayCodes[r.weekday]))
	} else if len(r.byWeekday) > 0 {
		codes := make([]string, len(r.byWeekday))
		for i, wd := range r.byWeekday {
			codes[i] = dayCodes[wd]
		}
		parts = append(parts, "BYDAY="+strings.Join(codes, ","))
	}
	if r.byMonthDay != 0 {
		parts = append(parts, "BYMONTHDAY="+strconv.Itoa(r.byMonthDay))
	}
	if until, ok := r.until.Get(); ok {
		parts = append(parts, "UNTIL="+until.Time().Format(rfcDateLayout))
	}
	if r.count > 0 {
		parts = append(parts, "COUNT="+strconv.Itoa(r.count))
	}
	if len(r.excluded) > 0 {
		dates := make([]string, len(r.excluded))
		for i, d := range r.excluded {
			dates[i] = d.Time().Format(rfcDateLayout)
		}
		parts = append(parts, "EXDATE="+strings.Join(dates, ","))
	}
	return strings.Join(parts, ";")
}

// ParseRRule decodes a serialized rule. Tag order does not matter, an optional
// "RRULE:" prefix is accepted, and well-formed tags this codec does not model
// (WKST, BYHOUR, X-...) are ignored so newer writers stay readable.
func ParseRRule(s string) (RecurrenceRule, error) {
	input := s
	s = strings.TrimSpace(s)
	if len(s) >= 6 && strings.EqualFold(s[:6], "RRULE:") {
		s = s[6:]
	}
	if s == "" {
		return RecurrenceRule{}, &ParseError{Input: input, Reason: "empty rule"}
	}

	var (
		f      Fields
		seen   = make(map[string]bool)
		setPos int
		byDay  []byDayEntry
	)

	for _, component := range strings.Split(s, ";") {
		component = strings.TrimSpace(component)
		if component == "" {
			continue
		}

		key, value, ok := strings.Cut(component, "=")
		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if !ok || key == "" {
			return RecurrenceRule{}, &ParseError{Input: input, Tag: component, Reason: "expected KEY=VALUE"}
		}
		if !tagNamePattern.MatchString(key) {
			return RecurrenceRule{}, &ParseError{Input: input, Tag: key, Reason: "malformed tag name"}
		}
		if seen[key] {
			return RecurrenceRule{}, &ParseError{Input: input, Tag: key, Reason: "duplicate tag"}
		}
		seen[key] = true

		fail := func(format string, args ...any) (RecurrenceRule, error) {
			return RecurrenceRule{}, &ParseError{Input: input, Tag: key, Reason: fmt.Sprintf(format, args...)}
		}

		switch key {
		case "FREQ":
			freq := Frequency(strings.ToLower(value))
			if !freq.Valid() {
				return fail("unsupported frequency %q", value)
			}
			f.Frequency = string(freq)
		case "INTERVAL":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fail("not an integer: %q", value)
			}
			f.Interval = mo.Some(n)
		case "BYDAY":
			entries, err := parseByDay(value)
			if err != nil {
				return fail("%v", err)
			}
			byDay = entries
		case "BYSETPOS":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fail("only a single integer position is supported: %q", value)
			}
			setPos = n
		case "BYMONTHDAY":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fail("only a single integer day is supported: %q", value)
			}
			if n == 0 {
				return fail("day must not be 0")
			}
			f.ByMonthDay = n
		case "UNTIL":
			d, err := parseRFCDate(value)
			if err != nil {
				return fail("%v", err)
			}
			f.Until = mo.Some(d)
		case "COUNT":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return fail("must be a positive integer: %q", value)
			}
			f.Count = n
		case "EXDATE":
			for _, raw := range strings.Split(value, ",") {
				d, err := parseRFCDate(strings.TrimSpace(raw))
				if err != nil {
					return fail("%v", err)
				}
				f.ExcludedDates = append(f.ExcludedDates, d)
			}
		}
	}

	if f.Frequency == "" {
		return RecurrenceRule{}, &ParseError{Input: input, Tag: "FREQ", Reason: "missing required tag"}
	}

	if err := applyByDay(&f, byDay, setPos); err != nil {
		return RecurrenceRule{}, &ParseError{Input: input, Tag: "BYDAY", Reason: err.Error()}
	}

	r, err := NewRule(f)
	if err != nil {
		return RecurrenceRule{}, &ParseError{Input: input, Reason: err.Error(), Err: err}
	}
	return r, nil
}

// IsValidRRule reports whether s parses into a valid rule.
func IsValidRRule(s string) bool {
	_, err := ParseRRule(s)
	return err == nil
}

// MustParse is ParseRRule for rules known to be valid. It panics on error.
func MustParse(s string) RecurrenceRule {
	r, err := ParseRRule(s)
	if err != nil {
		panic(err)
	}
	return r
}

type byDayEntry struct {
	ordinal int
	weekday time.Weekday
}

func parseByDay(value string) ([]byDayEntry, error) {
	var entries []byDayEntry
	for _, raw := range strings.Split(value, ",") {
		m := byDayPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(raw)))
		if m == nil {
			return nil, fmt.Errorf("malformed weekday %q", raw)
		}
		entry := byDayEntry{weekday: weekdayFromCode(m[2])}
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil || n == 0 {
				return nil, fmt.Errorf("malformed ordinal in %q", raw)
			}
			entry.ordinal = n
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func applyByDay(f *Fields, entries []byDayEntry, setPos int) error {
	hasOrdinal := false
	for _, e := range entries {
		if e.ordinal != 0 {
			hasOrdinal = true
		}
	}

	switch {
	case setPos != 0:
		if len(entries) != 1 || hasOrdinal {
			return fmt.Errorf("BYSETPOS requires exactly one weekday without ordinal")
		}
		f.WeekOfMonth = setPos
		f.Weekday = entries[0].weekday
	case hasOrdinal:
		if len(entries) != 1 {
			return fmt.Errorf("an ordinal weekday cannot be combined with other weekdays")
		}
		f.WeekOfMonth = entries[0].ordinal
		f.Weekday = entries[0].weekday
	default:
		for _, e := range entries {
			f.ByWeekday = append(f.ByWeekday, e.weekday)
		}
	}
	return nil
}

func parseRFCDate(value string) (Date, error) {
	value = strings.TrimSuffix(strings.ToUpper(value), "Z")
	layout := rfcDateLayout
	if strings.Contains(value, "T") {
		layout = rfcDateTimeLayout
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return Date{}, fmt.Errorf("malformed date %q", value)
	}
	return DateOf(t), nil
}

func weekdayFromCode(code string) time.Weekday {
	for i, c := range dayCodes {
		if c == code {
			return time.Weekday(i)
		}
	}
	return time.Sunday
}
