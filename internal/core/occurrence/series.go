package occurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/mo"
	"github.com/tempo-lab/project-tempo/internal/core/i18n"
	"github.com/tempo-lab/project-tempo/internal/core/rrule"
)

var (
	// ErrSeriesNotActive is returned when instances are requested for a
	// paused or ended series.
	ErrSeriesNotActive = errors.New("series is not active")

	// ErrInvalidTimezone is returned when a series names an unknown zone.
	ErrInvalidTimezone = errors.New("invalid series timezone")
)

// Status is the lifecycle state of a series.
type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
	StatusEnded  Status = "ended"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusEnded:
		return true
	}
	return false
}

// TimeOfDay is a wall-clock start time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// EventSeries is the parent record of a recurring event.
type EventSeries struct {
	ID        string
	Slug      string
	Title     string
	RRule     string
	Status    Status
	StartDate rrule.Date
	StartTime TimeOfDay
	Duration  time.Duration
	Timezone  string
}

// Location resolves the series timezone.
func (s EventSeries) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidTimezone, s.Timezone, err)
	}
	return loc, nil
}

// Rule parses the series' serialized rule.
func (s EventSeries) Rule() (rrule.RecurrenceRule, error) {
	return rrule.ParseRRule(s.RRule)
}

// Today returns the current date in the series timezone.
func (s EventSeries) Today(now time.Time) (rrule.Date, error) {
	loc, err := s.Location()
	if err != nil {
		return rrule.Date{}, err
	}
	return rrule.DateOf(now.In(loc)), nil
}

// GenerateSeriesInstances returns the series' occurrences strictly after the
// watermark (or from the series start when there is none) through horizonEnd,
// with start and end instants computed in the series timezone.
func GenerateSeriesInstances(series EventSeries, watermark mo.Option[rrule.Date], horizonEnd rrule.Date) ([]Occurrence, error) {
	r, err := series.Rule()
	if err != nil {
		return nil, err
	}
	exp, err := ExpandSeries(series, r, watermark, horizonEnd)
	if err != nil {
		return nil, err
	}
	return exp.Occurrences, nil
}

// ExpandSeries is GenerateSeriesInstances for an already parsed rule. It
// reports truncation so callers can advance their watermark only as far as
// the last generated date.
func ExpandSeries(series EventSeries, r rrule.RecurrenceRule, watermark mo.Option[rrule.Date], horizonEnd rrule.Date) (Expansion, error) {
	if series.Status != StatusActive {
		return Expansion{}, fmt.Errorf("%w: %s is %s", ErrSeriesNotActive, series.Slug, series.Status)
	}
	loc, err := series.Location()
	if err != nil {
		return Expansion{}, err
	}

	from := series.StartDate
	if last, ok := watermark.Get(); ok {
		from = rrule.MaxDate(from, last.AddDays(1))
	}

	exp := Expand(r, series.StartDate, from, horizonEnd)
	for i := range exp.Occurrences {
		occ := &exp.Occurrences[i]
		occ.Start = occ.Date.At(series.StartTime.Hour, series.StartTime.Minute, loc)
		occ.End = occ.Start.Add(series.Duration)
	}
	return exp, nil
}

// FormatOccurrenceDate renders an occurrence for display, with its start
// time when it has one.
func FormatOccurrenceDate(occ Occurrence, locale i18n.Locale) string {
	c := i18n.Messages(locale)
	out := c.FormatDate(occ.Date.Year, occ.Date.Month, occ.Date.Day, occ.Date.Weekday())
	if !occ.Start.IsZero() {
		out += c.TimeSeparator + occ.Start.Format("15:04")
	}
	return out
}
