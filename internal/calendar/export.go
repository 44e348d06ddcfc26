package calendar

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/tempo-lab/project-tempo/internal/core/i18n"
	"github.com/tempo-lab/project-tempo/internal/core/occurrence"
	"github.com/tempo-lab/project-tempo/internal/core/rrule"
)

const (
	DefaultProductID = "-//Tempo//Recurring Events//EN"

	utcLayout   = "20060102T150405Z"
	localLayout = "20060102T150405"
)

// Options control the calendar envelope shared by both export modes.
type Options struct {
	ProductID string
	// BaseURL, when set, gives every event a URL of BaseURL/series/<slug>.
	BaseURL string
	Locale  i18n.Locale
	// Now stamps DTSTAMP; zero means time.Now.
	Now time.Time
}

func (o Options) normalized() Options {
	n := o
	if n.ProductID == "" {
		n.ProductID = DefaultProductID
	}
	if n.Now.IsZero() {
		n.Now = time.Now()
	}
	n.BaseURL = strings.TrimRight(n.BaseURL, "/")
	return n
}

// UID identifies one occurrence across exports, so calendar clients update
// events in place instead of duplicating them.
func UID(seriesID string, d rrule.Date) string {
	return fmt.Sprintf("%04d%02d%02d-%s@tempo", d.Year, int(d.Month), d.Day, seriesID)
}

// ExportSeries renders one VEVENT per occurrence with UTC start and end.
// Excluded occurrences are emitted as cancelled.
func ExportSeries(series occurrence.EventSeries, occurrences []occurrence.Occurrence, opts Options) (string, error) {
	opts = opts.normalized()

	rule, err := series.Rule()
	if err != nil {
		return "", err
	}
	loc, err := series.Location()
	if err != nil {
		return "", err
	}
	description := rrule.DescribeSeriesRule(rule, series.StartDate, opts.Locale)

	cal := newCalendar(series, opts)
	for _, occ := range occurrences {
		start, end := occ.Start, occ.End
		if start.IsZero() {
			start = occ.Date.At(series.StartTime.Hour, series.StartTime.Minute, loc)
			end = start.Add(series.Duration)
		}

		e := cal.AddEvent(UID(series.ID, occ.Date))
		e.SetDtStampTime(opts.Now)
		e.SetProperty(ics.ComponentPropertyDtStart, start.UTC().Format(utcLayout))
		e.SetProperty(ics.ComponentPropertyDtEnd, end.UTC().Format(utcLayout))
		e.SetSummary(series.Title)
		e.SetDescription(description)
		if opts.BaseURL != "" {
			e.SetURL(seriesURL(opts.BaseURL, series.Slug))
		}
		if occ.Excluded {
			e.SetStatus(ics.ObjectStatusCancelled)
		}
	}

	return cal.Serialize(), nil
}

// ExportSeriesRule renders the whole series as a single recurring VEVENT.
// DTSTART is the first date the rule selects, since clients count DTSTART as
// an occurrence. It carries the series TZID so clients keep the wall-clock
// time across DST changes. Excluded dates become EXDATE lines. A series that
// never occurs exports an empty calendar.
func ExportSeriesRule(series occurrence.EventSeries, opts Options) (string, error) {
	opts = opts.normalized()

	rule, err := series.Rule()
	if err != nil {
		return "", err
	}
	loc, err := series.Location()
	if err != nil {
		return "", err
	}

	cal := newCalendar(series, opts)
	first, ok := occurrence.FirstOccurrence(rule, series.StartDate)
	if !ok {
		return cal.Serialize(), nil
	}

	dtstart := first.At(series.StartTime.Hour, series.StartTime.Minute, loc)
	rfcRule, err := rrule.RFCString(rule, dtstart)
	if err != nil {
		return "", err
	}
	tzid := &ics.KeyValues{Key: string(ics.ParameterTzid), Value: []string{series.Timezone}}

	e := cal.AddEvent(fmt.Sprintf("%s@tempo", series.ID))
	e.SetDtStampTime(opts.Now)
	e.SetProperty(ics.ComponentPropertyDtStart, dtstart.Format(localLayout), tzid)
	e.SetProperty(ics.ComponentPropertyDtEnd, dtstart.Add(series.Duration).Format(localLayout), tzid)
	e.SetSummary(series.Title)
	e.SetDescription(rrule.DescribeSeriesRule(rule, series.StartDate, opts.Locale))
	if opts.BaseURL != "" {
		e.SetURL(seriesURL(opts.BaseURL, series.Slug))
	}
	e.AddProperty(ics.ComponentPropertyRrule, rfcRule)
	for _, ex := range rule.ExcludedDates() {
		at := ex.At(series.StartTime.Hour, series.StartTime.Minute, loc)
		e.AddProperty(ics.ComponentPropertyExdate, at.Format(localLayout), tzid)
	}

	return cal.Serialize(), nil
}

func newCalendar(series occurrence.EventSeries, opts Options) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetProductId(opts.ProductID)
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName(series.Title)
	return cal
}

func seriesURL(base, slug string) string {
	return base + "/series/" + slug
}
