package series

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
	v1 "github.com/tempo-lab/project-tempo/internal/api/v1"
	"github.com/tempo-lab/project-tempo/internal/calendar"
	"github.com/tempo-lab/project-tempo/internal/core/i18n"
	"github.com/tempo-lab/project-tempo/internal/core/occurrence"
	"github.com/tempo-lab/project-tempo/internal/core/rrule"
	"github.com/tempo-lab/project-tempo/internal/core/storage"
	"github.com/tempo-lab/project-tempo/internal/materialize"
)

const (
	defaultPreviewLimit  = 10
	maxPreviewLimit      = 100
	defaultListDays      = 90
	defaultExportDays    = 180
	ruleCacheCapacity    = 1024
	CalendarModeInstance = "instances"
	CalendarModeRule     = "rule"
)

// ErrInvalidRequest marks request validation errors that should return HTTP 400.
var ErrInvalidRequest = errors.New("invalid request")

// SeriesMaterializer extends one series on demand.
type SeriesMaterializer interface {
	MaterializeSeries(ctx context.Context, series occurrence.EventSeries) (materialize.SeriesResult, error)
}

// CalendarConfig configures .ics exports.
type CalendarConfig struct {
	ProductID  string
	BaseURL    string
	ExportDays int
}

// Service implements the rule editor and series endpoints.
type Service struct {
	store         storage.SeriesStore
	materializer  SeriesMaterializer
	rules         *rrule.Cache
	calendar      CalendarConfig
	defaultLocale i18n.Locale
	nowFn         func() time.Time
}

// NewService creates a new series service.
func NewService(
	store storage.SeriesStore,
	materializer SeriesMaterializer,
	calendarCfg CalendarConfig,
	defaultLocale i18n.Locale,
) *Service {
	if calendarCfg.ExportDays <= 0 {
		calendarCfg.ExportDays = defaultExportDays
	}
	if calendarCfg.ProductID == "" {
		calendarCfg.ProductID = calendar.DefaultProductID
	}
	return &Service{
		store:         store,
		materializer:  materializer,
		rules:         rrule.NewCache(ruleCacheCapacity),
		calendar:      calendarCfg,
		defaultLocale: defaultLocale,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// today returns the current date in the named zone, or in UTC when tz is
// empty.
func (s *Service) today(tz string) (rrule.Date, error) {
	loc := time.UTC
	if tz != "" {
		var err error
		if loc, err = time.LoadLocation(tz); err != nil {
			return rrule.Date{}, invalidRequestf("tz: unknown timezone %q", tz)
		}
	}
	return rrule.DateOf(s.nowFn().In(loc)), nil
}

// Presets returns the preset catalog anchored on today in tz.
func (s *Service) Presets(tz string, locale i18n.Locale) ([]v1.PresetResponse, error) {
	today, err := s.today(tz)
	if err != nil {
		return nil, err
	}
	presets := rrule.GetRecurrencePresets()

	out := make([]v1.PresetResponse, 0, len(presets))
	for _, p := range presets {
		r := p.ApplyTo(today)
		out = append(out, v1.PresetResponse{
			Key:         p.Key,
			Label:       p.Label(locale),
			RRule:       r.String(),
			Fields:      v1.RuleFieldsFrom(r),
			Description: rrule.DescribeSeriesRule(r, today, locale),
		})
	}
	return out, nil
}

// BuildRule validates structured fields and returns the canonical rule.
func (s *Service) BuildRule(fields v1.RuleFields, locale i18n.Locale) (v1.RuleResponse, error) {
	f, err := fields.ToFields()
	if err != nil {
		return v1.RuleResponse{}, invalidRequestf("%v", err)
	}
	r, err := rrule.NewRule(f)
	if err != nil {
		return v1.RuleResponse{}, err
	}
	return ruleResponse(r, locale), nil
}

// ParseRule decodes a serialized rule.
func (s *Service) ParseRule(raw string, locale i18n.Locale) (v1.RuleResponse, error) {
	r, err := s.rules.Parse(raw)
	if err != nil {
		return v1.RuleResponse{}, err
	}
	return ruleResponse(r, locale), nil
}

func ruleResponse(r rrule.RecurrenceRule, locale i18n.Locale) v1.RuleResponse {
	return v1.RuleResponse{
		RRule:       r.String(),
		Fields:      v1.RuleFieldsFrom(r),
		Description: rrule.DescribeRRule(r, locale),
		ShortLabel:  rrule.GetShortRRuleLabel(r).Localize(locale),
		Diagnostics: rrule.Lint(r),
	}
}

// PreviewRequest asks for the next occurrences of an unsaved rule. Start
// defaults to today in Timezone, which defaults to UTC.
type PreviewRequest struct {
	RRule    string
	Start    string
	From     string
	Limit    int
	Timezone string
}

// Preview lists the next Limit occurrences of a rule starting at Start, on
// or after From.
func (s *Service) Preview(req PreviewRequest, locale i18n.Locale) (v1.OccurrenceList, error) {
	r, err := s.rules.Parse(req.RRule)
	if err != nil {
		return v1.OccurrenceList{}, err
	}

	start, err := s.today(req.Timezone)
	if err != nil {
		return v1.OccurrenceList{}, err
	}
	if req.Start != "" {
		if start, err = rrule.ParseDate(req.Start); err != nil {
			return v1.OccurrenceList{}, invalidRequestf("start: %v", err)
		}
	}
	from := start
	if req.From != "" {
		if from, err = rrule.ParseDate(req.From); err != nil {
			return v1.OccurrenceList{}, invalidRequestf("from: %v", err)
		}
	}

	limit := req.Limit
	switch {
	case limit <= 0:
		limit = defaultPreviewLimit
	case limit > maxPreviewLimit:
		return v1.OccurrenceList{}, invalidRequestf("limit must be at most %d", maxPreviewLimit)
	}

	occs := occurrence.GetUpcomingOccurrences(r, start, from, limit)
	return occurrenceList(r, start, occs, false, locale), nil
}

// CreateSeries stores a new active series.
func (s *Service) CreateSeries(ctx context.Context, req v1.CreateSeriesRequest) (v1.SeriesResponse, error) {
	if err := req.Validate(); err != nil {
		return v1.SeriesResponse{}, invalidRequestf("%v", err)
	}

	var (
		r   rrule.RecurrenceRule
		err error
	)
	if req.RRule != "" {
		r, err = s.rules.Parse(req.RRule)
	} else {
		var f rrule.Fields
		if f, err = req.Rule.ToFields(); err != nil {
			return v1.SeriesResponse{}, invalidRequestf("%v", err)
		}
		r, err = rrule.NewRule(f)
	}
	if err != nil {
		return v1.SeriesResponse{}, err
	}

	start, err := rrule.ParseDate(req.StartDate)
	if err != nil {
		return v1.SeriesResponse{}, invalidRequestf("start_date: %v", err)
	}
	startTime, err := occurrence.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return v1.SeriesResponse{}, invalidRequestf("start_time: %v", err)
	}

	series := occurrence.EventSeries{
		ID:        uuid.NewString(),
		Slug:      req.Slug,
		Title:     req.Title,
		RRule:     r.String(),
		Status:    occurrence.StatusActive,
		StartDate: start,
		StartTime: startTime,
		Duration:  time.Duration(req.DurationMinutes) * time.Minute,
		Timezone:  req.Timezone,
	}
	if _, err := series.Location(); err != nil {
		return v1.SeriesResponse{}, err
	}

	if err := s.store.CreateSeries(ctx, series); err != nil {
		return v1.SeriesResponse{}, err
	}

	slog.Info("[SeriesAPI] Created series",
		"series_id", series.ID,
		"slug", series.Slug,
		"rrule", series.RRule,
	)
	return seriesResponse(series, r, mo.None[rrule.Date](), s.defaultLocale), nil
}

// GetSeries returns a stored series with its materialization watermark.
func (s *Service) GetSeries(ctx context.Context, slug string, locale i18n.Locale) (v1.SeriesResponse, error) {
	series, r, err := s.load(ctx, slug)
	if err != nil {
		return v1.SeriesResponse{}, err
	}
	watermark, err := s.store.ReadWatermark(ctx, series.ID)
	if err != nil {
		return v1.SeriesResponse{}, fmt.Errorf("read watermark: %w", err)
	}
	return seriesResponse(series, r, watermark, locale), nil
}

// Occurrences lists a stored series' occurrences in [from, to], defaulting
// to the next 90 days in the series timezone.
func (s *Service) Occurrences(ctx context.Context, slug, fromRaw, toRaw string, locale i18n.Locale) (v1.OccurrenceList, error) {
	series, r, err := s.load(ctx, slug)
	if err != nil {
		return v1.OccurrenceList{}, err
	}
	loc, err := series.Location()
	if err != nil {
		return v1.OccurrenceList{}, err
	}

	from := rrule.DateOf(s.nowFn().In(loc))
	if fromRaw != "" {
		if from, err = rrule.ParseDate(fromRaw); err != nil {
			return v1.OccurrenceList{}, invalidRequestf("from: %v", err)
		}
	}
	to := from.AddDays(defaultListDays)
	if toRaw != "" {
		if to, err = rrule.ParseDate(toRaw); err != nil {
			return v1.OccurrenceList{}, invalidRequestf("to: %v", err)
		}
	}
	if to.Before(from) {
		return v1.OccurrenceList{}, invalidRequestf("to must not be before from")
	}

	exp := occurrence.Expand(r, series.StartDate, from, to)
	withInstants(series, loc, exp.Occurrences)
	return occurrenceList(r, series.StartDate, exp.Occurrences, exp.Truncated, locale), nil
}

// Calendar renders the series as an .ics document. Instance mode lists
// occurrences from today through the export window, cancelled ones included;
// rule mode emits one recurring event.
func (s *Service) Calendar(ctx context.Context, slug, mode string, locale i18n.Locale) (string, error) {
	series, r, err := s.load(ctx, slug)
	if err != nil {
		return "", err
	}
	opts := calendar.Options{
		ProductID: s.calendar.ProductID,
		BaseURL:   s.calendar.BaseURL,
		Locale:    locale,
		Now:       s.nowFn(),
	}

	switch mode {
	case "", CalendarModeInstance:
		loc, err := series.Location()
		if err != nil {
			return "", err
		}
		from := rrule.DateOf(s.nowFn().In(loc))
		occs := occurrence.GenerateOccurrences(r, series.StartDate, from, from.AddDays(s.calendar.ExportDays),
			occurrence.Options{IncludeExcluded: true})
		withInstants(series, loc, occs)
		return calendar.ExportSeries(series, occs, opts)
	case CalendarModeRule:
		return calendar.ExportSeriesRule(series, opts)
	default:
		return "", invalidRequestf("unknown calendar mode %q (want %s or %s)", mode, CalendarModeInstance, CalendarModeRule)
	}
}

// Materialize extends one series' instances on demand.
func (s *Service) Materialize(ctx context.Context, slug string) (v1.MaterializeResponse, error) {
	series, _, err := s.load(ctx, slug)
	if err != nil {
		return v1.MaterializeResponse{}, err
	}

	res, err := s.materializer.MaterializeSeries(ctx, series)
	if err != nil {
		return v1.MaterializeResponse{}, err
	}

	out := v1.MaterializeResponse{
		SeriesID:  res.SeriesID,
		Instances: res.Instances,
		Truncated: res.Truncated,
	}
	if through, ok := res.Through.Get(); ok {
		out.Through = through.String()
	}
	return out, nil
}

// AddExclusion cancels one occurrence of a series. Excluding an already
// excluded date is a no-op. The response carries the rule as stored, which
// includes exclusions committed by concurrent requests.
func (s *Service) AddExclusion(ctx context.Context, slug, dateRaw string, locale i18n.Locale) (v1.SeriesResponse, error) {
	series, r, err := s.load(ctx, slug)
	if err != nil {
		return v1.SeriesResponse{}, err
	}
	date, err := rrule.ParseDate(dateRaw)
	if err != nil {
		return v1.SeriesResponse{}, invalidRequestf("date: %v", err)
	}

	if !r.IsExcluded(date) {
		if !occurrence.IsOccurrenceDate(r, series.StartDate, date) {
			return v1.SeriesResponse{}, invalidRequestf("%s is not an occurrence of %s", date, slug)
		}

		stored, err := s.store.AddExclusion(ctx, series.ID, date)
		if err != nil {
			return v1.SeriesResponse{}, err
		}
		if r, err = s.rules.Parse(stored); err != nil {
			return v1.SeriesResponse{}, fmt.Errorf("series %s stored a corrupt rule: %v", slug, err)
		}
		series.RRule = stored

		slog.Info("[SeriesAPI] Excluded occurrence", "series_id", series.ID, "date", date.String())
	}

	watermark, err := s.store.ReadWatermark(ctx, series.ID)
	if err != nil {
		return v1.SeriesResponse{}, fmt.Errorf("read watermark: %w", err)
	}
	return seriesResponse(series, r, watermark, locale), nil
}

func (s *Service) load(ctx context.Context, slug string) (occurrence.EventSeries, rrule.RecurrenceRule, error) {
	series, err := s.store.GetSeriesBySlug(ctx, slug)
	if err != nil {
		return occurrence.EventSeries{}, rrule.RecurrenceRule{}, err
	}
	r, err := s.rules.Parse(series.RRule)
	if err != nil {
		slog.Error("[SeriesAPI] Stored rule does not parse",
			"series_id", series.ID,
			"rrule", series.RRule,
			"error", err,
		)
		return occurrence.EventSeries{}, rrule.RecurrenceRule{}, fmt.Errorf("series %s has a corrupt rule: %v", slug, err)
	}
	return series, r, nil
}

func withInstants(series occurrence.EventSeries, loc *time.Location, occs []occurrence.Occurrence) {
	for i := range occs {
		occs[i].Start = occs[i].Date.At(series.StartTime.Hour, series.StartTime.Minute, loc)
		occs[i].End = occs[i].Start.Add(series.Duration)
	}
}

func occurrenceList(r rrule.RecurrenceRule, start rrule.Date, occs []occurrence.Occurrence, truncated bool, locale i18n.Locale) v1.OccurrenceList {
	out := v1.OccurrenceList{
		RRule:       r.String(),
		Description: rrule.DescribeSeriesRule(r, start, locale),
		Occurrences: make([]v1.Occurrence, 0, len(occs)),
		Truncated:   truncated,
	}
	for _, o := range occs {
		item := v1.Occurrence{
			Date:    o.Date.String(),
			Display: occurrence.FormatOccurrenceDate(o, locale),
		}
		if !o.Start.IsZero() {
			start, end := o.Start.UTC(), o.End.UTC()
			item.StartsAt, item.EndsAt = &start, &end
		}
		out.Occurrences = append(out.Occurrences, item)
	}
	return out
}

func seriesResponse(series occurrence.EventSeries, r rrule.RecurrenceRule, watermark mo.Option[rrule.Date], locale i18n.Locale) v1.SeriesResponse {
	out := v1.SeriesResponse{
		ID:              series.ID,
		Slug:            series.Slug,
		Title:           series.Title,
		RRule:           series.RRule,
		Description:     rrule.DescribeSeriesRule(r, series.StartDate, locale),
		ShortLabel:      rrule.GetShortRRuleLabel(r).Localize(locale),
		Status:          string(series.Status),
		StartDate:       series.StartDate.String(),
		StartTime:       series.StartTime.String(),
		DurationMinutes: int(series.Duration / time.Minute),
		Timezone:        series.Timezone,
	}
	if through, ok := watermark.Get(); ok {
		out.MaterializedThrough = through.String()
	}
	return out
}

func invalidRequestf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
