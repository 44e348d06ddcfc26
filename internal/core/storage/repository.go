package storage

import (
	"context"
	"errors"
	"time"

	"github.com/samber/mo"
	"github.com/tempo-lab/project-tempo/internal/core/occurrence"
	"github.com/tempo-lab/project-tempo/internal/core/rrule"
)

var (
	// ErrNotFound is returned when a series does not exist.
	ErrNotFound = errors.New("series not found")

	// ErrDuplicate is returned when a series with the same slug already exists.
	ErrDuplicate = errors.New("series slug already exists")
)

// Instance is one materialized, bookable event row of a series.
type Instance struct {
	ID       string
	SeriesID string
	Date     rrule.Date
	StartsAt time.Time
	EndsAt   time.Time
	Title    string
}

// SeriesStore reads series records and their materialization watermark.
type SeriesStore interface {
	// CreateSeries inserts a new series. The series ID must be set.
	CreateSeries(ctx context.Context, series occurrence.EventSeries) error

	GetSeriesBySlug(ctx context.Context, slug string) (occurrence.EventSeries, error)

	// ListActiveSeries pages active series in id order, starting after afterID.
	// An empty afterID starts from the beginning.
	ListActiveSeries(ctx context.Context, afterID string, limit int) ([]occurrence.EventSeries, error)

	// ReadWatermark returns the last date through which the series has been
	// materialized, or None if it never was.
	ReadWatermark(ctx context.Context, seriesID string) (mo.Option[rrule.Date], error)

	// AddExclusion adds date to the stored rule's EXDATE list and cancels the
	// materialized row for date, if any, in one transaction. The series row is
	// locked for the read-modify-write, so concurrent exclusions all survive.
	// It returns the stored rule.
	AddExclusion(ctx context.Context, seriesID string, date rrule.Date) (string, error)
}

// InstanceStore persists materialized instances.
type InstanceStore interface {
	// Flush inserts instances and advances the series watermark to through in
	// one transaction. Rows already present for a date are left untouched.
	// A flush whose through is not after the durable watermark is a no-op.
	Flush(ctx context.Context, seriesID string, instances []Instance, through rrule.Date) error
}
