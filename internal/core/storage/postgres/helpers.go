package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tempo-lab/project-tempo/internal/core/occurrence"
	"github.com/tempo-lab/project-tempo/internal/core/rrule"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanSeriesRow scans one event_series row.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanSeriesRow(row scanner) (occurrence.EventSeries, error) {
	var (
		s               occurrence.EventSeries
		status          string
		startDate       time.Time
		startMinute     int
		durationMinutes int
	)

	err := row.Scan(
		&s.ID,
		&s.Slug,
		&s.Title,
		&s.RRule,
		&status,
		&startDate,
		&startMinute,
		&durationMinutes,
		&s.Timezone,
	)
	if err != nil {
		return occurrence.EventSeries{}, fmt.Errorf("failed to scan series row: %w", err)
	}

	s.Status = occurrence.Status(status)
	s.StartDate = rrule.DateOf(startDate)
	s.StartTime = occurrence.TimeOfDay{Hour: startMinute / 60, Minute: startMinute % 60}
	s.Duration = time.Duration(durationMinutes) * time.Minute
	return s, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
