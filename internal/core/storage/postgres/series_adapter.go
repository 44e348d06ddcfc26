package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // Register postgres driver
	"github.com/samber/mo"
	"github.com/tempo-lab/project-tempo/internal/core/occurrence"
	"github.com/tempo-lab/project-tempo/internal/core/rrule"
	"github.com/tempo-lab/project-tempo/internal/core/storage"
)

const connectPingTimeout = 5 * time.Second

// Adapter implements storage.SeriesStore for PostgreSQL.
type Adapter struct {
	db                  *sql.DB
	stmtCreateSeries    *sql.Stmt
	stmtGetSeriesBySlug *sql.Stmt
	stmtListActive      *sql.Stmt
	stmtReadWatermark   *sql.Stmt
}

// OpenDB opens and pings a pool without preparing statements. Migrations
// run on this handle before NewAdapterFromDB validates the schema.
func OpenDB(dsn string, maxOpenConns, maxIdleConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), connectPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}
	return db, nil
}

// NewAdapterFromDB validates the schema and prepares statements on an open pool.
// The adapter takes ownership of db.
func NewAdapterFromDB(db *sql.DB) (*Adapter, error) {
	return newAdapterWithDB(db)
}

func newAdapterWithDB(db *sql.DB) (*Adapter, error) {
	if err := validateSchema(db); err != nil {
		return nil, fmt.Errorf("schema validation failed - did you run migrations?: %w", err)
	}

	prepared := make([]*sql.Stmt, 0, 4)
	prepare := func(name, query string) (*sql.Stmt, error) {
		stmt, err := db.Prepare(query)
		if err != nil {
			for _, s := range prepared {
				s.Close()
			}
			return nil, fmt.Errorf("failed to prepare %s statement: %w", name, err)
		}
		prepared = append(prepared, stmt)
		return stmt, nil
	}

	stmtCreate, err := prepare("createSeries", queryCreateSeries)
	if err != nil {
		return nil, err
	}
	stmtGet, err := prepare("getSeriesBySlug", queryGetSeriesBySlug)
	if err != nil {
		return nil, err
	}
	stmtList, err := prepare("listActiveSeries", queryListActiveSeries)
	if err != nil {
		return nil, err
	}
	stmtWatermark, err := prepare("readWatermark", queryReadWatermark)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		db:                  db,
		stmtCreateSeries:    stmtCreate,
		stmtGetSeriesBySlug: stmtGet,
		stmtListActive:      stmtList,
		stmtReadWatermark:   stmtWatermark,
	}, nil
}

// validateSchema checks that every table the adapters use exists.
func validateSchema(db *sql.DB) error {
	query := `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = $1
		)
	`
	for _, table := range []string{"event_series", "series_watermarks", "series_events"} {
		var exists bool
		if err := db.QueryRow(query, table).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check schema: %w", err)
		}
		if !exists {
			return fmt.Errorf("%s table does not exist", table)
		}
	}
	return nil
}

// CreateSeries inserts a series. Returns storage.ErrDuplicate when the slug is taken.
func (a *Adapter) CreateSeries(ctx context.Context, s occurrence.EventSeries) error {
	var id string
	err := a.stmtCreateSeries.QueryRowContext(ctx,
		s.ID,
		s.Slug,
		s.Title,
		s.RRule,
		string(s.Status),
		s.StartDate.String(),
		s.StartTime.Minutes(),
		int(s.Duration/time.Minute),
		s.Timezone,
		time.Now().UTC(),
	).Scan(&id)
	if err == sql.ErrNoRows {
		return storage.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create series: %w", err)
	}

	slog.Debug("[Postgres] Created series", "series_id", id, "slug", s.Slug)
	return nil
}

// GetSeriesBySlug returns storage.ErrNotFound when no series has slug.
func (a *Adapter) GetSeriesBySlug(ctx context.Context, slug string) (occurrence.EventSeries, error) {
	s, err := scanSeriesRow(a.stmtGetSeriesBySlug.QueryRowContext(ctx, slug))
	if err != nil {
		if isNoRows(err) {
			return occurrence.EventSeries{}, storage.ErrNotFound
		}
		return occurrence.EventSeries{}, fmt.Errorf("get series %q: %w", slug, err)
	}
	return s, nil
}

// ListActiveSeries returns up to limit active series with id > afterID.
func (a *Adapter) ListActiveSeries(ctx context.Context, afterID string, limit int) ([]occurrence.EventSeries, error) {
	if afterID == "" {
		afterID = firstSeriesID
	}

	rows, err := a.stmtListActive.QueryContext(ctx, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list active series: %w", err)
	}
	defer rows.Close()

	var out []occurrence.EventSeries
	for rows.Next() {
		s, err := scanSeriesRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active series: iterate rows: %w", err)
	}
	return out, nil
}

// ReadWatermark returns None when the series was never materialized.
func (a *Adapter) ReadWatermark(ctx context.Context, seriesID string) (mo.Option[rrule.Date], error) {
	var through sql.NullTime
	err := a.stmtReadWatermark.QueryRowContext(ctx, seriesID).Scan(&through)
	if err == sql.ErrNoRows {
		return mo.None[rrule.Date](), nil
	}
	if err != nil {
		return mo.None[rrule.Date](), fmt.Errorf("read watermark: %w", err)
	}
	if !through.Valid {
		return mo.None[rrule.Date](), nil
	}
	return mo.Some(rrule.DateOf(through.Time)), nil
}

// AddExclusion locks the series row, appends date to its rule's EXDATE list
// and cancels the materialized row for date in one transaction. Returns
// storage.ErrNotFound when the series does not exist.
func (a *Adapter) AddExclusion(ctx context.Context, seriesID string, date rrule.Date) (string, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("add exclusion: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var stored string
	err = tx.QueryRowContext(ctx, querySelectSeriesRuleForUpdate, seriesID).Scan(&stored)
	if err == sql.ErrNoRows {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("add exclusion: lock series: %w", err)
	}

	current, err := rrule.ParseRRule(stored)
	if err != nil {
		return "", fmt.Errorf("add exclusion: stored rule %q: %v", stored, err)
	}
	updated := current.WithExcludedDate(date)

	if !updated.Equal(current) {
		if _, err := tx.ExecContext(ctx, queryUpdateSeriesRule, updated.String(), time.Now().UTC(), seriesID); err != nil {
			return "", fmt.Errorf("add exclusion: update rule: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, queryCancelInstance, seriesID, date.String()); err != nil {
		return "", fmt.Errorf("add exclusion: cancel instance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("add exclusion: commit: %w", err)
	}

	slog.Info("[Postgres] Excluded occurrence", "series_id", seriesID, "date", date.String())
	return updated.String(), nil
}

// DB returns the underlying pool, shared with the instance adapter and migrations.
func (a *Adapter) DB() *sql.DB {
	return a.db
}

// Close closes the database connection and all prepared statements.
// Returns the first error encountered.
func (a *Adapter) Close() error {
	var firstErr error

	for name, stmt := range map[string]*sql.Stmt{
		"createSeries":     a.stmtCreateSeries,
		"getSeriesBySlug":  a.stmtGetSeriesBySlug,
		"listActiveSeries": a.stmtListActive,
		"readWatermark":    a.stmtReadWatermark,
	} {
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close %s statement: %w", name, err)
		}
	}

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close database: %w", err)
	}

	return firstErr
}
