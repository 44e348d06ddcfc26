package postgres

// SQL for series, watermarks and materialized instances.

const (
	// queryCreateSeries inserts a series. ON CONFLICT on slug returns no rows,
	// which the adapter maps to storage.ErrDuplicate.
	queryCreateSeries = `
		INSERT INTO event_series (
			id, slug, title, rrule, status, start_date,
			start_minute, duration_minutes, timezone, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (slug) DO NOTHING
		RETURNING id
	`

	queryGetSeriesBySlug = `
		SELECT id, slug, title, rrule, status, start_date, start_minute, duration_minutes, timezone
		FROM event_series
		WHERE slug = $1
	`

	// queryListActiveSeries pages active series by id (keyset pagination).
	queryListActiveSeries = `
		SELECT id, slug, title, rrule, status, start_date, start_minute, duration_minutes, timezone
		FROM event_series
		WHERE status = 'active'
		  AND id > $1
		ORDER BY id ASC
		LIMIT $2
	`

	queryReadWatermark = `SELECT materialized_through FROM series_watermarks WHERE series_id = $1`

	querySelectSeriesRuleForUpdate = `
		SELECT rrule
		FROM event_series
		WHERE id = $1
		FOR UPDATE
	`

	queryUpdateSeriesRule = `
		UPDATE event_series
		SET rrule = $1, updated_at = $2
		WHERE id = $3
	`

	queryCancelInstance = `
		UPDATE series_events
		SET status = 'cancelled'
		WHERE series_id = $1
		  AND occurrence_date = $2
	`

	querySelectWatermarkForUpdate = `
		SELECT materialized_through
		FROM series_watermarks
		WHERE series_id = $1
		FOR UPDATE
	`

	queryInitWatermarkRow = `
		INSERT INTO series_watermarks (series_id, materialized_through, updated_at)
		VALUES ($1, NULL, $2)
		ON CONFLICT (series_id) DO NOTHING
	`

	// queryInsertInstance is idempotent per (series_id, occurrence_date):
	// regenerating an already materialized date never duplicates or
	// overwrites the row, so RSVPs and cancellations survive.
	queryInsertInstance = `
		INSERT INTO series_events (
			id, series_id, occurrence_date, starts_at, ends_at, title, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, 'scheduled', $7)
		ON CONFLICT (series_id, occurrence_date) DO NOTHING
	`

	queryUpdateWatermark = `
		UPDATE series_watermarks
		SET materialized_through = $1, updated_at = $2
		WHERE series_id = $3
	`
)

// firstSeriesID sorts before every UUID; used when paging from the start.
const firstSeriesID = "00000000-0000-0000-0000-000000000000"
