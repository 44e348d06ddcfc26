package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/tempo-lab/project-tempo/internal/core/rrule"
	"github.com/tempo-lab/project-tempo/internal/core/storage"
)

// InstanceAdapter implements storage.InstanceStore using PostgreSQL.
// Instance inserts and the watermark write share one transaction, so a crash
// between them can never leave the watermark ahead of the rows.
type InstanceAdapter struct {
	db *sql.DB
}

// NewInstanceAdapter creates an InstanceAdapter sharing the given connection.
func NewInstanceAdapter(db *sql.DB) *InstanceAdapter {
	return &InstanceAdapter{db: db}
}

// Flush inserts instances and advances the series watermark to through.
func (a *InstanceAdapter) Flush(
	ctx context.Context,
	seriesID string,
	instances []storage.Instance,
	through rrule.Date,
) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("instance flush: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Lock the watermark row first; concurrent runs for the same series serialize here.
	var durable sql.NullTime
	err = tx.QueryRowContext(ctx, querySelectWatermarkForUpdate, seriesID).Scan(&durable)
	if err == sql.ErrNoRows {
		_, err = tx.ExecContext(ctx, queryInitWatermarkRow, seriesID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("instance flush: init watermark row: %w", err)
		}

		err = tx.QueryRowContext(ctx, querySelectWatermarkForUpdate, seriesID).Scan(&durable)
		if err != nil {
			return fmt.Errorf("instance flush: read initialized watermark for update: %w", err)
		}
	}
	if err != nil {
		return fmt.Errorf("instance flush: read watermark for update: %w", err)
	}

	if durable.Valid && !through.After(rrule.DateOf(durable.Time)) {
		slog.Warn("[InstanceAdapter] Skipping stale/no-op flush",
			"series_id", seriesID,
			"through", through.String(),
			"durable_through", rrule.DateOf(durable.Time).String(),
			"instances", len(instances))
		return nil
	}

	if len(instances) > 0 {
		insertStmt, err := tx.PrepareContext(ctx, queryInsertInstance)
		if err != nil {
			return fmt.Errorf("instance flush: prepare insert: %w", err)
		}
		defer insertStmt.Close()

		now := time.Now().UTC()
		for _, inst := range instances {
			if inst.SeriesID != seriesID {
				return fmt.Errorf("instance flush: instance %s belongs to series %s, not %s",
					inst.ID, inst.SeriesID, seriesID)
			}
			if _, err := insertStmt.ExecContext(ctx,
				inst.ID,
				inst.SeriesID,
				inst.Date.String(),
				inst.StartsAt.UTC(),
				inst.EndsAt.UTC(),
				inst.Title,
				now,
			); err != nil {
				return fmt.Errorf("instance flush: insert %s: %w", inst.Date, err)
			}
		}
	}

	result, err := tx.ExecContext(ctx, queryUpdateWatermark, through.String(), time.Now().UTC(), seriesID)
	if err != nil {
		return fmt.Errorf("instance flush: write watermark: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("instance flush: check watermark write: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("instance flush: watermark row missing (series=%s)", seriesID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("instance flush: commit: %w", err)
	}

	slog.Info("[InstanceAdapter] Flushed",
		"series_id", seriesID,
		"instances", len(instances),
		"through", through.String(),
	)
	return nil
}
