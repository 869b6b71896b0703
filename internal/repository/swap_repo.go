package repository

import (
	"context"
	"database/sql"

	"voltswap/internal/models"
)

// SwapRepository records swap lifecycle events durably.
type SwapRepository struct {
	db *sql.DB
}

// NewSwapRepository returns repository.
func NewSwapRepository(db *sql.DB) *SwapRepository {
	return &SwapRepository{db: db}
}

// RecordInitiated inserts the swap row when a session is opened.
func (r *SwapRepository) RecordInitiated(ctx context.Context, session *models.SwapSession) error {
	const query = `
		INSERT INTO swaps (swap_id, booking_id, vehicle_id, user_id, pillar_id, phase,
		                   new_battery_serial, started_at, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		session.SwapID,
		session.BookingID,
		session.VehicleID,
		session.UserID,
		session.PillarID,
		session.Phase,
		session.BookedBattery.Serial,
		session.StartedAt,
		session.ExpiresAt,
	)
	return err
}

// RecordInserted advances the swap row to old-battery-inserted.
func (r *SwapRepository) RecordInserted(ctx context.Context, session *models.SwapSession) error {
	const query = `
		UPDATE swaps
		SET phase = $2,
		    old_battery_serial = $3,
		    inserted_at = $4,
		    updated_at = NOW()
		WHERE swap_id = $1
	`
	return r.execGuarded(ctx, query, session.SwapID, session.Phase, session.OldSerial, session.InsertedAt)
}

// RecordCompleted finalizes the swap row.
func (r *SwapRepository) RecordCompleted(ctx context.Context, session *models.SwapSession, summary models.SwapSummary) error {
	const query = `
		UPDATE swaps
		SET phase = $2,
		    finished_at = $3,
		    duration_secs = $4,
		    updated_at = NOW()
		WHERE swap_id = $1
	`
	return r.execGuarded(ctx, query, session.SwapID, session.Phase, session.CompletedAt, summary.SwapDuration.Seconds())
}

// RecordExpired marks an abandoned swap as expired.
func (r *SwapRepository) RecordExpired(ctx context.Context, swapID string) error {
	const query = `
		UPDATE swaps
		SET phase = 'expired',
		    finished_at = NOW(),
		    updated_at = NOW()
		WHERE swap_id = $1
	`
	return r.execGuarded(ctx, query, swapID)
}

// ListByUser returns the user's last N swaps, newest first.
func (r *SwapRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]models.SwapRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT swap_id, booking_id, vehicle_id, user_id, pillar_id, phase,
		       COALESCE(old_battery_serial, ''), new_battery_serial,
		       started_at, COALESCE(finished_at, 'epoch'::timestamptz), COALESCE(duration_secs, 0)
		FROM swaps
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.SwapRecord
	for rows.Next() {
		var rec models.SwapRecord
		if err := rows.Scan(
			&rec.SwapID,
			&rec.BookingID,
			&rec.VehicleID,
			&rec.UserID,
			&rec.PillarID,
			&rec.Phase,
			&rec.OldSerial,
			&rec.NewSerial,
			&rec.StartedAt,
			&rec.FinishedAt,
			&rec.DurationSecs,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *SwapRepository) execGuarded(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
