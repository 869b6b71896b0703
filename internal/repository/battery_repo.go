package repository

import (
	"context"
	"database/sql"
	"errors"

	"voltswap/internal/models"
)

// ErrBatteryNotFound indicates an unknown battery serial or id.
var ErrBatteryNotFound = errors.New("battery not found")

// BatteryRepository persists battery records.
type BatteryRepository struct {
	db *sql.DB
}

// NewBatteryRepository returns repository.
func NewBatteryRepository(db *sql.DB) *BatteryRepository {
	return &BatteryRepository{db: db}
}

// BySerial returns the battery with the given serial.
func (r *BatteryRepository) BySerial(ctx context.Context, serial string) (*models.Battery, error) {
	const query = `
		SELECT id, serial, model, manufacturer, capacity_kwh, voltage, soh, price, status, created_at, updated_at
		FROM batteries
		WHERE serial = $1
	`
	var b models.Battery
	err := r.db.QueryRowContext(ctx, query, serial).Scan(
		&b.ID, &b.Serial, &b.Model, &b.Manufacturer, &b.CapacityKWh,
		&b.Voltage, &b.SOH, &b.Price, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBatteryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a battery record.
func (r *BatteryRepository) Create(ctx context.Context, battery *models.Battery) error {
	const query = `
		INSERT INTO batteries (id, serial, model, manufacturer, capacity_kwh, voltage, soh, price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		battery.ID,
		battery.Serial,
		battery.Model,
		battery.Manufacturer,
		battery.CapacityKWh,
		battery.Voltage,
		battery.SOH,
		battery.Price,
		battery.Status,
	).Scan(&battery.CreatedAt, &battery.UpdatedAt)
}

// UpdateStatus moves a battery to a new lifecycle status.
func (r *BatteryRepository) UpdateStatus(ctx context.Context, batteryID, status string) error {
	const query = `
		UPDATE batteries
		SET status = $2,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, batteryID, status)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBatteryNotFound
	}
	return nil
}
