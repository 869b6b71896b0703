package repository

import (
	"context"
	"database/sql"
	"errors"

	"voltswap/internal/models"
)

// ErrPillarNotFound indicates an unknown pillar id.
var ErrPillarNotFound = errors.New("pillar not found")

// ErrSlotNotFound indicates the slot update matched no row.
var ErrSlotNotFound = errors.New("slot not found")

// ErrSlotStateConflict indicates the slot was not in the expected status.
var ErrSlotStateConflict = errors.New("slot not in expected status")

// GridRepository is the postgres-backed inventory authority for pillars,
// slots and the batteries parked in them.
type GridRepository struct {
	db *sql.DB
}

// NewGridRepository returns repository.
func NewGridRepository(db *sql.DB) *GridRepository {
	return &GridRepository{db: db}
}

// Pillar returns pillar metadata and its fixed grid dimensions.
func (r *GridRepository) Pillar(ctx context.Context, pillarID string) (*models.Pillar, error) {
	const query = `
		SELECT id, name, location, rows, cols
		FROM pillars
		WHERE id = $1
	`
	var p models.Pillar
	err := r.db.QueryRowContext(ctx, query, pillarID).Scan(&p.ID, &p.Name, &p.Location, &p.Rows, &p.Cols)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPillarNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PillarSlots returns the pillar's slots in slot-number order with any parked
// battery and reservation joined in.
func (r *GridRepository) PillarSlots(ctx context.Context, pillarID string) ([]models.Slot, error) {
	const query = `
		SELECT s.id, s.pillar_id, s.slot_number, s.status,
		       s.reservation_booking_id, s.reservation_user_id, s.updated_at,
		       b.id, b.serial, b.model, b.manufacturer, b.capacity_kwh,
		       b.voltage, b.soh, b.price, b.status, b.created_at, b.updated_at
		FROM slots s
		LEFT JOIN batteries b ON b.id = s.battery_id
		WHERE s.pillar_id = $1
		ORDER BY s.slot_number
	`
	rows, err := r.db.QueryContext(ctx, query, pillarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []models.Slot
	for rows.Next() {
		var (
			s          models.Slot
			resBooking sql.NullString
			resUser    sql.NullInt64
			b          models.Battery
			bID        sql.NullString
			bSerial    sql.NullString
			bModel     sql.NullString
			bMaker     sql.NullString
			bCapacity  sql.NullFloat64
			bVoltage   sql.NullFloat64
			bSOH       sql.NullFloat64
			bPrice     sql.NullFloat64
			bStatus    sql.NullString
			bCreated   sql.NullTime
			bUpdated   sql.NullTime
		)
		if err := rows.Scan(
			&s.ID, &s.PillarID, &s.SlotNumber, &s.Status,
			&resBooking, &resUser, &s.UpdatedAt,
			&bID, &bSerial, &bModel, &bMaker, &bCapacity,
			&bVoltage, &bSOH, &bPrice, &bStatus, &bCreated, &bUpdated,
		); err != nil {
			return nil, err
		}
		if resBooking.Valid {
			s.Reservation = &models.Reservation{
				BookingID: resBooking.String,
				UserID:    resUser.Int64,
			}
		}
		if bID.Valid {
			b.ID = bID.String
			b.Serial = bSerial.String
			b.Model = bModel.String
			b.Manufacturer = bMaker.String
			b.CapacityKWh = bCapacity.Float64
			b.Voltage = bVoltage.Float64
			b.SOH = bSOH.Float64
			b.Price = bPrice.Float64
			b.Status = bStatus.String
			b.CreatedAt = bCreated.Time
			b.UpdatedAt = bUpdated.Time
			s.Battery = &b
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// ReserveSlot transitions an empty slot to reserved and tags it with the
// booking. The status guard keeps two sessions from claiming the same slot.
func (r *GridRepository) ReserveSlot(ctx context.Context, slotID string, res models.Reservation) error {
	const query = `
		UPDATE slots
		SET status = 'reserved',
		    reservation_booking_id = $2,
		    reservation_user_id = $3,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'empty'
	`
	return r.execGuarded(ctx, ErrSlotStateConflict, query, slotID, res.BookingID, res.UserID)
}

// OccupySlot transitions a reserved slot to occupied with the given battery.
func (r *GridRepository) OccupySlot(ctx context.Context, slotID, batteryID string) error {
	const query = `
		UPDATE slots
		SET status = 'occupied',
		    battery_id = $2,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'reserved'
	`
	return r.execGuarded(ctx, ErrSlotStateConflict, query, slotID, batteryID)
}

// ReleaseSlot empties a slot after its battery was withdrawn.
func (r *GridRepository) ReleaseSlot(ctx context.Context, slotID string) error {
	const query = `
		UPDATE slots
		SET status = 'empty',
		    battery_id = NULL,
		    reservation_booking_id = NULL,
		    reservation_user_id = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`
	return r.execGuarded(ctx, ErrSlotNotFound, query, slotID)
}

// ClearReservation returns a reserved slot to empty without touching an
// occupied one. Used when an abandoned session expires.
func (r *GridRepository) ClearReservation(ctx context.Context, slotID string) error {
	const query = `
		UPDATE slots
		SET status = 'empty',
		    reservation_booking_id = NULL,
		    reservation_user_id = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'reserved'
	`
	return r.execGuarded(ctx, ErrSlotStateConflict, query, slotID)
}

func (r *GridRepository) execGuarded(ctx context.Context, onZero error, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return onZero
	}
	return nil
}
