package models

import "time"

// Slot status values.
const (
	SlotStatusEmpty    = "empty"
	SlotStatusReserved = "reserved"
	SlotStatusOccupied = "occupied"
	SlotStatusCharging = "charging"
)

// Reservation tags a reserved slot with the booking that owns it.
type Reservation struct {
	BookingID string `db:"booking_id" json:"booking_id"`
	UserID    int64  `db:"user_id" json:"user_id"`
}

// Slot is one physical bay in a pillar. A slot's battery is owned by exactly
// one slot at a time; an empty slot carries neither battery nor reservation.
type Slot struct {
	ID          string       `db:"id" json:"id"`
	PillarID    string       `db:"pillar_id" json:"pillar_id"`
	SlotNumber  int          `db:"slot_number" json:"slot_number"`
	Status      string       `db:"status" json:"status"`
	Battery     *Battery     `json:"battery,omitempty"`
	Reservation *Reservation `json:"reservation,omitempty"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// HoldsBattery reports whether the slot currently contains a physical battery.
func (s *Slot) HoldsBattery() bool {
	return s.Battery != nil && (s.Status == SlotStatusOccupied || s.Status == SlotStatusCharging)
}
