package models

import "time"

// Battery status values.
const (
	BatteryStatusFull     = "full"
	BatteryStatusIdle     = "idle"
	BatteryStatusCharging = "charging"
	BatteryStatusInUse    = "in-use"
	BatteryStatusBooking  = "is-booking"
	BatteryStatusFaulty   = "faulty"
)

// Battery represents a physical battery unit. Batteries are created on first
// registration (scan or manual entry) or implicitly when an unknown old-battery
// serial arrives during a swap; they are never deleted, only re-assigned.
type Battery struct {
	ID           string    `db:"id" json:"id"`
	Serial       string    `db:"serial" json:"serial"`
	Model        string    `db:"model" json:"model"`
	Manufacturer string    `db:"manufacturer" json:"manufacturer"`
	CapacityKWh  float64   `db:"capacity_kwh" json:"capacity_kwh"`
	Voltage      float64   `db:"voltage" json:"voltage"`
	SOH          float64   `db:"soh" json:"soh"`
	Price        float64   `db:"price" json:"price"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Withdrawable reports whether the battery may be earmarked for withdrawal.
func (b *Battery) Withdrawable() bool {
	switch b.Status {
	case BatteryStatusFull, BatteryStatusIdle:
		return true
	default:
		return false
	}
}

// BatteryMetadata carries optional attributes supplied when an old battery is
// inserted with a serial the service has never seen.
type BatteryMetadata struct {
	Model        string  `json:"model"`
	Manufacturer string  `json:"manufacturer"`
	CapacityKWh  float64 `json:"capacity_kwh"`
	Voltage      float64 `json:"voltage"`
	SOH          float64 `json:"soh"`
	Price        float64 `json:"price"`
}
