package models

import "time"

// Swap session phases. Transitions are strictly ordered and never reversed.
const (
	PhaseInitiated          = "initiated"
	PhaseOldBatteryInserted = "old-battery-inserted"
	PhaseCompleted          = "completed"
)

// SlotRef points at the slot reserved to receive the user's old battery.
type SlotRef struct {
	SlotID     string `json:"slot_id"`
	SlotNumber int    `json:"slot_number"`
}

// BatteryRef identifies the booked battery and the slot it waits in.
type BatteryRef struct {
	SlotID     string  `json:"slot_id"`
	SlotNumber int     `json:"slot_number"`
	BatteryID  string  `json:"battery_id"`
	Serial     string  `json:"serial"`
	Model      string  `json:"model"`
	SOH        float64 `json:"soh"`
}

// SwapSession binds a booking to one withdraw slot and one deposit slot.
// The two references are assigned at initiate time and immutable thereafter.
type SwapSession struct {
	SwapID        string     `json:"swap_id"`
	BookingID     string     `json:"booking_id"`
	VehicleID     string     `json:"vehicle_id"`
	UserID        int64      `json:"user_id"`
	PillarID      string     `json:"pillar_id"`
	Phase         string     `json:"phase"`
	BookedBattery BatteryRef `json:"booked_battery"`
	EmptySlot     SlotRef    `json:"empty_slot"`
	OldBatteryID  string     `json:"old_battery_id,omitempty"`
	OldSerial     string     `json:"old_battery_serial,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	InsertedAt    time.Time  `json:"inserted_at,omitempty"`
	CompletedAt   time.Time  `json:"completed_at,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
}

// Active reports whether the session still holds slot resources.
func (s *SwapSession) Active() bool {
	return s.Phase != PhaseCompleted
}

// SwapRecord is the persisted view of a swap, active or finished.
type SwapRecord struct {
	SwapID       string    `db:"swap_id" json:"swap_id"`
	BookingID    string    `db:"booking_id" json:"booking_id"`
	VehicleID    string    `db:"vehicle_id" json:"vehicle_id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	PillarID     string    `db:"pillar_id" json:"pillar_id"`
	Phase        string    `db:"phase" json:"phase"`
	OldSerial    string    `db:"old_battery_serial" json:"old_battery_serial,omitempty"`
	NewSerial    string    `db:"new_battery_serial" json:"new_battery_serial"`
	StartedAt    time.Time `db:"started_at" json:"started_at"`
	FinishedAt   time.Time `db:"finished_at" json:"finished_at,omitempty"`
	DurationSecs float64   `db:"duration_secs" json:"duration_secs,omitempty"`
}

// SwapSummary is returned to the caller when a swap completes.
type SwapSummary struct {
	OldBattery       string        `json:"old_battery"`
	NewBattery       string        `json:"new_battery"`
	NewBatteryCharge float64       `json:"new_battery_charge"`
	SwapDuration     time.Duration `json:"swap_duration"`
}
