package models

// Booking status values observed from the booking subsystem.
const (
	BookingStatusBooked    = "booked"
	BookingStatusArrived   = "arrived"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Booking is the external booking entity the coordinator gates on. Only the
// fields the swap flow reads are modeled.
type Booking struct {
	ID           string `json:"id"`
	UserID       int64  `json:"user_id"`
	VehicleID    string `json:"vehicle_id"`
	PillarID     string `json:"pillar_id"`
	Status       string `json:"status"`
	BatteryModel string `json:"battery_model"`
}

// EligibleForSwap reports whether a swap session may be opened for the booking.
func (b *Booking) EligibleForSwap() bool {
	return b.Status == BookingStatusBooked || b.Status == BookingStatusArrived
}
