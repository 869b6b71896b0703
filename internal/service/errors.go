package service

import (
	"errors"
	"fmt"
)

// Kind is a machine-checkable rejection category. Every refused transition
// carries exactly one kind so callers can branch without parsing messages.
type Kind string

// Rejection kinds surfaced by the coordinator and grid service.
const (
	KindNoBatteryAvailable      Kind = "NO_BATTERY_AVAILABLE"
	KindNoEmptySlot             Kind = "NO_EMPTY_SLOT"
	KindInvalidBookingState     Kind = "INVALID_BOOKING_STATE"
	KindSlotMismatch            Kind = "SLOT_MISMATCH"
	KindAlreadyInserted         Kind = "ALREADY_INSERTED"
	KindSessionNotFound         Kind = "SESSION_NOT_FOUND"
	KindOldBatteryNotInserted   Kind = "OLD_BATTERY_NOT_INSERTED"
	KindBatteryMismatch         Kind = "BATTERY_MISMATCH"
	KindSessionAlreadyCompleted Kind = "SESSION_ALREADY_COMPLETED"
	KindWrongSlotSelected       Kind = "WRONG_SLOT_SELECTED"
	KindGridUnavailable         Kind = "GRID_UNAVAILABLE"
)

// Error is a typed precondition violation.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Errf builds a typed error with a formatted message.
func Errf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the rejection kind from an error chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
