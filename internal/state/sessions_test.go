package state

import (
	"testing"
	"time"

	"voltswap/internal/models"
)

func newSession(swapID, bookingID string, expiresAt time.Time) *models.SwapSession {
	return &models.SwapSession{
		SwapID:    swapID,
		BookingID: bookingID,
		Phase:     models.PhaseInitiated,
		ExpiresAt: expiresAt,
	}
}

func TestPutGetReturnsCopies(t *testing.T) {
	store := NewSessionStore()
	session := newSession("swap-1", "booking-1", time.Now().Add(time.Minute))
	store.Put(session)

	got, ok := store.Get("swap-1")
	if !ok {
		t.Fatalf("session not found")
	}
	got.Phase = models.PhaseCompleted

	again, _ := store.Get("swap-1")
	if again.Phase != models.PhaseInitiated {
		t.Fatalf("mutating a returned session leaked into the store")
	}
}

func TestActiveForBooking(t *testing.T) {
	store := NewSessionStore()
	if store.ActiveForBooking("booking-1") {
		t.Fatalf("empty store reported an active session")
	}

	store.Put(newSession("swap-1", "booking-1", time.Now().Add(time.Minute)))
	if !store.ActiveForBooking("booking-1") {
		t.Fatalf("expected active session for booking-1")
	}

	store.Delete("swap-1")
	if store.ActiveForBooking("booking-1") {
		t.Fatalf("deleted session still reported active")
	}
}

func TestExpiredSelectsOnlyPastDeadline(t *testing.T) {
	store := NewSessionStore()
	now := time.Now()
	store.Put(newSession("swap-old", "booking-1", now.Add(-time.Minute)))
	store.Put(newSession("swap-live", "booking-2", now.Add(time.Hour)))

	expired := store.Expired(now)
	if len(expired) != 1 {
		t.Fatalf("expected 1 expired session, got %d", len(expired))
	}
	if expired[0].SwapID != "swap-old" {
		t.Fatalf("expected swap-old, got %s", expired[0].SwapID)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := NewSessionStore()
	store.Put(newSession("swap-1", "booking-1", time.Now().Add(time.Minute)))
	store.Delete("swap-1")
	store.Delete("swap-1")
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}
