package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"voltswap/internal/models"
)

func TestGetBooking(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bookings/booking-1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"booking-1","user_id":42,"pillar_id":"pillar-1","status":"arrived","battery_model":"model-x"}`))
	}))
	defer server.Close()

	client := NewBookingClient(server.URL, server.Client(), zap.NewNop())
	booking, err := client.GetBooking(context.Background(), "booking-1")
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if booking.Status != models.BookingStatusArrived {
		t.Fatalf("expected arrived, got %s", booking.Status)
	}
	if booking.BatteryModel != "model-x" {
		t.Fatalf("expected model-x, got %s", booking.BatteryModel)
	}
}

func TestGetBookingNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewBookingClient(server.URL, server.Client(), zap.NewNop())
	if _, err := client.GetBooking(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for missing booking")
	}
}

func TestMarkCompletedRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewBookingClient(server.URL, server.Client(), zap.NewNop())
	if err := client.MarkCompleted(context.Background(), "booking-1"); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestMarkCompletedDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	client := NewBookingClient(server.URL, server.Client(), zap.NewNop())
	if err := client.MarkCompleted(context.Background(), "booking-1"); err == nil {
		t.Fatalf("expected error for conflict response")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single attempt for a 4xx, got %d", got)
	}
}

func TestMarkCompletedGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewBookingClient(server.URL, server.Client(), zap.NewNop())
	if err := client.MarkCompleted(context.Background(), "booking-1"); err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if got := atomic.LoadInt32(&calls); got != defaultRetryAttempts {
		t.Fatalf("expected %d attempts, got %d", defaultRetryAttempts, got)
	}
}
