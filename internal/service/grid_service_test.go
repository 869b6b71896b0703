package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"voltswap/internal/models"
)

func TestFetchGridShapesAndCounts(t *testing.T) {
	f := newFixture(t)
	svc := NewGridService(f.grid, zap.NewNop())

	grid, pillar, err := svc.FetchGrid(context.Background(), "pillar-1", 0, 0)
	if err != nil {
		t.Fatalf("fetch grid: %v", err)
	}
	if pillar.ID != "pillar-1" {
		t.Fatalf("unexpected pillar %s", pillar.ID)
	}
	if grid.Rows != 2 || grid.Cols != 4 {
		t.Fatalf("expected 2x4 grid, got %dx%d", grid.Rows, grid.Cols)
	}
	if grid.Stats.Empty != 1 || grid.Stats.Occupied != 1 || grid.Stats.Charging != 6 {
		t.Fatalf("unexpected stats: %+v", grid.Stats)
	}

	layout := grid.Layout()
	if len(layout) != 2 || len(layout[0]) != 4 {
		t.Fatalf("unexpected layout shape")
	}
	if layout[0][2].SlotNumber != 3 {
		t.Fatalf("expected slot 3 at row 0 col 2, got %d", layout[0][2].SlotNumber)
	}
}

func TestFetchGridReflectsCoordinatorTransitions(t *testing.T) {
	f := newFixture(t)
	svc := NewGridService(f.grid, zap.NewNop())

	result, err := f.coordinator.Initiate(context.Background(), InitiateInput{UserID: 42, BookingID: "booking-1"})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	grid, _, err := svc.FetchGrid(context.Background(), "pillar-1", 0, 0)
	if err != nil {
		t.Fatalf("fetch grid: %v", err)
	}
	slot, ok := grid.SlotByID(result.Session.EmptySlot.SlotID)
	if !ok {
		t.Fatalf("deposit slot missing from snapshot")
	}
	if slot.Status != models.SlotStatusReserved {
		t.Fatalf("expected refreshed snapshot to show reserved, got %s", slot.Status)
	}
	if slot.Reservation == nil || slot.Reservation.BookingID != "booking-1" {
		t.Fatalf("expected reservation tag on deposit slot")
	}
	if grid.Stats.Empty != 0 {
		t.Fatalf("expected no empty slots after reservation, got %d", grid.Stats.Empty)
	}
}

func TestFetchGridUnavailable(t *testing.T) {
	f := newFixture(t)
	f.grid.failAll = true
	svc := NewGridService(f.grid, zap.NewNop())

	_, _, err := svc.FetchGrid(context.Background(), "pillar-1", 0, 0)
	if !IsKind(err, KindGridUnavailable) {
		t.Fatalf("expected GridUnavailable, got %v", err)
	}
}
