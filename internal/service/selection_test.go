package service

import (
	"testing"

	"voltswap/internal/models"
)

func occupiedSlot(id string, number int, model string, soh float64) models.Slot {
	return models.Slot{
		ID:         id,
		SlotNumber: number,
		Status:     models.SlotStatusOccupied,
		Battery: &models.Battery{
			ID:     "bat-" + id,
			Serial: "SER-" + id,
			Model:  model,
			SOH:    soh,
			Status: models.BatteryStatusFull,
		},
	}
}

func TestPickBookedSlotPrefersHighestSOH(t *testing.T) {
	slots := []models.Slot{
		occupiedSlot("a", 1, "model-x", 80),
		occupiedSlot("b", 2, "model-x", 92),
		occupiedSlot("c", 3, "model-x", 85),
	}

	slot, ok := pickBookedSlot(slots, "model-x")
	if !ok {
		t.Fatalf("expected a slot to be picked")
	}
	if slot.SlotNumber != 2 {
		t.Fatalf("expected slot 2 (highest SOH), got %d", slot.SlotNumber)
	}
}

func TestPickBookedSlotBreaksTiesByLowestSlotNumber(t *testing.T) {
	slots := []models.Slot{
		occupiedSlot("a", 5, "model-x", 90),
		occupiedSlot("b", 2, "model-x", 90),
		occupiedSlot("c", 8, "model-x", 90),
	}

	slot, ok := pickBookedSlot(slots, "model-x")
	if !ok {
		t.Fatalf("expected a slot to be picked")
	}
	if slot.SlotNumber != 2 {
		t.Fatalf("expected slot 2 on SOH tie, got %d", slot.SlotNumber)
	}
}

func TestPickBookedSlotIsDeterministic(t *testing.T) {
	slots := []models.Slot{
		occupiedSlot("a", 1, "model-x", 70),
		occupiedSlot("b", 2, "model-x", 90),
		occupiedSlot("c", 3, "model-y", 99),
	}

	first, _ := pickBookedSlot(slots, "model-x")
	for i := 0; i < 10; i++ {
		again, _ := pickBookedSlot(slots, "model-x")
		if again.ID != first.ID {
			t.Fatalf("selection not stable: %s vs %s", again.ID, first.ID)
		}
	}
}

func TestPickBookedSlotSkipsIneligibleBatteries(t *testing.T) {
	faulty := occupiedSlot("a", 1, "model-x", 99)
	faulty.Battery.Status = models.BatteryStatusFaulty
	booked := occupiedSlot("b", 2, "model-x", 98)
	booked.Battery.Status = models.BatteryStatusBooking
	good := occupiedSlot("c", 3, "model-x", 60)

	slot, ok := pickBookedSlot([]models.Slot{faulty, booked, good}, "model-x")
	if !ok {
		t.Fatalf("expected the eligible slot to be picked")
	}
	if slot.SlotNumber != 3 {
		t.Fatalf("expected slot 3, got %d", slot.SlotNumber)
	}

	if _, ok := pickBookedSlot([]models.Slot{faulty, booked}, "model-x"); ok {
		t.Fatalf("expected no pick when all batteries are ineligible")
	}
}

func TestPickEmptySlotLowestNumber(t *testing.T) {
	slots := []models.Slot{
		{ID: "a", SlotNumber: 6, Status: models.SlotStatusEmpty},
		{ID: "b", SlotNumber: 4, Status: models.SlotStatusEmpty},
		{ID: "c", SlotNumber: 2, Status: models.SlotStatusReserved},
	}

	slot, ok := pickEmptySlot(slots)
	if !ok {
		t.Fatalf("expected an empty slot")
	}
	if slot.SlotNumber != 4 {
		t.Fatalf("expected slot 4, got %d", slot.SlotNumber)
	}

	if _, ok := pickEmptySlot(slots[2:]); ok {
		t.Fatalf("expected no pick without empty slots")
	}
}
