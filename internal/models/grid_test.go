package models

import "testing"

func gridSlots(pillarID string, n int) []Slot {
	slots := make([]Slot, n)
	for i := range slots {
		slots[i] = Slot{
			ID:         pillarID + "-slot",
			PillarID:   pillarID,
			SlotNumber: i + 1,
			Status:     SlotStatusEmpty,
		}
	}
	return slots
}

func TestNewSlotGridValidates(t *testing.T) {
	if _, err := NewSlotGrid("p", 2, 3, gridSlots("p", 6)); err != nil {
		t.Fatalf("valid grid rejected: %v", err)
	}

	if _, err := NewSlotGrid("p", 2, 3, gridSlots("p", 5)); err == nil {
		t.Fatalf("expected error for slot count mismatch")
	}

	if _, err := NewSlotGrid("p", 0, 3, nil); err == nil {
		t.Fatalf("expected error for zero rows")
	}

	dup := gridSlots("p", 6)
	dup[5].SlotNumber = 1
	if _, err := NewSlotGrid("p", 2, 3, dup); err == nil {
		t.Fatalf("expected error for duplicate slot number")
	}

	bad := gridSlots("p", 6)
	bad[0].Status = "molten"
	if _, err := NewSlotGrid("p", 2, 3, bad); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestSlotGridStatsAndLookup(t *testing.T) {
	slots := gridSlots("p", 4)
	slots[1].Status = SlotStatusReserved
	slots[2].Status = SlotStatusOccupied
	slots[2].Battery = &Battery{ID: "b1", Serial: "S1"}
	slots[2].ID = "target"

	grid, err := NewSlotGrid("p", 2, 2, slots)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	if grid.Stats.Empty != 2 || grid.Stats.Reserved != 1 || grid.Stats.Occupied != 1 {
		t.Fatalf("unexpected stats: %+v", grid.Stats)
	}

	slot, ok := grid.SlotByID("target")
	if !ok || slot.SlotNumber != 3 {
		t.Fatalf("SlotByID failed")
	}
	slot, ok = grid.SlotByNumber(3)
	if !ok || slot.ID != "target" {
		t.Fatalf("SlotByNumber failed")
	}
	if _, ok := grid.SlotByNumber(99); ok {
		t.Fatalf("expected miss for unknown slot number")
	}
}
