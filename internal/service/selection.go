package service

import "voltswap/internal/models"

// pickBookedSlot selects the slot whose battery the user will withdraw.
// Selection is deterministic so repeated calls on an unchanged grid pick the
// same slot: highest SOH first, then lowest slot number.
func pickBookedSlot(slots []models.Slot, model string) (*models.Slot, bool) {
	var best *models.Slot
	for i := range slots {
		slot := &slots[i]
		if !slot.HoldsBattery() {
			continue
		}
		if slot.Reservation != nil {
			continue
		}
		battery := slot.Battery
		if battery.Model != model || !battery.Withdrawable() {
			continue
		}
		if best == nil {
			best = slot
			continue
		}
		if battery.SOH > best.Battery.SOH ||
			(battery.SOH == best.Battery.SOH && slot.SlotNumber < best.SlotNumber) {
			best = slot
		}
	}
	return best, best != nil
}

// pickEmptySlot selects the deposit slot for the old battery: the empty slot
// with the lowest slot number.
func pickEmptySlot(slots []models.Slot) (*models.Slot, bool) {
	var best *models.Slot
	for i := range slots {
		slot := &slots[i]
		if slot.Status != models.SlotStatusEmpty {
			continue
		}
		if best == nil || slot.SlotNumber < best.SlotNumber {
			best = slot
		}
	}
	return best, best != nil
}
