package models

import "fmt"

// GridStats summarizes slot availability for a pillar.
type GridStats struct {
	Total    int `json:"total"`
	Empty    int `json:"empty"`
	Reserved int `json:"reserved"`
	Occupied int `json:"occupied"`
	Charging int `json:"charging"`
}

// SlotGrid is a read-only snapshot of a pillar's physical layout. Slots are
// ordered row-major; dimensions are fixed at creation.
type SlotGrid struct {
	PillarID string    `json:"pillar_id"`
	Rows     int       `json:"rows"`
	Cols     int       `json:"cols"`
	Slots    []Slot    `json:"slots"`
	Stats    GridStats `json:"stats"`
}

// NewSlotGrid shapes a row-major slot sequence into a grid and validates the
// pillar invariants: unique slot numbers and slot count matching rows*cols.
func NewSlotGrid(pillarID string, rows, cols int, slots []Slot) (*SlotGrid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("grid: invalid dimensions %dx%d", rows, cols)
	}
	if len(slots) != rows*cols {
		return nil, fmt.Errorf("grid: pillar %s has %d slots, want %d", pillarID, len(slots), rows*cols)
	}

	seen := make(map[int]struct{}, len(slots))
	stats := GridStats{Total: len(slots)}
	for i := range slots {
		n := slots[i].SlotNumber
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("grid: duplicate slot number %d in pillar %s", n, pillarID)
		}
		seen[n] = struct{}{}

		switch slots[i].Status {
		case SlotStatusEmpty:
			stats.Empty++
		case SlotStatusReserved:
			stats.Reserved++
		case SlotStatusOccupied:
			stats.Occupied++
		case SlotStatusCharging:
			stats.Charging++
		default:
			return nil, fmt.Errorf("grid: slot %d has unknown status %q", n, slots[i].Status)
		}
	}

	return &SlotGrid{
		PillarID: pillarID,
		Rows:     rows,
		Cols:     cols,
		Slots:    slots,
		Stats:    stats,
	}, nil
}

// SlotByID looks a slot up by its opaque identifier.
func (g *SlotGrid) SlotByID(id string) (*Slot, bool) {
	for i := range g.Slots {
		if g.Slots[i].ID == id {
			return &g.Slots[i], true
		}
	}
	return nil, false
}

// SlotByNumber looks a slot up by its 1-based slot number.
func (g *SlotGrid) SlotByNumber(n int) (*Slot, bool) {
	for i := range g.Slots {
		if g.Slots[i].SlotNumber == n {
			return &g.Slots[i], true
		}
	}
	return nil, false
}

// Layout returns the slots shaped rows x cols, row-major.
func (g *SlotGrid) Layout() [][]Slot {
	layout := make([][]Slot, g.Rows)
	for r := 0; r < g.Rows; r++ {
		layout[r] = g.Slots[r*g.Cols : (r+1)*g.Cols]
	}
	return layout
}
