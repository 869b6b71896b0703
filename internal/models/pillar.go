package models

// Pillar describes a swap pillar and its fixed grid dimensions.
type Pillar struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Location string `db:"location" json:"location"`
	Rows     int    `db:"rows" json:"rows"`
	Cols     int    `db:"cols" json:"cols"`
}
