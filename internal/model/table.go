package model

import "time"

// Table is a dining table that can hold at most one seated reservation.
// ReservationID is nil while the table is free.
type Table struct {
	ID            uint64    `json:"table_id"`
	Name          string    `json:"table_name"`
	Capacity      int       `json:"capacity"`
	ReservationID *uint64   `json:"reservation_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Occupied reports whether a reservation is currently seated at the table.
func (t *Table) Occupied() bool { return t.ReservationID != nil }

// Fits reports whether a party of people can sit at the table.
func (t *Table) Fits(people int) bool { return people <= t.Capacity }
