package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusBooked    ReservationStatus = "booked"
	StatusSeated    ReservationStatus = "seated"
	StatusFinished  ReservationStatus = "finished"
	StatusCancelled ReservationStatus = "cancelled"
)

// Reservation is a guest booking for a party at a given date and time.
//
// Fields:
//
//	ID              – primary key identifier (reservations.reservation_id).
//	FirstName       – guest first name, never empty.
//	LastName        – guest last name, never empty.
//	MobileNumber    – contact number used for lookups.
//	ReservationDate – calendar date in YYYY-MM-DD form.
//	ReservationTime – time of day in HH:MM form.
//	People          – party size, at least one.
//	Status          – booked, seated, finished or cancelled.
//	CreatedAt       – creation timestamp.
//	UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              uint64            `json:"reservation_id"`
	FirstName       string            `json:"first_name"`
	LastName        string            `json:"last_name"`
	MobileNumber    string            `json:"mobile_number"`
	ReservationDate string            `json:"reservation_date"`
	ReservationTime string            `json:"reservation_time"`
	People          int               `json:"people"`
	Status          ReservationStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Valid reports whether s is one of the known statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusBooked, StatusSeated, StatusFinished, StatusCancelled:
		return true
	}
	return false
}

// rank orders the non-cancelled statuses; transitions may never move backwards.
func (s ReservationStatus) rank() int {
	switch s {
	case StatusBooked:
		return 1
	case StatusSeated:
		return 2
	case StatusFinished:
		return 3
	}
	return 0
}

// CanTransition reports whether a reservation in status from may be moved to
// status to. Finished reservations are frozen. Cancellation is accepted from
// every other state and a cancelled reservation can only stay cancelled.
func CanTransition(from, to ReservationStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == StatusFinished {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	if from == StatusCancelled {
		return false
	}
	return to.rank() >= from.rank()
}

// Slot returns the reservation's date and time combined in loc.
func (r *Reservation) Slot(loc *time.Location) (time.Time, error) {
	d, err := ParseDate(r.ReservationDate)
	if err != nil {
		return time.Time{}, err
	}
	c, err := ParseClock(r.ReservationTime)
	if err != nil {
		return time.Time{}, err
	}
	return c.On(d, loc), nil
}
