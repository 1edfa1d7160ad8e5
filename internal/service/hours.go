package service

import (
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/apperr"
	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// BusinessHours describes when the restaurant accepts reservations.  Open
// and Close are both inclusive; ClosedDays lists weekly closures.
type BusinessHours struct {
	Location   *time.Location
	Open       model.Clock
	Close      model.Clock
	ClosedDays []time.Weekday
}

// DefaultBusinessHours is 10:30–21:30 UTC, closed on Tuesdays.
func DefaultBusinessHours() BusinessHours {
	return BusinessHours{
		Location:   time.UTC,
		Open:       model.MustParseClock("10:30"),
		Close:      model.MustParseClock("21:30"),
		ClosedDays: []time.Weekday{time.Tuesday},
	}
}

func (h BusinessHours) closedOn(d time.Weekday) bool {
	for _, c := range h.ClosedDays {
		if c == d {
			return true
		}
	}
	return false
}

// checkSlot validates the date, time and party size of r against the
// opening rules and now, then normalises the date and time fields.  The
// checks run in a fixed order so the first failing rule is reported.
func (h BusinessHours) checkSlot(r *model.Reservation, peopleValid bool, now time.Time) error {
	date, err := model.ParseDate(r.ReservationDate)
	if err != nil {
		return apperr.Validation("reservation_date must be a valid date")
	}
	clock, err := model.ParseClock(r.ReservationTime)
	if err != nil {
		return apperr.Validation("reservation_time must be a time")
	}
	if h.closedOn(date.Weekday()) {
		return apperr.Validation("the restaurant is closed on %s", date.Weekday())
	}
	if !clock.On(date, h.Location).After(now) {
		return apperr.Validation("the reservation must be in the future")
	}
	if !peopleValid || r.People < 1 {
		return apperr.Validation("people must be a number greater than 0")
	}
	if clock.Before(h.Open) {
		return apperr.Validation("the reservation is too early")
	}
	if clock.After(h.Close) {
		return apperr.Validation("the reservation is too late")
	}
	r.ReservationDate = date.Format(model.DateLayout)
	r.ReservationTime = clock.String()
	return nil
}
