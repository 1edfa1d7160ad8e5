package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessHoursInLocalZone(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	hours := DefaultBusinessHours()
	hours.Location = loc
	f := newFixture(t)
	svc := NewReservationService(Deps{
		Store: f.store,
		Clock: ClockFunc(func() time.Time { return fixedNow }),
		Hours: hours,
	})

	// 14:30 local on the same day is 11:30 UTC, before the clock's noon.
	_, err := svc.Create(t.Context(), payload(t, `{"data": {
		"first_name": "A", "last_name": "B", "mobile_number": "1",
		"reservation_date": "2026-10-18", "reservation_time": "14:30", "people": 1}}`))
	require.Error(t, err)
	assert.Equal(t, "the reservation must be in the future", err.Error())

	_, err = svc.Create(t.Context(), payload(t, `{"data": {
		"first_name": "A", "last_name": "B", "mobile_number": "1",
		"reservation_date": "2026-10-18", "reservation_time": "15:30", "people": 1}}`))
	assert.NoError(t, err)
}
