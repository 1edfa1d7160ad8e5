package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to ReservationStatus
		want     bool
	}{
		{StatusBooked, StatusBooked, true},
		{StatusBooked, StatusSeated, true},
		{StatusBooked, StatusFinished, true},
		{StatusBooked, StatusCancelled, true},
		{StatusSeated, StatusBooked, false},
		{StatusSeated, StatusFinished, true},
		{StatusSeated, StatusCancelled, true},
		{StatusCancelled, StatusBooked, false},
		{StatusCancelled, StatusSeated, false},
		{StatusCancelled, StatusCancelled, true},
		{StatusFinished, StatusCancelled, false},
		{StatusFinished, StatusFinished, false},
		{StatusFinished, StatusBooked, false},
		{StatusBooked, ReservationStatus("walked_out"), false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("10:30")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 10, Minute: 30}, c)

	c, err = ParseClock("21:30:00")
	require.NoError(t, err)
	assert.Equal(t, "21:30", c.String())

	for _, bad := range []string{"", "1030", "24:00", "10:60", "ab:cd", "10:5", "10:30:99"} {
		_, err := ParseClock(bad)
		assert.ErrorIsf(t, err, ErrInvalidTime, "input %q", bad)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-10-20")
	require.NoError(t, err)
	assert.Equal(t, time.Tuesday, d.Weekday())

	_, err = ParseDate("2026-02-30")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseDate("tomorrow")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestReservationSlot(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)
	r := &Reservation{ReservationDate: "2026-10-19", ReservationTime: "18:00"}
	slot, err := r.Slot(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 19, 18, 0, 0, 0, loc), slot)
}

func TestTableOccupancy(t *testing.T) {
	tbl := &Table{Capacity: 4}
	assert.False(t, tbl.Occupied())
	assert.True(t, tbl.Fits(4))
	assert.False(t, tbl.Fits(5))

	id := uint64(9)
	tbl.ReservationID = &id
	assert.True(t, tbl.Occupied())
}

func TestParseWeekdays(t *testing.T) {
	days, err := ParseWeekdays("Tuesday, wed")
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Tuesday, time.Wednesday}, days)

	days, err = ParseWeekdays("none")
	require.NoError(t, err)
	assert.Empty(t, days)

	_, err = ParseWeekdays("funday")
	assert.Error(t, err)
}
