package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

func fixedNow() time.Time { return stamp }

func seedReservation(t *testing.T, s Store, date, clock, mobile string) *model.Reservation {
	t.Helper()
	r := &model.Reservation{FirstName: "Ada", LastName: "Lovelace", MobileNumber: mobile,
		ReservationDate: date, ReservationTime: clock, People: 2, Status: model.StatusBooked}
	require.NoError(t, s.Reservations().Create(context.Background(), r))
	return r
}

func TestMemoryStoreReservationOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(fixedNow)
	seedReservation(t, s, "2026-10-21", "12:00", "555-0001")
	seedReservation(t, s, "2026-10-19", "19:00", "555-0002")
	seedReservation(t, s, "2026-10-19", "11:15", "800-0003")

	all, err := s.Reservations().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"11:15", "19:00", "12:00"},
		[]string{all[0].ReservationTime, all[1].ReservationTime, all[2].ReservationTime})

	day, err := s.Reservations().ListByDate(ctx, "2026-10-19")
	require.NoError(t, err)
	assert.Len(t, day, 2)
	assert.Equal(t, "11:15", day[0].ReservationTime)

	found, err := s.Reservations().SearchByMobile(ctx, "555")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestMemoryStoreTableRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(fixedNow)
	tbl := &model.Table{Name: "#1", Capacity: 4}
	require.NoError(t, s.Tables().Create(ctx, tbl))

	got, err := s.Tables().GetByID(ctx, tbl.ID)
	require.NoError(t, err)
	assert.Equal(t, tbl, got)
	assert.Nil(t, got.ReservationID)

	_, err = s.Tables().GetByID(ctx, 42)
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestMemoryStoreUniqueReservationPerTable(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(fixedNow)
	a := &model.Table{Name: "A1", Capacity: 2}
	b := &model.Table{Name: "B1", Capacity: 2}
	require.NoError(t, s.Tables().Create(ctx, a))
	require.NoError(t, s.Tables().Create(ctx, b))

	rid := uint64(5)
	require.NoError(t, s.Tables().SetReservation(ctx, a.ID, &rid))
	assert.ErrorIs(t, s.Tables().SetReservation(ctx, b.ID, &rid), ErrConflict)

	held, err := s.Tables().GetByReservationID(ctx, rid)
	require.NoError(t, err)
	assert.Equal(t, a.ID, held.ID)
}

func TestMemoryStoreWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(fixedNow)
	r := seedReservation(t, s, "2026-10-19", "18:00", "555")
	tbl := &model.Table{Name: "#1", Capacity: 4}
	require.NoError(t, s.Tables().Create(ctx, tbl))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx Store) error {
		if err := tx.Tables().SetReservation(ctx, tbl.ID, &r.ID); err != nil {
			return err
		}
		if err := tx.Reservations().UpdateStatus(ctx, r.ID, model.StatusSeated); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := s.Tables().GetByID(ctx, tbl.ID)
	assert.Nil(t, got.ReservationID)
	res, _ := s.Reservations().GetByID(ctx, r.ID)
	assert.Equal(t, model.StatusBooked, res.Status)

	require.NoError(t, s.WithinTx(ctx, func(tx Store) error {
		return tx.Tables().SetReservation(ctx, tbl.ID, &r.ID)
	}))
	got, _ = s.Tables().GetByID(ctx, tbl.ID)
	require.NotNil(t, got.ReservationID)
	assert.Equal(t, r.ID, *got.ReservationID)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(fixedNow)
	r := seedReservation(t, s, "2026-10-19", "18:00", "555")

	got, err := s.Reservations().GetByID(ctx, r.ID)
	require.NoError(t, err)
	got.Status = model.StatusFinished

	again, _ := s.Reservations().GetByID(ctx, r.ID)
	assert.Equal(t, model.StatusBooked, again.Status)
}
