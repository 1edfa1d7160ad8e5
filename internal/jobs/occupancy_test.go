package jobs

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-reservation/internal/metrics"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

var now = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T) *repository.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore(func() time.Time { return now })
	for _, r := range []model.Reservation{
		{FirstName: "A", LastName: "A", ReservationDate: "2026-10-19", ReservationTime: "12:00", People: 2, Status: model.StatusBooked},
		{FirstName: "B", LastName: "B", ReservationDate: "2026-10-19", ReservationTime: "13:00", People: 2, Status: model.StatusSeated},
		{FirstName: "C", LastName: "C", ReservationDate: "2026-10-19", ReservationTime: "14:00", People: 2, Status: model.StatusBooked},
		{FirstName: "D", LastName: "D", ReservationDate: "2026-10-21", ReservationTime: "12:00", People: 2, Status: model.StatusBooked},
	} {
		r := r
		require.NoError(t, store.Reservations().Create(ctx, &r))
	}
	tbl := &model.Table{Name: "Bar", Capacity: 4}
	require.NoError(t, store.Tables().Create(ctx, tbl))
	require.NoError(t, store.Tables().Create(ctx, &model.Table{Name: "Patio", Capacity: 4}))
	seated := uint64(2)
	require.NoError(t, store.Tables().SetReservation(ctx, tbl.ID, &seated))
	return store
}

func TestOccupancyJobRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	job := &OccupancyJob{
		Store:   seed(t),
		Metrics: metrics.New(reg),
		Now:     func() time.Time { return now },
	}

	require.NoError(t, job.Run(context.Background()))

	expected := `
# HELP restaurant_reservations_today Reservations for the current day by status
# TYPE restaurant_reservations_today gauge
restaurant_reservations_today{status="booked"} 2
restaurant_reservations_today{status="seated"} 1
# HELP restaurant_tables_occupied Tables currently holding a seated reservation
# TYPE restaurant_tables_occupied gauge
restaurant_tables_occupied 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"restaurant_reservations_today", "restaurant_tables_occupied"))
}

func TestStartRunsImmediately(t *testing.T) {
	reg := prometheus.NewRegistry()
	job := &OccupancyJob{Store: seed(t), Metrics: metrics.New(reg), Now: func() time.Time { return now }}

	s, err := Start(context.Background(), job, time.Hour)
	require.NoError(t, err)
	defer func() { _ = s.Shutdown() }()

	assert.Eventually(t, func() bool {
		n, err := testutil.GatherAndCount(reg, "restaurant_reservations_today")
		return err == nil && n == 2
	}, 2*time.Second, 10*time.Millisecond)
}
