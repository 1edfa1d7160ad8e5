// Package jobs runs periodic background work next to the HTTP server.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-reservation/internal/metrics"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// OccupancyJob refreshes the daily reservation and occupied table gauges.
type OccupancyJob struct {
	Store    repository.Store
	Metrics  *metrics.Workflow
	Location *time.Location
	Now      func() time.Time
	Logger   *logrus.Entry
}

// Run takes one snapshot of today's reservations and of table occupancy.
func (j *OccupancyJob) Run(ctx context.Context) error {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	loc := j.Location
	if loc == nil {
		loc = time.UTC
	}
	today := now().In(loc).Format(model.DateLayout)

	list, err := j.Store.Reservations().ListByDate(ctx, today)
	if err != nil {
		return fmt.Errorf("list reservations for %s: %w", today, err)
	}
	counts := make(map[string]int, 4)
	for _, r := range list {
		counts[string(r.Status)]++
	}

	tables, err := j.Store.Tables().List(ctx)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	occupied := 0
	for _, t := range tables {
		if t.Occupied() {
			occupied++
		}
	}

	j.Metrics.SetToday(counts)
	j.Metrics.SetOccupiedTables(occupied)
	return nil
}

// Start schedules j every interval, starting immediately, and returns the
// running scheduler.  The caller shuts it down.
func Start(ctx context.Context, j *OccupancyJob, interval time.Duration) (gocron.Scheduler, error) {
	logger := j.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := j.Run(ctx); err != nil {
				logger.WithError(err).Warn("occupancy snapshot failed")
			}
		}),
		gocron.WithName("occupancy"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("schedule occupancy job: %w", err)
	}
	s.Start()
	return s, nil
}
