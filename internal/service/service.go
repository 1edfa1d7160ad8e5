// Package service implements the reservation lifecycle and the table
// assignment workflow on top of repository.Store.  Handlers hand it the
// parsed request payload; it returns domain records or apperr errors.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-reservation/internal/apperr"
	"github.com/iliyamo/restaurant-reservation/internal/metrics"
	"github.com/iliyamo/restaurant-reservation/internal/queue"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// Clock supplies the current time for business rule evaluation.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// EventPublisher delivers workflow events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, queue.Event) error { return nil }

// Deps bundles the collaborators shared by both services.  Only Store is
// required.
type Deps struct {
	Store     repository.Store
	Clock     Clock
	Hours     BusinessHours
	Publisher EventPublisher
	Metrics   *metrics.Workflow
	Logger    *logrus.Entry
}

func (d Deps) withDefaults() Deps {
	if d.Store == nil {
		panic("service: nil store")
	}
	if d.Clock == nil {
		d.Clock = SystemClock
	}
	if d.Hours.Location == nil {
		d.Hours = DefaultBusinessHours()
	}
	if d.Publisher == nil {
		d.Publisher = nopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return d
}

// publish sends ev after the owning write has been committed.  Broker
// failures are logged and never fail the request.
func (d Deps) publish(ctx context.Context, ev queue.Event) {
	if err := d.Publisher.Publish(ctx, ev); err != nil {
		d.Logger.WithError(err).WithFields(logrus.Fields{
			"event":          ev.Type,
			"reservation_id": ev.ReservationID,
		}).Warn("failed to publish reservation event")
	}
}

// reject records client errors in metrics and passes err through.  A
// transaction that kept deadlocking against a concurrent write is reported
// as a conflict the client may retry.
func (d Deps) reject(operation string, err error) error {
	if errors.Is(err, repository.ErrDeadlock) {
		d.Logger.WithError(err).WithField("operation", operation).Warn("transaction deadlocked")
		err = apperr.Conflict("the request conflicted with a concurrent change, please retry")
	}
	if e, ok := apperr.As(err); ok {
		d.Metrics.Rejected(operation, e.Kind.String())
	}
	return err
}
