package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/restaurant-reservation/internal/apperr"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/queue"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
	"github.com/iliyamo/restaurant-reservation/internal/validate"
)

var (
	reservationFields = []string{
		"first_name", "last_name", "mobile_number",
		"reservation_date", "reservation_time", "people", "status",
	}
	requiredReservationFields = []string{
		"first_name", "last_name", "mobile_number",
		"reservation_date", "reservation_time", "people",
	}
	// updatableReservationFields additionally tolerates the read-only
	// columns a client echoes back from a previous GET.
	updatableReservationFields = append(append([]string{}, reservationFields...),
		"reservation_id", "created_at", "updated_at")
)

var contactMessages = messages{"required": "%s cannot be empty or missing"}

// ReservationService owns the reservation lifecycle: booking, editing,
// status changes and the read side used by the list endpoints.
type ReservationService struct {
	Deps
}

func NewReservationService(d Deps) *ReservationService {
	return &ReservationService{Deps: d.withDefaults()}
}

// ListQuery selects which reservations List returns.  Date wins over
// Mobile; with neither set every reservation is returned.
type ListQuery struct {
	Date   string
	Mobile string
}

// Create books a new reservation from the request payload.
func (s *ReservationService) Create(ctx context.Context, p validate.Payload) (*model.Reservation, error) {
	r, err := s.buildReservation(p)
	if err != nil {
		return nil, s.reject("create_reservation", err)
	}
	if err := s.Store.Reservations().Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}
	s.Metrics.ReservationCreated()
	s.publish(ctx, queue.NewEvent(queue.EventReservationCreated, r, nil, s.Clock.Now()))
	return r, nil
}

func (s *ReservationService) buildReservation(p validate.Payload) (*model.Reservation, error) {
	if err := validate.OnlyKnownFields(p, reservationFields...); err != nil {
		return nil, err
	}
	if err := validate.RequireFields(p, requiredReservationFields...); err != nil {
		return nil, err
	}
	if p.Has("status") {
		st, _ := p.String("status")
		switch model.ReservationStatus(st) {
		case model.StatusSeated, model.StatusFinished:
			return nil, apperr.Validation("reservation cannot be created with status %s", st)
		}
	}
	r := &model.Reservation{Status: model.StatusBooked}
	r.FirstName, _ = p.String("first_name")
	r.LastName, _ = p.String("last_name")
	r.MobileNumber, _ = p.String("mobile_number")
	r.ReservationDate, _ = p.String("reservation_date")
	r.ReservationTime, _ = p.String("reservation_time")
	people, ok := p.Int("people")
	r.People = people
	if err := s.Hours.checkSlot(r, ok, s.Clock.Now()); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns a single reservation.
func (s *ReservationService) Get(ctx context.Context, id uint64) (*model.Reservation, error) {
	return s.load(ctx, s.Store, id)
}

func (s *ReservationService) load(ctx context.Context, st repository.Store, id uint64) (*model.Reservation, error) {
	r, err := st.Reservations().GetByID(ctx, id)
	if errors.Is(err, repository.ErrReservationNotFound) {
		return nil, apperr.NotFound("reservation id %d cannot be found.", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load reservation %d: %w", id, err)
	}
	return r, nil
}

// List dispatches to ListByDate, SearchByMobile or ListAll.
func (s *ReservationService) List(ctx context.Context, q ListQuery) ([]*model.Reservation, error) {
	switch {
	case q.Date != "":
		return s.ListByDate(ctx, q.Date)
	case q.Mobile != "":
		return s.SearchByMobile(ctx, q.Mobile)
	}
	return s.ListAll(ctx)
}

// ListAll returns every reservation ordered by date and time.
func (s *ReservationService) ListAll(ctx context.Context) ([]*model.Reservation, error) {
	list, err := s.Store.Reservations().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return list, nil
}

// ListByDate returns the reservations of one day ordered by time.
func (s *ReservationService) ListByDate(ctx context.Context, date string) ([]*model.Reservation, error) {
	d, err := model.ParseDate(date)
	if err != nil {
		return nil, apperr.Validation("date must be a valid date")
	}
	list, err := s.Store.Reservations().ListByDate(ctx, d.Format(model.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("list reservations by date: %w", err)
	}
	return list, nil
}

// SearchByMobile returns reservations whose mobile number contains fragment.
func (s *ReservationService) SearchByMobile(ctx context.Context, fragment string) ([]*model.Reservation, error) {
	list, err := s.Store.Reservations().SearchByMobile(ctx, fragment)
	if err != nil {
		return nil, fmt.Errorf("search reservations: %w", err)
	}
	return list, nil
}

// Update replaces the editable fields of a reservation.  Fields absent from
// the payload keep their stored values; identity and timestamps are never
// taken from the payload.
func (s *ReservationService) Update(ctx context.Context, id uint64, p validate.Payload) (*model.Reservation, error) {
	var (
		updated  *model.Reservation
		previous model.ReservationStatus
	)
	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		current, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Status == model.StatusFinished {
			return apperr.Conflict("a finished reservation cannot be updated")
		}
		if err := validate.OnlyKnownFields(p, updatableReservationFields...); err != nil {
			return err
		}
		merged := *current
		previous = current.Status
		mergeString(p, "first_name", &merged.FirstName)
		mergeString(p, "last_name", &merged.LastName)
		mergeString(p, "mobile_number", &merged.MobileNumber)
		mergeString(p, "reservation_date", &merged.ReservationDate)
		mergeString(p, "reservation_time", &merged.ReservationTime)
		if err := checkRules(reservationContact{
			FirstName:       merged.FirstName,
			LastName:        merged.LastName,
			MobileNumber:    merged.MobileNumber,
			ReservationTime: merged.ReservationTime,
		}, contactMessages); err != nil {
			return err
		}
		peopleValid := true
		if p.Present("people") {
			merged.People, peopleValid = p.Int("people")
		}
		if err := s.Hours.checkSlot(&merged, peopleValid, s.Clock.Now()); err != nil {
			return err
		}
		if p.Present("status") {
			st, _ := p.String("status")
			next, err := checkTransition(current.Status, model.ReservationStatus(st))
			if err != nil {
				return err
			}
			merged.Status = next
			if err := releaseTable(ctx, tx, current, next); err != nil {
				return err
			}
		}
		if err := checkSeatedCapacity(ctx, tx, current, &merged); err != nil {
			return err
		}
		if err := tx.Reservations().Update(ctx, &merged); err != nil {
			return fmt.Errorf("update reservation %d: %w", id, err)
		}
		updated, err = s.load(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, s.reject("update_reservation", err)
	}
	if updated.Status != previous {
		s.Metrics.StatusChanged(string(previous), string(updated.Status))
	}
	s.publish(ctx, queue.NewEvent(queue.EventReservationUpdated, updated, nil, s.Clock.Now()))
	return updated, nil
}

// UpdateStatus moves a reservation to the status named in the payload.
func (s *ReservationService) UpdateStatus(ctx context.Context, id uint64, p validate.Payload) (*model.Reservation, error) {
	var (
		updated  *model.Reservation
		previous model.ReservationStatus
	)
	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		current, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := validate.RequireFields(p, "status"); err != nil {
			return err
		}
		if current.Status == model.StatusFinished {
			return apperr.Conflict("a finished reservation cannot be updated")
		}
		st, _ := p.String("status")
		next, err := checkTransition(current.Status, model.ReservationStatus(st))
		if err != nil {
			return err
		}
		previous = current.Status
		if err := releaseTable(ctx, tx, current, next); err != nil {
			return err
		}
		if err := tx.Reservations().UpdateStatus(ctx, id, next); err != nil {
			return fmt.Errorf("update reservation %d status: %w", id, err)
		}
		updated, err = s.load(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, s.reject("update_status", err)
	}
	s.Metrics.StatusChanged(string(previous), string(updated.Status))
	ev := queue.NewEvent(queue.EventReservationStatusChanged, updated, nil, s.Clock.Now())
	ev.PreviousStatus = string(previous)
	s.publish(ctx, ev)
	return updated, nil
}

func mergeString(p validate.Payload, name string, dst *string) {
	if !p.Present(name) {
		return
	}
	v, _ := p.String(name)
	*dst = v
}

// checkTransition validates a requested status against the current one.
func checkTransition(from, to model.ReservationStatus) (model.ReservationStatus, error) {
	if !to.Valid() {
		return "", apperr.Validation("reservation status is unknown")
	}
	if from == model.StatusFinished {
		return "", apperr.Conflict("a finished reservation cannot be updated")
	}
	if !model.CanTransition(from, to) {
		return "", apperr.Conflict("reservation cannot move from %s to %s", from, to)
	}
	return to, nil
}

// checkSeatedCapacity keeps a party that stays seated within the capacity of
// the table it occupies.
func checkSeatedCapacity(ctx context.Context, tx repository.Store, current, merged *model.Reservation) error {
	if current.Status != model.StatusSeated || merged.Status != model.StatusSeated || merged.People == current.People {
		return nil
	}
	t, err := tx.Tables().GetByReservationID(ctx, current.ID)
	if errors.Is(err, repository.ErrTableNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find table for reservation %d: %w", current.ID, err)
	}
	if !t.Fits(merged.People) {
		return capacityConflict(t, merged.People)
	}
	return nil
}

// releaseTable frees the table held by a seated reservation that is
// leaving the seated state.
func releaseTable(ctx context.Context, tx repository.Store, r *model.Reservation, next model.ReservationStatus) error {
	if r.Status != model.StatusSeated || next == model.StatusSeated {
		return nil
	}
	t, err := tx.Tables().GetByReservationID(ctx, r.ID)
	if errors.Is(err, repository.ErrTableNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find table for reservation %d: %w", r.ID, err)
	}
	if err := tx.Tables().SetReservation(ctx, t.ID, nil); err != nil {
		return fmt.Errorf("release table %d: %w", t.ID, err)
	}
	return nil
}
