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

var tableFieldsAllowed = []string{"table_name", "capacity", "reservation_id", "table_id", "people"}

var tableMessages = messages{
	"table_name.min": "table_name is too short",
	"capacity.gte":   "capacity must be greater than 0",
	"required":       "A '%s' property is required.",
}

// TableService creates tables and couples them to reservations: seating a
// reservation occupies a table, finishing frees it again.
type TableService struct {
	Deps
}

func NewTableService(d Deps) *TableService {
	return &TableService{Deps: d.withDefaults()}
}

// Create adds an empty table.  A reservation_id in the payload is accepted
// but ignored; tables are occupied only through Seat.
func (s *TableService) Create(ctx context.Context, p validate.Payload) (*model.Table, error) {
	t, err := buildTable(p)
	if err != nil {
		return nil, s.reject("create_table", err)
	}
	if err := s.Store.Tables().Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	return t, nil
}

func buildTable(p validate.Payload) (*model.Table, error) {
	if err := validate.OnlyKnownFields(p, tableFieldsAllowed...); err != nil {
		return nil, err
	}
	if err := validate.RequireFields(p, "table_name", "capacity"); err != nil {
		return nil, err
	}
	name, _ := p.String("table_name")
	capacity, ok := p.Numeric("capacity")
	if !ok {
		return nil, apperr.Validation("capacity must be a number")
	}
	if err := checkRules(tableFields{Name: name, Capacity: capacity}, tableMessages); err != nil {
		return nil, err
	}
	return &model.Table{Name: name, Capacity: capacity}, nil
}

// Get returns a single table.
func (s *TableService) Get(ctx context.Context, id uint64) (*model.Table, error) {
	return loadTable(ctx, s.Store, id)
}

// List returns every table ordered by name.
func (s *TableService) List(ctx context.Context) ([]*model.Table, error) {
	list, err := s.Store.Tables().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return list, nil
}

func loadTable(ctx context.Context, st repository.Store, id uint64) (*model.Table, error) {
	t, err := st.Tables().GetByID(ctx, id)
	if errors.Is(err, repository.ErrTableNotFound) {
		return nil, apperr.NotFound("table id %d does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load table %d: %w", id, err)
	}
	return t, nil
}

// Seat assigns the reservation named in the payload to the table and marks
// it seated.  Both writes happen in one transaction.
func (s *TableService) Seat(ctx context.Context, tableID uint64, p validate.Payload) (*model.Table, error) {
	var (
		table       *model.Table
		reservation *model.Reservation
		previous    model.ReservationStatus
	)
	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		t, err := loadTable(ctx, tx, tableID)
		if err != nil {
			return err
		}
		if !p.Has("reservation_id") {
			return apperr.Validation("reservation_id is missing")
		}
		rid, ok := p.ID("reservation_id")
		if !ok {
			raw, _ := p.String("reservation_id")
			return apperr.NotFound("reservation %s does not exist", raw)
		}
		r, err := tx.Reservations().GetByID(ctx, rid)
		if errors.Is(err, repository.ErrReservationNotFound) {
			return apperr.NotFound("reservation %d does not exist", rid)
		}
		if err != nil {
			return fmt.Errorf("load reservation %d: %w", rid, err)
		}
		if !t.Fits(r.People) {
			return capacityConflict(t, r.People)
		}
		if t.Occupied() {
			return apperr.Conflict("table is occupied")
		}
		if r.Status == model.StatusSeated {
			return apperr.Conflict("reservation is already seated")
		}
		if !model.CanTransition(r.Status, model.StatusSeated) {
			return apperr.Conflict("a %s reservation cannot be seated", r.Status)
		}
		previous = r.Status
		if err := tx.Tables().SetReservation(ctx, t.ID, &r.ID); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return apperr.Conflict("reservation is already seated")
			}
			return fmt.Errorf("seat table %d: %w", t.ID, err)
		}
		if err := tx.Reservations().UpdateStatus(ctx, r.ID, model.StatusSeated); err != nil {
			return fmt.Errorf("update reservation %d status: %w", r.ID, err)
		}
		if table, err = loadTable(ctx, tx, t.ID); err != nil {
			return err
		}
		r.Status = model.StatusSeated
		reservation = r
		return nil
	})
	if err != nil {
		return nil, s.reject("seat", err)
	}
	s.Metrics.TableSeated()
	s.Metrics.StatusChanged(string(previous), string(model.StatusSeated))
	ev := queue.NewEvent(queue.EventTableSeated, reservation, table, s.Clock.Now())
	ev.PreviousStatus = string(previous)
	s.publish(ctx, ev)
	return table, nil
}

func capacityConflict(t *model.Table, people int) error {
	return apperr.Conflict("insufficient capacity: table %s seats %d, reservation has %d people",
		t.Name, t.Capacity, people)
}

// Finish frees an occupied table and marks its reservation finished.  The
// vacated table is returned.
func (s *TableService) Finish(ctx context.Context, tableID uint64) (*model.Table, error) {
	var (
		table       *model.Table
		reservation *model.Reservation
		previous    model.ReservationStatus
	)
	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		reservation = nil
		t, err := loadTable(ctx, tx, tableID)
		if err != nil {
			return err
		}
		if !t.Occupied() {
			return apperr.Validation("table is not occupied")
		}
		rid := *t.ReservationID
		if err := tx.Tables().SetReservation(ctx, t.ID, nil); err != nil {
			return fmt.Errorf("free table %d: %w", t.ID, err)
		}
		r, err := tx.Reservations().GetByID(ctx, rid)
		switch {
		case errors.Is(err, repository.ErrReservationNotFound):
			// The occupant vanished; the table is still released.
		case err != nil:
			return fmt.Errorf("load reservation %d: %w", rid, err)
		default:
			previous = r.Status
			if err := tx.Reservations().UpdateStatus(ctx, rid, model.StatusFinished); err != nil {
				return fmt.Errorf("finish reservation %d: %w", rid, err)
			}
			r.Status = model.StatusFinished
			reservation = r
		}
		table, err = loadTable(ctx, tx, t.ID)
		return err
	})
	if err != nil {
		return nil, s.reject("finish", err)
	}
	s.Metrics.TableFinished()
	if reservation != nil {
		s.Metrics.StatusChanged(string(previous), string(model.StatusFinished))
		ev := queue.NewEvent(queue.EventTableFinished, reservation, table, s.Clock.Now())
		ev.PreviousStatus = string(previous)
		s.publish(ctx, ev)
	}
	return table, nil
}
