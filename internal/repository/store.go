package repository

import (
	"context"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// ReservationStore reads and writes reservations.
type ReservationStore interface {
	// Create inserts r and fills in its ID and timestamps.
	Create(ctx context.Context, r *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	// List returns every reservation ordered by date then time.
	List(ctx context.Context) ([]*model.Reservation, error)
	// ListByDate returns reservations on the given YYYY-MM-DD date ordered by time.
	ListByDate(ctx context.Context, date string) ([]*model.Reservation, error)
	// SearchByMobile returns reservations whose mobile number contains fragment.
	SearchByMobile(ctx context.Context, fragment string) ([]*model.Reservation, error)
	// Update overwrites every mutable column of r.
	Update(ctx context.Context, r *model.Reservation) error
	UpdateStatus(ctx context.Context, id uint64, status model.ReservationStatus) error
}

// TableStore reads and writes tables.
type TableStore interface {
	Create(ctx context.Context, t *model.Table) error
	GetByID(ctx context.Context, id uint64) (*model.Table, error)
	// GetByReservationID returns the table the reservation is seated at.
	GetByReservationID(ctx context.Context, reservationID uint64) (*model.Table, error)
	// List returns every table ordered by name.
	List(ctx context.Context) ([]*model.Table, error)
	// SetReservation occupies (non-nil) or frees (nil) the table.
	SetReservation(ctx context.Context, tableID uint64, reservationID *uint64) error
}

// Store groups both collections and the transaction boundary spanning them.
type Store interface {
	Reservations() ReservationStore
	Tables() TableStore
	// WithinTx runs fn against a transactional view of the store. The work is
	// committed when fn returns nil and discarded otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
