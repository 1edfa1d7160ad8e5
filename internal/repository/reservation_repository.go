package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx so a repository can run
// inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// ReservationRepo provides CRUD operations for the reservations table.  When
// bound to a transaction (lock == true) single-row reads take a row lock so
// that the paired reservation/table writes cannot interleave.
type ReservationRepo struct {
	q    querier
	lock bool
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{q: db} }

const reservationColumns = `reservation_id, first_name, last_name, mobile_number, reservation_date,
       reservation_time, people, status, created_at, updated_at`

func scanReservation(s rowScanner) (*model.Reservation, error) {
	var (
		r      model.Reservation
		date   time.Time
		clock  string
		status string
		people int64
	)
	if err := s.Scan(&r.ID, &r.FirstName, &r.LastName, &r.MobileNumber, &date,
		&clock, &people, &status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.ReservationDate = date.Format(model.DateLayout)
	// TIME columns come back as HH:MM:SS; the API speaks HH:MM.
	if c, err := model.ParseClock(clock); err == nil {
		r.ReservationTime = c.String()
	} else {
		r.ReservationTime = clock
	}
	r.People = int(people)
	r.Status = model.ReservationStatus(status)
	return &r, nil
}

func (r *ReservationRepo) selectByID(ctx context.Context, id uint64, lock bool) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE reservation_id = ?`
	if lock {
		q += ` FOR UPDATE`
	}
	res, err := scanReservation(r.q.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// Create inserts a reservation and reads the row back so that the generated
// ID and timestamps are populated on res.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (first_name, last_name, mobile_number, reservation_date, reservation_time, people, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.q.ExecContext(ctx, q, res.FirstName, res.LastName, res.MobileNumber,
		res.ReservationDate, res.ReservationTime, res.People, string(res.Status))
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := r.selectByID(ctx, uint64(id), false)
	if err != nil {
		return err
	}
	*res = *fresh
	return nil
}

// GetByID returns the reservation with the given ID or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return r.selectByID(ctx, id, r.lock)
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...any) ([]*model.Reservation, error) {
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns all reservations ordered by date and time.
func (r *ReservationRepo) List(ctx context.Context) ([]*model.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations
	                    ORDER BY reservation_date, reservation_time, reservation_id`)
}

// ListByDate returns reservations on one calendar date ordered by time.
func (r *ReservationRepo) ListByDate(ctx context.Context, date string) ([]*model.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations
	                    WHERE reservation_date = ?
	                    ORDER BY reservation_time, reservation_id`, date)
}

// SearchByMobile matches fragment anywhere in mobile_number.  LIKE wildcards in
// the fragment are escaped so they match literally.
func (r *ReservationRepo) SearchByMobile(ctx context.Context, fragment string) ([]*model.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations
	                    WHERE mobile_number LIKE ?
	                    ORDER BY reservation_date, reservation_time, reservation_id`, "%"+escapeLike(fragment)+"%")
}

// Update overwrites the mutable columns of res and refreshes its timestamps.
// Returns ErrReservationNotFound when no row matches.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations
	           SET first_name = ?, last_name = ?, mobile_number = ?, reservation_date = ?,
	               reservation_time = ?, people = ?, status = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE reservation_id = ?`
	result, err := r.q.ExecContext(ctx, q, res.FirstName, res.LastName, res.MobileNumber,
		res.ReservationDate, res.ReservationTime, res.People, string(res.Status), res.ID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	fresh, err := r.selectByID(ctx, res.ID, false)
	if err != nil {
		return err
	}
	*res = *fresh
	return nil
}

// UpdateStatus changes only the status column.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, status model.ReservationStatus) error {
	const q = `UPDATE reservations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE reservation_id = ?`
	result, err := r.q.ExecContext(ctx, q, string(status), id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
