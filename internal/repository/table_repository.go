package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

// TableRepo provides persistence for restaurant tables.  The SQL table is
// named restaurant_tables to stay clear of the TABLES keyword.
type TableRepo struct {
	q    querier
	lock bool
}

// NewTableRepo constructs a TableRepo with the given DB handle.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{q: db} }

const tableColumns = `table_id, table_name, capacity, reservation_id, created_at, updated_at`

func scanTable(s rowScanner) (*model.Table, error) {
	var (
		t        model.Table
		capacity int64
		resID    sql.NullInt64
	)
	if err := s.Scan(&t.ID, &t.Name, &capacity, &resID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Capacity = int(capacity)
	if resID.Valid {
		id := uint64(resID.Int64)
		t.ReservationID = &id
	}
	return &t, nil
}

func (r *TableRepo) selectOne(ctx context.Context, where string, arg any, lock bool) (*model.Table, error) {
	q := `SELECT ` + tableColumns + ` FROM restaurant_tables WHERE ` + where
	if lock {
		q += ` FOR UPDATE`
	}
	t, err := scanTable(r.q.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return t, nil
}

// Create inserts a new, unoccupied table and reads it back.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	const q = `INSERT INTO restaurant_tables (table_name, capacity) VALUES (?, ?)`
	res, err := r.q.ExecContext(ctx, q, t.Name, t.Capacity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := r.selectOne(ctx, `table_id = ?`, uint64(id), false)
	if err != nil {
		return err
	}
	*t = *fresh
	return nil
}

// GetByID returns ErrTableNotFound when no row is found.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.Table, error) {
	return r.selectOne(ctx, `table_id = ?`, id, r.lock)
}

// GetByReservationID finds the table currently holding the reservation.
func (r *TableRepo) GetByReservationID(ctx context.Context, reservationID uint64) (*model.Table, error) {
	return r.selectOne(ctx, `reservation_id = ?`, reservationID, r.lock)
}

// List returns every table ordered by name.
func (r *TableRepo) List(ctx context.Context) ([]*model.Table, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+tableColumns+` FROM restaurant_tables ORDER BY table_name, table_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetReservation stores reservationID on the table; nil frees it.  A
// reservation already held by another table violates the unique key and is
// reported as ErrConflict.
func (r *TableRepo) SetReservation(ctx context.Context, tableID uint64, reservationID *uint64) error {
	const q = `UPDATE restaurant_tables SET reservation_id = ?, updated_at = CURRENT_TIMESTAMP WHERE table_id = ?`
	var arg any
	if reservationID != nil {
		arg = *reservationID
	}
	res, err := r.q.ExecContext(ctx, q, arg, tableID)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTableNotFound
	}
	return nil
}
