package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

const (
	// mysqlDeadlock is the server error number for a transaction chosen as
	// deadlock victim.  The server has already rolled it back.
	mysqlDeadlock = 1213
	txAttempts    = 3
)

// SQLStore is the MySQL backed Store.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Reservations() ReservationStore { return &ReservationRepo{q: s.db} }

func (s *SQLStore) Tables() TableStore { return &TableRepo{q: s.db} }

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// WithinTx begins a transaction, hands fn repositories bound to it and
// commits when fn succeeds.  Any error, including a panic, rolls back.  A
// transaction picked as deadlock victim is run again from the start; fn must
// therefore only assign, never accumulate, state it shares with the caller.
func (s *SQLStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	var err error
	for attempt := 0; attempt < txAttempts; attempt++ {
		if err = s.runTx(ctx, fn); !isDeadlock(err) {
			return err
		}
		if ctx.Err() != nil {
			break
		}
	}
	return fmt.Errorf("%w: %w", ErrDeadlock, err)
}

func isDeadlock(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDeadlock
}

func (s *SQLStore) runTx(ctx context.Context, fn func(tx Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&sqlTxStore{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// sqlTxStore is the view handed to WithinTx callbacks.  Reads through it lock
// the selected rows until commit.
type sqlTxStore struct {
	tx *sql.Tx
}

func (s *sqlTxStore) Reservations() ReservationStore { return &ReservationRepo{q: s.tx, lock: true} }

func (s *sqlTxStore) Tables() TableStore { return &TableRepo{q: s.tx, lock: true} }

func (s *sqlTxStore) Ping(context.Context) error { return nil }

// WithinTx on an open transaction simply reuses it.
func (s *sqlTxStore) WithinTx(_ context.Context, fn func(tx Store) error) error { return fn(s) }
