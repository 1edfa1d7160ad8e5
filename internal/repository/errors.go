// Package repository defines the persistence contracts used by the service
// layer together with a MySQL and an in-memory implementation. The sentinel
// values below let callers distinguish failure scenarios without inspecting
// driver errors.
package repository

import "errors"

// ErrReservationNotFound is returned when a reservation lookup finds no row.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrTableNotFound is returned when a table lookup finds no row.
var ErrTableNotFound = errors.New("table not found")

// ErrConflict is returned when a write violates a uniqueness rule, such as
// assigning a reservation that already occupies another table.
var ErrConflict = errors.New("conflict")

// ErrDeadlock is returned when a transaction kept losing lock races against
// concurrent writers and was given up after retrying.
var ErrDeadlock = errors.New("transaction deadlocked")
