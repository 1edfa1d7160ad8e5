// Package queue defines the reservation events exchanged over RabbitMQ and
// the publisher/consumer pair that moves them.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// Event types published by the reservation workflow.
const (
	EventReservationCreated       = "reservation.created"
	EventReservationUpdated       = "reservation.updated"
	EventReservationStatusChanged = "reservation.status_changed"
	EventTableSeated              = "table.seated"
	EventTableFinished            = "table.finished"
)

// Event is published whenever a reservation or a table changes state.  It
// contains enough information for downstream consumers to log or notify
// guests without querying the primary database.
type Event struct {
	ID              string `json:"event_id"`
	Type            string `json:"type"`
	ReservationID   uint64 `json:"reservation_id"`
	TableID         uint64 `json:"table_id,omitempty"`
	TableName       string `json:"table_name,omitempty"`
	Status          string `json:"status"`
	PreviousStatus  string `json:"previous_status,omitempty"`
	GuestName       string `json:"guest_name"`
	People          int    `json:"people"`
	ReservationDate string `json:"reservation_date"`
	ReservationTime string `json:"reservation_time"`
	OccurredAt      string `json:"occurred_at"`
}

// NewEvent builds an event of the given type describing r.  t may be nil
// for events that do not involve a table.
func NewEvent(typ string, r *model.Reservation, t *model.Table, at time.Time) Event {
	ev := Event{
		ID:              uuid.NewString(),
		Type:            typ,
		ReservationID:   r.ID,
		Status:          string(r.Status),
		GuestName:       r.FirstName + " " + r.LastName,
		People:          r.People,
		ReservationDate: r.ReservationDate,
		ReservationTime: r.ReservationTime,
		OccurredAt:      at.UTC().Format(time.RFC3339),
	}
	if t != nil {
		ev.TableID = t.ID
		ev.TableName = t.Name
	}
	return ev
}
