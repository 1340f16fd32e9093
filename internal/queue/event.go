// Package queue defines the rental lifecycle events exchanged over
// RabbitMQ, the publisher used by the services and the consumer that
// writes them to logs/rental.log.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// QueueName is the durable queue every rental event goes to.
const QueueName = "rental.events"

// Event types.
const (
	RentalCreated   = "rental.created"
	RentalReturned  = "rental.returned"
	PaymentRecorded = "payment.recorded"
)

// RentalEvent is published after a rental or payment commits. It carries
// enough to log or bill the change without reading the database.
type RentalEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	RentalID    uint64    `json:"rental_id,omitempty"`
	PaymentID   uint64    `json:"payment_id,omitempty"`
	CustomerID  uint64    `json:"customer_id"`
	InventoryID uint64    `json:"inventory_id,omitempty"`
	FilmID      uint64    `json:"film_id,omitempty"`
	StoreID     uint64    `json:"store_id,omitempty"`
	StaffID     uint64    `json:"staff_id,omitempty"`
	Amount      string    `json:"amount,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewEvent stamps an event of type typ with a fresh id and the current time.
func NewEvent(typ string) RentalEvent {
	return RentalEvent{ID: uuid.NewString(), Type: typ, OccurredAt: time.Now().UTC()}
}
