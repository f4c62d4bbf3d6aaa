package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/smarttransit/bus-booking/internal/models"
)

var (
	// ErrNotFound is returned when no booking matches a lookup
	ErrNotFound = errors.New("booking not found")

	// ErrDuplicateTicket is returned when a ticket number is already stored
	ErrDuplicateTicket = errors.New("ticket number already exists")
)

// PartialInsertError reports a batch insert that stored the first Inserted
// bookings before Err stopped it. Stores with atomic batches never return it.
type PartialInsertError struct {
	Inserted int
	Err      error
}

func (e *PartialInsertError) Error() string {
	return fmt.Sprintf("%d bookings stored before failure: %v", e.Inserted, e.Err)
}

func (e *PartialInsertError) Unwrap() error {
	return e.Err
}

// BookingStore is the document collection holding booking records.
// It has no update or delete operations: bookings are immutable once written.
type BookingStore interface {
	// Create persists a single booking
	Create(ctx context.Context, booking *models.Booking) error

	// CreateMany persists a batch of bookings in one call. A store that can
	// commit a prefix of the batch reports it with *PartialInsertError.
	CreateMany(ctx context.Context, bookings []*models.Booking) error

	// GetAll returns every stored booking in insertion order
	GetAll(ctx context.Context) ([]*models.Booking, error)

	// GetByTicketNumber returns the booking holding ticketNumber or ErrNotFound
	GetByTicketNumber(ctx context.Context, ticketNumber string) (*models.Booking, error)

	// Ping checks the store is reachable
	Ping(ctx context.Context) error
}
