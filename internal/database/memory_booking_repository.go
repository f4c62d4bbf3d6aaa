package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/smarttransit/bus-booking/internal/models"
)

// MemoryBookingRepository keeps bookings in process memory. Used for local runs and tests.
type MemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings []*models.Booking
	tickets  map[string]int
}

// NewMemoryBookingRepository creates an empty in-memory store
func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		tickets: make(map[string]int),
	}
}

// Create stores a copy of booking
func (r *MemoryBookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking == nil {
		return fmt.Errorf("booking cannot be nil")
	}
	return r.CreateMany(ctx, []*models.Booking{booking})
}

// CreateMany stores every booking or none of them
func (r *MemoryBookingRepository) CreateMany(ctx context.Context, bookings []*models.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(bookings))
	for i, b := range bookings {
		if _, ok := r.tickets[b.TicketNumber]; ok {
			return fmt.Errorf("failed to insert booking %d of %d: %w", i+1, len(bookings), ErrDuplicateTicket)
		}
		if _, ok := seen[b.TicketNumber]; ok {
			return fmt.Errorf("failed to insert booking %d of %d: %w", i+1, len(bookings), ErrDuplicateTicket)
		}
		seen[b.TicketNumber] = struct{}{}
	}

	for _, b := range bookings {
		stored := *b
		r.tickets[stored.TicketNumber] = len(r.bookings)
		r.bookings = append(r.bookings, &stored)
	}
	return nil
}

// GetAll returns copies of every booking in insertion order
func (r *MemoryBookingRepository) GetAll(ctx context.Context) ([]*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Booking, len(r.bookings))
	for i, b := range r.bookings {
		cp := *b
		out[i] = &cp
	}
	return out, nil
}

// GetByTicketNumber returns a copy of the matching booking
func (r *MemoryBookingRepository) GetByTicketNumber(ctx context.Context, ticketNumber string) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.tickets[ticketNumber]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r.bookings[idx]
	return &cp, nil
}

// Ping always succeeds
func (r *MemoryBookingRepository) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored bookings
func (r *MemoryBookingRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bookings)
}
