package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-booking/internal/config"
	"github.com/smarttransit/bus-booking/internal/database"
	"github.com/smarttransit/bus-booking/internal/models"
	"github.com/smarttransit/bus-booking/pkg/events"
	"github.com/smarttransit/bus-booking/pkg/payment"
	"github.com/smarttransit/bus-booking/pkg/validator"
)

var fixedNow = time.Date(2024, 5, 1, 8, 33, 22, 0, time.UTC)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// sequenceTickets hands out tickets in order, then repeats the last one
type sequenceTickets struct {
	mu      sync.Mutex
	tickets []string
	calls   int
}

func (s *sequenceTickets) NewTicketNumber() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.tickets) {
		i = len(s.tickets) - 1
	}
	s.calls++
	return s.tickets[i], nil
}

// failingStore fails every write with err
type failingStore struct {
	*database.MemoryBookingRepository
	err error
}

func (f *failingStore) Create(context.Context, *models.Booking) error        { return f.err }
func (f *failingStore) CreateMany(context.Context, []*models.Booking) error { return f.err }

// orderedStore writes a batch one booking at a time and keeps the bookings
// written before a failure
type orderedStore struct {
	*database.MemoryBookingRepository
	batches [][]string
}

func (o *orderedStore) CreateMany(ctx context.Context, bookings []*models.Booking) error {
	tickets := make([]string, len(bookings))
	for i, b := range bookings {
		tickets[i] = b.TicketNumber
	}
	o.batches = append(o.batches, tickets)

	for i, b := range bookings {
		if err := o.MemoryBookingRepository.Create(ctx, b); err != nil {
			if i == 0 {
				return err
			}
			return &database.PartialInsertError{Inserted: i, Err: err}
		}
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e *events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func testValidator() *validator.BookingValidator {
	return validator.NewBookingValidator(config.DefaultFareTable())
}

func newTestBookingService(store database.BookingStore, gateway payment.Gateway, pub events.Publisher, requireSignature bool) *BookingService {
	svc := NewBookingService(store, gateway, testValidator(), pub, BookingServiceConfig{
		Location:         time.UTC,
		RequireSignature: requireSignature,
	}, testLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func validBookingRequest() *models.CreateBookingRequest {
	return &models.CreateBookingRequest{
		BookingInput: models.BookingInput{
			Seats:     2,
			Departure: "City A",
			Arrival:   "City B",
			Phone:     "98765 43210",
			Email:     "rider@example.com",
			PaymentID: "pay_X1",
		},
	}
}
