package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-booking/internal/database"
	"github.com/smarttransit/bus-booking/internal/metrics"
	"github.com/smarttransit/bus-booking/internal/models"
	"github.com/smarttransit/bus-booking/pkg/events"
	"github.com/smarttransit/bus-booking/pkg/payment"
	"github.com/smarttransit/bus-booking/pkg/validator"
)

// BookingSavedMessage is returned with every saved booking
const BookingSavedMessage = "Data saved successfully"

// BookingServiceConfig holds booking service settings
type BookingServiceConfig struct {
	// Location is used to stamp booking date and time
	Location *time.Location

	// RequireSignature rejects bookings that carry no verifiable checkout proof
	RequireSignature bool
}

// BookingService validates and persists completed bookings
type BookingService struct {
	store     database.BookingStore
	gateway   payment.Gateway
	validator *validator.BookingValidator
	tickets   TicketGenerator
	publisher events.Publisher
	config    BookingServiceConfig
	logger    *logrus.Logger
	now       func() time.Time
}

// NewBookingService creates a new BookingService
func NewBookingService(
	store database.BookingStore,
	gateway payment.Gateway,
	bookingValidator *validator.BookingValidator,
	publisher events.Publisher,
	cfg BookingServiceConfig,
	logger *logrus.Logger,
) *BookingService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &BookingService{
		store:     store,
		gateway:   gateway,
		validator: bookingValidator,
		tickets:   RandomTicketGenerator{},
		publisher: publisher,
		config:    cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateBooking validates req, optionally verifies the payment and stores a new booking
func (s *BookingService) CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.BookingResult, error) {
	input := normalizeInput(req.BookingInput)

	if err := s.validator.Validate(&input); err != nil {
		metrics.IncBookingRejected("validation")
		return nil, err
	}

	if err := s.verifyPayment(ctx, req, input.PaymentID); err != nil {
		metrics.IncBookingRejected("payment")
		return nil, err
	}

	now := s.now().In(s.config.Location)
	booking := &models.Booking{
		ID:        uuid.NewString(),
		Seats:     input.Seats,
		Departure: input.Departure,
		Arrival:   input.Arrival,
		Phone:     input.Phone,
		Email:     input.Email,
		Date:      now.Format(models.BookingDateLayout),
		Time:      now.Format(models.BookingTimeLayout),
		PaymentID: input.PaymentID,
		Source:    models.BookingSourceWeb,
		CreatedAt: now,
	}

	if err := s.insertWithTicket(ctx, booking); err != nil {
		s.logger.WithError(err).WithField("payment_id", booking.PaymentID).Error("Failed to save booking")
		return nil, err
	}

	metrics.IncBookingCreated(string(models.BookingSourceWeb))
	s.logger.WithFields(logrus.Fields{
		"ticket_number": booking.TicketNumber,
		"payment_id":    booking.PaymentID,
		"seats":         booking.Seats,
	}).Info("Booking saved")

	s.publish(ctx, &events.BookingEvent{
		Type:         events.TypeBookingCreated,
		TicketNumber: booking.TicketNumber,
		PaymentID:    booking.PaymentID,
		Seats:        booking.Seats,
		Departure:    booking.Departure,
		Arrival:      booking.Arrival,
		Email:        booking.Email,
		Source:       string(booking.Source),
		OccurredAt:   booking.CreatedAt,
	})

	return &models.BookingResult{
		Message:      BookingSavedMessage,
		TicketNumber: booking.TicketNumber,
		Name:         booking.Email,
		PaymentID:    booking.PaymentID,
	}, nil
}

// ListBookings returns every stored booking
func (s *BookingService) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	bookings, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// GetBooking returns the booking holding ticketNumber
func (s *BookingService) GetBooking(ctx context.Context, ticketNumber string) (*models.Booking, error) {
	if !IsTicketNumber(ticketNumber) {
		return nil, database.ErrNotFound
	}
	return s.store.GetByTicketNumber(ctx, ticketNumber)
}

func (s *BookingService) verifyPayment(ctx context.Context, req *models.CreateBookingRequest, paymentID string) error {
	orderID := strings.TrimSpace(req.OrderID)
	signature := strings.TrimSpace(req.Signature)

	// gateways that check with the provider need only the order ID
	hasProof := orderID != "" && (signature != "" || payment.VerifiesOnServer(s.gateway))
	if !hasProof && !s.config.RequireSignature {
		return nil
	}

	err := s.gateway.VerifyPayment(ctx, payment.PaymentProof{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: signature,
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"order_id":   req.OrderID,
			"payment_id": paymentID,
			"gateway":    s.gateway.GetName(),
		}).Warn("Payment verification failed")
		return fmt.Errorf("failed to verify payment: %w", err)
	}
	return nil
}

// insertWithTicket assigns a fresh ticket number and stores booking, regenerating on collision
func (s *BookingService) insertWithTicket(ctx context.Context, booking *models.Booking) error {
	for attempt := 1; attempt <= maxTicketAttempts; attempt++ {
		ticket, err := s.tickets.NewTicketNumber()
		if err != nil {
			return err
		}
		booking.TicketNumber = ticket

		err = s.store.Create(ctx, booking)
		if err == nil {
			return nil
		}
		if !errors.Is(err, database.ErrDuplicateTicket) {
			return err
		}

		s.logger.WithFields(logrus.Fields{
			"ticket_number": ticket,
			"attempt":       attempt,
		}).Warn("Ticket number collision, regenerating")
	}
	return ErrTicketSpaceExhausted
}

func (s *BookingService) publish(ctx context.Context, event *events.BookingEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithField("type", event.Type).Warn("Failed to publish booking event")
	}
}

// normalizeInput trims free-text fields and strips phone separators
func normalizeInput(in models.BookingInput) models.BookingInput {
	in.Departure = strings.TrimSpace(in.Departure)
	in.Arrival = strings.TrimSpace(in.Arrival)
	in.Email = strings.TrimSpace(in.Email)
	in.PaymentID = strings.TrimSpace(in.PaymentID)
	in.Phone = validator.SanitizePhone(strings.TrimSpace(in.Phone))
	return in
}
