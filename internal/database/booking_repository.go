package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-booking/internal/models"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures
const uniqueViolation = "23505"

const insertBookingQuery = `
	INSERT INTO bookings (
		id, seats, departure, arrival, phone, email,
		booking_date, booking_time, payment_id, ticket_number,
		source, created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
	)`

const selectBookingColumns = `
	SELECT id, seats, departure, arrival, phone, email,
		   booking_date, booking_time, payment_id, ticket_number,
		   source, created_at
	FROM bookings`

// BookingRepository stores bookings in PostgreSQL
type BookingRepository struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB, logger *logrus.Logger) *BookingRepository {
	return &BookingRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a booking
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking == nil {
		return fmt.Errorf("booking cannot be nil")
	}

	_, err := r.db.ExecContext(ctx, insertBookingQuery, bookingArgs(booking)...)
	if err != nil {
		return translateError("failed to create booking", err)
	}

	r.logger.WithFields(logrus.Fields{
		"booking_id":    booking.ID,
		"ticket_number": booking.TicketNumber,
	}).Debug("Booking inserted")

	return nil
}

// CreateMany inserts a batch of bookings in one transaction; either every row is stored or none is
func (r *BookingRepository) CreateMany(ctx context.Context, bookings []*models.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, insertBookingQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare booking insert: %w", err)
	}
	defer stmt.Close()

	for i, booking := range bookings {
		if _, err := stmt.ExecContext(ctx, bookingArgs(booking)...); err != nil {
			return translateError(fmt.Sprintf("failed to insert booking %d of %d", i+1, len(bookings)), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking batch: %w", err)
	}

	r.logger.WithField("count", len(bookings)).Debug("Booking batch inserted")
	return nil
}

// GetAll returns every booking
func (r *BookingRepository) GetAll(ctx context.Context) ([]*models.Booking, error) {
	bookings := []*models.Booking{}
	query := selectBookingColumns + ` ORDER BY created_at ASC`

	if err := r.db.SelectContext(ctx, &bookings, query); err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}

	return bookings, nil
}

// GetByTicketNumber retrieves a booking by ticket number
func (r *BookingRepository) GetByTicketNumber(ctx context.Context, ticketNumber string) (*models.Booking, error) {
	var booking models.Booking
	query := selectBookingColumns + ` WHERE ticket_number = $1`

	err := r.db.GetContext(ctx, &booking, query, ticketNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking by ticket number: %w", err)
	}

	return &booking, nil
}

// Ping checks the connection pool
func (r *BookingRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func bookingArgs(b *models.Booking) []interface{} {
	return []interface{}{
		b.ID, b.Seats, b.Departure, b.Arrival, b.Phone, b.Email,
		b.Date, b.Time, b.PaymentID, b.TicketNumber,
		b.Source, b.CreatedAt,
	}
}

// translateError maps unique violations on ticket_number to ErrDuplicateTicket
func translateError(msg string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", msg, ErrDuplicateTicket)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
