package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-booking/internal/database"
	"github.com/smarttransit/bus-booking/internal/metrics"
	"github.com/smarttransit/bus-booking/internal/models"
	"github.com/smarttransit/bus-booking/pkg/events"
	"github.com/smarttransit/bus-booking/pkg/validator"
)

// ImportFile is one uploaded spreadsheet
type ImportFile struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ImportService loads booking records from CSV and XLSX uploads
type ImportService struct {
	store     database.BookingStore
	validator *validator.BookingValidator
	tickets   TicketGenerator
	publisher events.Publisher
	location  *time.Location
	logger    *logrus.Logger
	now       func() time.Time
}

// NewImportService creates a new ImportService
func NewImportService(
	store database.BookingStore,
	bookingValidator *validator.BookingValidator,
	publisher events.Publisher,
	location *time.Location,
	logger *logrus.Logger,
) *ImportService {
	if location == nil {
		location = time.Local
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &ImportService{
		store:     store,
		validator: bookingValidator,
		tickets:   RandomTicketGenerator{},
		publisher: publisher,
		location:  location,
		logger:    logger,
		now:       time.Now,
	}
}

// Import parses file and stores every row in one bulk insert. A single invalid row rejects the whole file.
func (s *ImportService) Import(ctx context.Context, file ImportFile) (*models.ImportResult, error) {
	p, err := parserFor(file.ContentType)
	if err != nil {
		return nil, err
	}

	parsed, err := p.parse(file.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportParse, err)
	}

	now := s.now().In(s.location)
	batchID := uuid.NewString()

	bookings, generated, err := s.buildBookings(parsed, now)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"file":   file.Filename,
			"format": p.format,
		}).Warn("Rejected import file")
		return nil, err
	}

	if err := s.insert(ctx, bookings, generated); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"file":     file.Filename,
			"batch_id": batchID,
			"rows":     len(bookings),
		}).Error("Failed to save imported bookings")
		return nil, err
	}

	metrics.AddImportedRows(p.format, len(bookings))
	s.logger.WithFields(logrus.Fields{
		"file":     file.Filename,
		"format":   p.format,
		"batch_id": batchID,
		"rows":     len(bookings),
	}).Info("Bookings imported")

	if len(bookings) > 0 {
		if err := s.publisher.Publish(ctx, &events.BookingEvent{
			Type:       events.TypeBookingImported,
			BatchID:    batchID,
			Count:      len(bookings),
			Source:     string(models.BookingSourceImport),
			OccurredAt: now,
		}); err != nil {
			s.logger.WithError(err).WithField("batch_id", batchID).Warn("Failed to publish import event")
		}
	}

	return &models.ImportResult{
		BatchID:  batchID,
		Format:   p.format,
		Imported: len(bookings),
	}, nil
}

// buildBookings validates each row; generated lists the bookings whose ticket number was assigned here
func (s *ImportService) buildBookings(parsed *sheet, now time.Time) ([]*models.Booking, []*models.Booking, error) {
	index := columnIndex(parsed.header)
	bookings := make([]*models.Booking, 0, len(parsed.rows))
	var generated []*models.Booking
	tickets := make(map[string]int, len(parsed.rows))

	for _, row := range parsed.rows {
		booking, err := s.rowToBooking(row.cells, index, now)
		if err != nil {
			return nil, nil, &RowError{Row: row.number, Err: err}
		}

		if booking.TicketNumber == "" {
			generated = append(generated, booking)
		} else if first, dup := tickets[booking.TicketNumber]; dup {
			return nil, nil, &RowError{
				Row: row.number,
				Err: fmt.Errorf("ticketNumber %s repeats row %d", booking.TicketNumber, first),
			}
		} else {
			tickets[booking.TicketNumber] = row.number
		}

		bookings = append(bookings, booking)
	}

	// Supplied ticket numbers are reserved first so a generated one never shadows them
	for _, booking := range generated {
		if err := s.assignTicket(booking, tickets); err != nil {
			return nil, nil, err
		}
		tickets[booking.TicketNumber] = 0
	}

	return bookings, generated, nil
}

func (s *ImportService) rowToBooking(row []string, index map[string]int, now time.Time) (*models.Booking, error) {
	input := models.BookingInput{
		Departure: cell(row, index, colDeparture),
		Arrival:   cell(row, index, colArrival),
		Phone:     cell(row, index, colPhone),
		Email:     cell(row, index, colEmail),
		PaymentID: cell(row, index, colPaymentID),
	}

	if raw := cell(row, index, colSeats); raw != "" {
		seats, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &validator.ValidationError{Field: "seats", Reason: "must be a whole number"}
		}
		input.Seats = seats
	}

	input = normalizeInput(input)
	if err := s.validator.Validate(&input); err != nil {
		return nil, err
	}

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
		Source:    models.BookingSourceImport,
		CreatedAt: now,
	}

	if ticket := cell(row, index, colTicketNumber); ticket != "" {
		if !IsTicketNumber(ticket) {
			return nil, &validator.ValidationError{Field: "ticketNumber", Reason: "must look like TICKET-123456"}
		}
		booking.TicketNumber = ticket
	}

	if date := cell(row, index, colDate); date != "" {
		if _, err := time.Parse(models.BookingDateLayout, date); err != nil {
			return nil, &validator.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
		}
		booking.Date = date
	}
	if clock := cell(row, index, colTime); clock != "" {
		if _, err := time.Parse(models.BookingTimeLayout, clock); err != nil {
			return nil, &validator.ValidationError{Field: "time", Reason: "must be HH:mm:ss"}
		}
		booking.Time = clock
	}

	return booking, nil
}

// assignTicket draws a ticket number not already used within the batch
func (s *ImportService) assignTicket(booking *models.Booking, taken map[string]int) error {
	for attempt := 0; attempt < maxTicketAttempts; attempt++ {
		ticket, err := s.tickets.NewTicketNumber()
		if err != nil {
			return err
		}
		if _, used := taken[ticket]; !used {
			booking.TicketNumber = ticket
			return nil
		}
	}
	return ErrTicketSpaceExhausted
}

// insert stores the batch, redrawing generated tickets when one collides with a
// stored booking. When the store keeps a prefix of a failed batch, only the
// remaining bookings are retried.
func (s *ImportService) insert(ctx context.Context, bookings, generated []*models.Booking) error {
	isGenerated := make(map[*models.Booking]bool, len(generated))
	for _, b := range generated {
		isGenerated[b] = true
	}

	stored := 0
	for attempt := 1; ; attempt++ {
		pending := bookings[stored:]
		err := s.store.CreateMany(ctx, pending)
		if err == nil {
			return nil
		}

		var partial *database.PartialInsertError
		if errors.As(err, &partial) {
			stored = min(stored+partial.Inserted, len(bookings))
			err = partial.Err
			s.logger.WithFields(logrus.Fields{
				"stored": stored,
				"total":  len(bookings),
			}).Warn("Import batch partially stored")
			pending = bookings[stored:]
		}

		retry := errors.Is(err, database.ErrDuplicateTicket) && attempt < maxTicketAttempts && hasGenerated(pending, isGenerated)
		if partial != nil && len(pending) > 0 && !isGenerated[pending[0]] {
			// the failing row carries a supplied ticket number
			retry = false
		}
		if !retry {
			return s.insertFailed(stored, err)
		}

		taken := make(map[string]int, len(bookings))
		for i, b := range bookings {
			taken[b.TicketNumber] = i
		}
		for _, b := range pending {
			if !isGenerated[b] {
				continue
			}
			delete(taken, b.TicketNumber)
			if err := s.assignTicket(b, taken); err != nil {
				return s.insertFailed(stored, err)
			}
			taken[b.TicketNumber] = -1
		}

		s.logger.WithFields(logrus.Fields{
			"attempt": attempt,
			"pending": len(pending),
		}).Warn("Imported ticket number collided, regenerating")
	}
}

func (s *ImportService) insertFailed(stored int, err error) error {
	err = fmt.Errorf("failed to save imported bookings: %w", err)
	if stored > 0 {
		return &database.PartialInsertError{Inserted: stored, Err: err}
	}
	return err
}

func hasGenerated(bookings []*models.Booking, isGenerated map[*models.Booking]bool) bool {
	for _, b := range bookings {
		if isGenerated[b] {
			return true
		}
	}
	return false
}
