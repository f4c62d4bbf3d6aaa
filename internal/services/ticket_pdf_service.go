package services

import (
	"bytes"
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/smarttransit/bus-booking/internal/config"
	"github.com/smarttransit/bus-booking/internal/database"
	"github.com/smarttransit/bus-booking/internal/models"
)

// bookingLookup is the read side the PDF renderer needs
type bookingLookup interface {
	GetBooking(ctx context.Context, ticketNumber string) (*models.Booking, error)
}

// TicketPDFService renders stored bookings as printable e-tickets
type TicketPDFService struct {
	bookings bookingLookup
	fares    *config.FareTable
}

// NewTicketPDFService creates a new TicketPDFService
func NewTicketPDFService(bookings bookingLookup, fares *config.FareTable) *TicketPDFService {
	return &TicketPDFService{
		bookings: bookings,
		fares:    fares,
	}
}

// Render looks up ticketNumber and returns a one-page PDF. paymentID must
// match the booking's payment ID; a missing or wrong one reads as ErrNotFound.
func (s *TicketPDFService) Render(ctx context.Context, ticketNumber, paymentID string) ([]byte, error) {
	booking, err := s.bookings.GetBooking(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	if paymentID == "" || subtle.ConstantTimeCompare([]byte(paymentID), []byte(booking.PaymentID)) != 1 {
		return nil, database.ErrNotFound
	}
	return s.renderBooking(booking)
}

func (s *TicketPDFService) renderBooking(b *models.Booking) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket "+b.TicketNumber, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BUS E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, b.TicketNumber)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("From       : %s", b.Departure),
		fmt.Sprintf("To         : %s", b.Arrival),
		fmt.Sprintf("Seats      : %d", b.Seats),
		fmt.Sprintf("Booked on  : %s %s", b.Date, b.Time),
		fmt.Sprintf("Passenger  : %s", b.Email),
		fmt.Sprintf("Phone      : %s", b.Phone),
		fmt.Sprintf("Payment ID : %s", b.PaymentID),
	}
	if s.fares != nil {
		amount, err := s.fares.Amount(b.Seats, b.Departure, b.Arrival)
		if err == nil {
			lines = append(lines, fmt.Sprintf("Fare       : %s %s", s.fares.Currency, formatSubunits(amount)))
		}
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Show this ticket to the conductor when boarding. Tickets are non-transferable.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render ticket pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// formatSubunits renders an amount in minor units as major.minor
func formatSubunits(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}
