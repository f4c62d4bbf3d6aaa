package services

import (
	"context"
	"fmt"

	"github.com/smarttransit/bus-booking/internal/models"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bookings"

// exportHeaders use the importer's column names so an export can be uploaded again
var exportHeaders = []string{
	"ticketNumber", "seats", "departure", "arrival", "phone",
	"email", "date", "time", "paymentId", "source",
}

// ExportXLSX writes every stored booking to a workbook
func (s *BookingService) ExportXLSX(ctx context.Context) ([]byte, error) {
	bookings, err := s.ListBookings(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}

	if err := writeBookingsSheet(f, exportSheet, bookings); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeBookingsSheet fills sheet with a styled header row and one row per booking
func writeBookingsSheet(f *excelize.File, sheet string, bookings []*models.Booking) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}

	header := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "J1", headerStyle); err != nil {
		return fmt.Errorf("failed to style export header: %w", err)
	}

	for i, b := range bookings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address export row %d: %w", i+2, err)
		}
		values := []interface{}{
			b.TicketNumber, b.Seats, b.Departure, b.Arrival, b.Phone,
			b.Email, b.Date, b.Time, b.PaymentID, string(b.Source),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write export row %d: %w", i+2, err)
		}
	}

	widths := []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 16},
		{"C", "F", 20},
		{"I", "I", 24},
	}
	for _, w := range widths {
		if err := f.SetColWidth(sheet, w.from, w.to, w.width); err != nil {
			return fmt.Errorf("failed to size export columns %s:%s: %w", w.from, w.to, err)
		}
	}
	return nil
}
