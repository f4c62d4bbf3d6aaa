package models

import (
	"time"
)

// BookingSource records which path created a booking
type BookingSource string

const (
	BookingSourceWeb    BookingSource = "web"
	BookingSourceImport BookingSource = "import"
)

// Date and time layouts stamped on every booking
const (
	BookingDateLayout = "2006-01-02"
	BookingTimeLayout = "15:04:05"
)

// TicketPrefix starts every ticket identifier
const TicketPrefix = "TICKET-"

// Booking represents one completed ticket purchase. Records are never updated or deleted.
type Booking struct {
	ID           string        `json:"_id" db:"id" bson:"_id"`
	Seats        int           `json:"seats" db:"seats" bson:"seats"`
	Departure    string        `json:"departure" db:"departure" bson:"departure"`
	Arrival      string        `json:"arrival" db:"arrival" bson:"arrival"`
	Phone        string        `json:"phone" db:"phone" bson:"phone"`
	Email        string        `json:"email" db:"email" bson:"email"`
	Date         string        `json:"date" db:"booking_date" bson:"date"`
	Time         string        `json:"time" db:"booking_time" bson:"time"`
	PaymentID    string        `json:"paymentId" db:"payment_id" bson:"paymentId"`
	TicketNumber string        `json:"ticketNumber" db:"ticket_number" bson:"ticketNumber"`
	Source       BookingSource `json:"source" db:"source" bson:"source"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at" bson:"createdAt"`
}

// BookingInput is the field set every booking must satisfy, whichever path creates it
type BookingInput struct {
	Seats     int    `json:"seats" form:"seats" validate:"required,min=1"`
	Departure string `json:"departure" form:"departure" validate:"required,stop"`
	Arrival   string `json:"arrival" form:"arrival" validate:"required,stop,nefield=Departure"`
	Phone     string `json:"phone" form:"phone" validate:"required,numeric,min=5,max=15"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	PaymentID string `json:"paymentId" form:"paymentId" validate:"required"`
}

// CreateBookingRequest is the body of POST /post
type CreateBookingRequest struct {
	BookingInput

	// Optional checkout proof returned by the gateway
	OrderID   string `json:"orderId" form:"orderId"`
	Signature string `json:"signature" form:"signature"`
}

// BookingResult is returned after a booking is saved
type BookingResult struct {
	Message      string `json:"message"`
	TicketNumber string `json:"ticketNumber"`
	Name         string `json:"name"`
	PaymentID    string `json:"paymentId"`
}

// ImportResult summarises a bulk import
type ImportResult struct {
	BatchID  string `json:"batchId"`
	Format   string `json:"format"`
	Imported int    `json:"imported"`
}
