package validator

import (
	"testing"

	"github.com/smarttransit/bus-booking/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stopList []string

func (s stopList) HasStop(name string) bool {
	for _, stop := range s {
		if stop == name {
			return true
		}
	}
	return false
}

func validInput() models.BookingInput {
	return models.BookingInput{
		Seats:     2,
		Departure: "City A",
		Arrival:   "City B",
		Phone:     "9876543210",
		Email:     "rider@example.com",
		PaymentID: "pay_29QQoUBi66xm2f",
	}
}

func TestBookingValidator_Valid(t *testing.T) {
	v := NewBookingValidator(stopList{"City A", "City B", "City C"})
	input := validInput()
	assert.NoError(t, v.Validate(&input))
}

func TestBookingValidator_MissingFields(t *testing.T) {
	v := NewBookingValidator(stopList{"City A", "City B", "City C"})

	tests := []struct {
		field string
		clear func(in *models.BookingInput)
	}{
		{"seats", func(in *models.BookingInput) { in.Seats = 0 }},
		{"departure", func(in *models.BookingInput) { in.Departure = "" }},
		{"arrival", func(in *models.BookingInput) { in.Arrival = "" }},
		{"phone", func(in *models.BookingInput) { in.Phone = "" }},
		{"email", func(in *models.BookingInput) { in.Email = "" }},
		{"paymentId", func(in *models.BookingInput) { in.PaymentID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			input := validInput()
			tt.clear(&input)

			err := v.Validate(&input)
			require.Error(t, err)
			assert.True(t, IsMissingField(err))

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestBookingValidator_InvalidValues(t *testing.T) {
	v := NewBookingValidator(stopList{"City A", "City B", "City C"})

	tests := []struct {
		name   string
		mutate func(in *models.BookingInput)
		field  string
		reason string
	}{
		{"negative seats", func(in *models.BookingInput) { in.Seats = -1 }, "seats", "at least 1"},
		{"unknown departure", func(in *models.BookingInput) { in.Departure = "Atlantis" }, "departure", "not a served stop"},
		{"same stops", func(in *models.BookingInput) { in.Arrival = in.Departure }, "arrival", "differ"},
		{"letters in phone", func(in *models.BookingInput) { in.Phone = "98765abc10" }, "phone", "digits"},
		{"bad email", func(in *models.BookingInput) { in.Email = "not-an-email" }, "email", "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			err := v.Validate(&input)
			require.Error(t, err)
			assert.False(t, IsMissingField(err))

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Contains(t, vErr.Reason, tt.reason)
		})
	}
}

func TestSanitizePhone(t *testing.T) {
	assert.Equal(t, "9876543210", SanitizePhone(" 98765-43210 "))
	assert.Equal(t, "+919876543210", SanitizePhone("+91 (98765) 432.10"))
}
