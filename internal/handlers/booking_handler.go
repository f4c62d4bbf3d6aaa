package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-booking/internal/models"
	"github.com/smarttransit/bus-booking/internal/services"
	"github.com/smarttransit/bus-booking/pkg/payment"
	"github.com/smarttransit/bus-booking/pkg/validator"
)

// Plain-text responses of the booking endpoints
const (
	msgAllFieldsRequired = "All fields are required!"
	msgSaveFailed        = "An error occurred while saving the data: "
	msgRetrieveFailed    = "An error occurred while retrieving the data."
	msgPaymentRejected   = "Payment could not be verified."
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BookingHandler saves and lists bookings
type BookingHandler struct {
	bookingService *services.BookingService
	logger         *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		logger:         logger,
	}
}

// CreateBooking handles POST /post
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid booking request: %s", err.Error())
		return
	}

	result, err := h.bookingService.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		var vErr *validator.ValidationError
		switch {
		case validator.IsMissingField(err):
			c.String(http.StatusBadRequest, msgAllFieldsRequired)
		case errors.As(err, &vErr):
			c.String(http.StatusBadRequest, "%s", vErr.Error())
		case errors.Is(err, payment.ErrSignatureMismatch):
			h.logger.WithError(err).WithField("payment_id", req.PaymentID).Warn("Booking rejected: payment not verified")
			c.String(http.StatusPaymentRequired, msgPaymentRejected)
		default:
			c.String(http.StatusInternalServerError, "%s%s", msgSaveFailed, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListBookings handles GET /get. ?format=xlsx downloads a spreadsheet instead of JSON.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	if c.Query("format") == "xlsx" {
		h.exportBookings(c)
		return
	}

	bookings, err := h.bookingService.ListBookings(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings")
		c.String(http.StatusInternalServerError, msgRetrieveFailed)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) exportBookings(c *gin.Context) {
	data, err := h.bookingService.ExportXLSX(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to export bookings")
		c.String(http.StatusInternalServerError, msgRetrieveFailed)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
