package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-booking/internal/database"
	"github.com/smarttransit/bus-booking/internal/services"
)

// TicketHandler serves printable e-tickets
type TicketHandler struct {
	pdfService *services.TicketPDFService
	logger     *logrus.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(pdfService *services.TicketPDFService, logger *logrus.Logger) *TicketHandler {
	return &TicketHandler{
		pdfService: pdfService,
		logger:     logger,
	}
}

// DownloadPDF handles GET /tickets/:ticketNumber/pdf?paymentId=...
func (h *TicketHandler) DownloadPDF(c *gin.Context) {
	ticketNumber := c.Param("ticketNumber")

	data, err := h.pdfService.Render(c.Request.Context(), ticketNumber, c.Query("paymentId"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.String(http.StatusNotFound, "Ticket not found.")
			return
		}
		h.logger.WithError(err).WithField("ticket_number", ticketNumber).Error("Failed to render ticket")
		c.String(http.StatusInternalServerError, "An error occurred while generating the ticket.")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, ticketNumber))
	c.Data(http.StatusOK, "application/pdf", data)
}
