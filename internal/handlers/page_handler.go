package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smarttransit/bus-booking/internal/config"
	"github.com/smarttransit/bus-booking/internal/web"
	"github.com/smarttransit/bus-booking/internal/wizard"
	"github.com/smarttransit/bus-booking/pkg/payment"
)

// PageHandler renders the booking form and the confirmation page
type PageHandler struct {
	fares   *config.FareTable
	gateway payment.Gateway
}

// NewPageHandler creates a new page handler
func NewPageHandler(fares *config.FareTable, gateway payment.Gateway) *PageHandler {
	return &PageHandler{
		fares:   fares,
		gateway: gateway,
	}
}

// Index handles GET / and GET /index.html.
// ?step=N selects the visible section so the form works without scripts.
func (h *PageHandler) Index(c *gin.Context) {
	step, _ := strconv.Atoi(c.Query("step"))

	page := web.NewIndexPage(
		wizard.At(step),
		h.fares.Stops,
		h.fares.Currency,
		h.fares.SeatPrice,
		h.gateway.GetName(),
		h.gateway.PublicKey(),
	)
	c.HTML(http.StatusOK, web.IndexTemplate, page)
}

// ThankYou handles GET /thanku.html
func (h *PageHandler) ThankYou(c *gin.Context) {
	c.HTML(http.StatusOK, web.ThankYouTemplate, web.ThankYouPage{
		TicketNumber: c.Query("ticketNumber"),
		Name:         c.Query("name"),
		PaymentID:    c.Query("paymentId"),
	})
}
