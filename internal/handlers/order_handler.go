package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-booking/internal/models"
	"github.com/smarttransit/bus-booking/internal/services"
)

const msgOrderFailed = "Error creating order"

// OrderHandler creates payment orders for the hosted checkout
type OrderHandler struct {
	orderService *services.OrderService
	logger       *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *services.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// CreateOrder handles POST /create-order (form or JSON body)
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid order request: %s", err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidOrder) {
			c.String(http.StatusBadRequest, "%s", err.Error())
			return
		}

		h.logger.WithError(err).WithFields(logrus.Fields{
			"seats":    req.Seats,
			"currency": req.Currency,
		}).Error("Failed to create order")
		c.String(http.StatusInternalServerError, msgOrderFailed)
		return
	}

	c.JSON(http.StatusOK, order)
}
