package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-booking/internal/config"
	"github.com/smarttransit/bus-booking/internal/metrics"
	"github.com/smarttransit/bus-booking/internal/models"
	"github.com/smarttransit/bus-booking/pkg/payment"
)

const (
	defaultOrderName        = "Bus Booking"
	defaultOrderDescription = "Bus ticket booking"
)

// OrderService prices seats and registers payment orders with the gateway. It never persists anything.
type OrderService struct {
	gateway payment.Gateway
	fares   *config.FareTable
	logger  *logrus.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(gateway payment.Gateway, fares *config.FareTable, logger *logrus.Logger) *OrderService {
	return &OrderService{
		gateway: gateway,
		fares:   fares,
		logger:  logger,
	}
}

// CreateOrder prices req from the fare table and opens one gateway order. Gateway errors are not retried.
func (s *OrderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.OrderResponse, error) {
	if req.Seats < 1 {
		return nil, invalidOrder("seats must be at least 1")
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.fares.Currency
	}
	if currency != s.fares.Currency {
		return nil, invalidOrder("currency %s is not accepted, expected %s", currency, s.fares.Currency)
	}

	departure := strings.TrimSpace(req.Departure)
	arrival := strings.TrimSpace(req.Arrival)
	if departure != "" && !s.fares.HasStop(departure) {
		return nil, invalidOrder("departure %q is not a served stop", departure)
	}
	if arrival != "" && !s.fares.HasStop(arrival) {
		return nil, invalidOrder("arrival %q is not a served stop", arrival)
	}

	amount, err := s.fares.Amount(req.Seats, departure, arrival)
	if err != nil {
		return nil, invalidOrder("%v", err)
	}

	if req.Amount != 0 && req.Amount != amount {
		s.logger.WithFields(logrus.Fields{
			"client_amount": req.Amount,
			"amount":        amount,
			"seats":         req.Seats,
		}).Warn("Ignoring client-submitted amount")
	}

	name := firstNonEmpty(req.Name, defaultOrderName)
	description := firstNonEmpty(req.Description, defaultOrderDescription)
	receipt := firstNonEmpty(req.Receipt, "receipt_"+strings.ReplaceAll(uuid.NewString(), "-", "")[:12])

	notes := map[string]string{
		"seats": strconv.Itoa(req.Seats),
	}
	for key, value := range map[string]string{
		"name":      name,
		"email":     strings.TrimSpace(req.Email),
		"contact":   strings.TrimSpace(req.Contact),
		"departure": departure,
		"arrival":   arrival,
	} {
		if value != "" {
			notes[key] = value
		}
	}

	order, err := s.gateway.CreateOrder(ctx, &payment.OrderRequest{
		Amount:      amount,
		Currency:    currency,
		Receipt:     receipt,
		Description: description,
		Notes:       notes,
	})
	if err != nil {
		metrics.IncOrderCreated(s.gateway.GetName(), "failed")
		s.logger.WithError(err).WithFields(logrus.Fields{
			"gateway": s.gateway.GetName(),
			"amount":  amount,
		}).Error("Failed to create payment order")
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	metrics.IncOrderCreated(s.gateway.GetName(), "created")
	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"amount":   order.Amount,
		"currency": order.Currency,
	}).Info("Payment order created")

	return &models.OrderResponse{
		KeyID:        s.gateway.PublicKey(),
		Amount:       order.Amount,
		Currency:     order.Currency,
		OrderID:      order.ID,
		Name:         name,
		Description:  description,
		ClientSecret: order.ClientSecret,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
