package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MockGateway implements Gateway for local development and tests
type MockGateway struct {
	config *MockGatewayConfig

	mu     sync.Mutex
	orders map[string]*Order
}

// MockGatewayConfig holds configuration for the mock gateway
type MockGatewayConfig struct {
	KeyID  string
	Secret string

	// CreateErr, when set, is returned by every CreateOrder call
	CreateErr error
}

// DefaultMockGatewayConfig returns default configuration
func DefaultMockGatewayConfig() *MockGatewayConfig {
	return &MockGatewayConfig{
		KeyID:  "rzp_test_mock",
		Secret: "mock_secret",
	}
}

// NewMockGateway creates a new mock gateway
func NewMockGateway(config *MockGatewayConfig) *MockGateway {
	if config == nil {
		config = DefaultMockGatewayConfig()
	}
	return &MockGateway{
		config: config,
		orders: make(map[string]*Order),
	}
}

// CreateOrder records an order with a generated id
func (g *MockGateway) CreateOrder(ctx context.Context, req *OrderRequest) (*Order, error) {
	if req == nil {
		return nil, fmt.Errorf("order request is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.config.CreateErr != nil {
		return nil, g.config.CreateErr
	}

	order := &Order{
		ID:       "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14],
		Amount:   req.Amount,
		Currency: req.Currency,
	}

	g.mu.Lock()
	g.orders[order.ID] = order
	g.mu.Unlock()

	return order, nil
}

// VerifyPayment checks the signature against the mock secret for a known order
func (g *MockGateway) VerifyPayment(_ context.Context, proof PaymentProof) error {
	g.mu.Lock()
	_, known := g.orders[proof.OrderID]
	g.mu.Unlock()

	if !known {
		return fmt.Errorf("%w: unknown order %q", ErrSignatureMismatch, proof.OrderID)
	}
	return verifySignature(g.config.Secret, proof)
}

// Order returns a previously created order
func (g *MockGateway) Order(id string) (*Order, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	order, ok := g.orders[id]
	return order, ok
}

// PublicKey returns the mock key id
func (g *MockGateway) PublicKey() string {
	return g.config.KeyID
}

// GetName returns the gateway name
func (g *MockGateway) GetName() string {
	return "mock"
}
