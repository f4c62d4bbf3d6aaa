package payment

import (
	"context"
	"fmt"
	"strconv"

	razorpay "github.com/razorpay/razorpay-go"
)

// orderCreator is the part of the razorpay SDK the gateway uses
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayGateway implements Gateway using Razorpay orders and checkout.js
type RazorpayGateway struct {
	keyID     string
	keySecret string
	orders    orderCreator
}

// RazorpayConfig holds configuration for the Razorpay gateway
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
}

// NewRazorpayGateway creates a new Razorpay gateway client
func NewRazorpayGateway(config RazorpayConfig) (*RazorpayGateway, error) {
	if config.KeyID == "" || config.KeySecret == "" {
		return nil, fmt.Errorf("razorpay key id and secret are required")
	}

	client := razorpay.NewClient(config.KeyID, config.KeySecret)

	return &RazorpayGateway{
		keyID:     config.KeyID,
		keySecret: config.KeySecret,
		orders:    client.Order,
	}, nil
}

// CreateOrder creates a Razorpay order
func (g *RazorpayGateway) CreateOrder(ctx context.Context, req *OrderRequest) (*Order, error) {
	if req == nil {
		return nil, fmt.Errorf("order request is required")
	}
	// The SDK has no context support; honour cancellation before the call at least
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}

	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    notes,
	}

	body, err := g.orders.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order creation failed: %w", err)
	}

	return parseRazorpayOrder(body)
}

// VerifyPayment checks the razorpay_signature returned by checkout.js
func (g *RazorpayGateway) VerifyPayment(_ context.Context, proof PaymentProof) error {
	return verifySignature(g.keySecret, proof)
}

// PublicKey returns the Razorpay key id
func (g *RazorpayGateway) PublicKey() string {
	return g.keyID
}

// GetName returns the gateway name
func (g *RazorpayGateway) GetName() string {
	return "razorpay"
}

func parseRazorpayOrder(body map[string]interface{}) (*Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay response has no order id")
	}

	amount, err := toInt64(body["amount"])
	if err != nil {
		return nil, fmt.Errorf("razorpay response has invalid amount: %w", err)
	}

	currency, _ := body["currency"].(string)

	return &Order{
		ID:       id,
		Amount:   amount,
		Currency: currency,
	}, nil
}

// toInt64 converts the numeric shapes a decoded JSON body may hold
func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
