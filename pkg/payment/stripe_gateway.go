package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeGateway implements Gateway using Stripe PaymentIntents
type StripeGateway struct {
	config *StripeGatewayConfig
}

// StripeGatewayConfig holds configuration for Stripe gateway
type StripeGatewayConfig struct {
	SecretKey      string
	PublishableKey string
}

// NewStripeGateway creates a new Stripe gateway
func NewStripeGateway(config *StripeGatewayConfig) (*StripeGateway, error) {
	if config == nil {
		return nil, fmt.Errorf("stripe config is required")
	}
	if config.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}

	// Set Stripe API key globally
	stripe.Key = config.SecretKey

	return &StripeGateway{
		config: config,
	}, nil
}

// CreateOrder creates a PaymentIntent; its id plays the role of the order id
func (g *StripeGateway) CreateOrder(ctx context.Context, req *OrderRequest) (*Order, error) {
	if req == nil {
		return nil, fmt.Errorf("order request is required")
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: make(map[string]string),
	}
	params.Context = ctx

	params.Metadata["receipt"] = req.Receipt
	for k, v := range req.Notes {
		params.Metadata[k] = v
	}

	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if email := req.Notes["email"]; email != "" {
		params.ReceiptEmail = stripe.String(email)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent creation failed: %w", err)
	}

	return &Order{
		ID:           pi.ID,
		Amount:       pi.Amount,
		Currency:     strings.ToUpper(string(pi.Currency)),
		ClientSecret: pi.ClientSecret,
	}, nil
}

// VerifyPayment fetches the PaymentIntent and requires it to have succeeded
func (g *StripeGateway) VerifyPayment(ctx context.Context, proof PaymentProof) error {
	if proof.PaymentID == "" {
		return ErrSignatureMismatch
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(proof.PaymentID, params)
	if err != nil {
		return fmt.Errorf("failed to fetch stripe payment intent: %w", err)
	}

	if proof.OrderID != "" && pi.ID != proof.OrderID {
		return ErrSignatureMismatch
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("%w: payment intent status is %s", ErrSignatureMismatch, pi.Status)
	}

	return nil
}

// VerifiesOnServer is true: the PaymentIntent status is fetched from Stripe
func (g *StripeGateway) VerifiesOnServer() bool {
	return true
}

// PublicKey returns the publishable key
func (g *StripeGateway) PublicKey() string {
	return g.config.PublishableKey
}

// GetName returns the gateway name
func (g *StripeGateway) GetName() string {
	return "stripe"
}
