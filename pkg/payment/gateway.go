package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrSignatureMismatch is returned when a checkout result cannot be verified
var ErrSignatureMismatch = errors.New("payment signature verification failed")

// Gateway defines the interface for creating and verifying hosted-checkout payments
type Gateway interface {
	// CreateOrder registers a payment order with the gateway.
	// Amount is expressed in the smallest currency subunit.
	CreateOrder(ctx context.Context, req *OrderRequest) (*Order, error)

	// VerifyPayment checks the proof returned by the hosted checkout
	VerifyPayment(ctx context.Context, proof PaymentProof) error

	// PublicKey returns the key the browser checkout is opened with
	PublicKey() string

	// GetName returns the name of the gateway implementation
	GetName() string
}

// ServerVerifier is implemented by gateways that confirm a payment by asking
// the provider, so the order ID is proof enough without a client signature
type ServerVerifier interface {
	VerifiesOnServer() bool
}

// VerifiesOnServer reports whether g confirms payments with the provider
func VerifiesOnServer(g Gateway) bool {
	v, ok := g.(ServerVerifier)
	return ok && v.VerifiesOnServer()
}

// OrderRequest holds the parameters of a new payment order
type OrderRequest struct {
	Amount      int64
	Currency    string
	Receipt     string
	Description string
	Notes       map[string]string
}

// Order is the gateway's view of a created order
type Order struct {
	ID           string
	Amount       int64
	Currency     string
	ClientSecret string // only set by gateways that confirm on the client (stripe)
}

// PaymentProof is what the hosted checkout hands back after a successful payment
type PaymentProof struct {
	OrderID   string
	PaymentID string
	Signature string
}

// SignPayment computes the checkout signature: hex(HMAC-SHA256(orderID|paymentID, secret))
func SignPayment(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// verifySignature compares proof.Signature to the expected signature in constant time
func verifySignature(secret string, proof PaymentProof) error {
	if proof.OrderID == "" || proof.PaymentID == "" || proof.Signature == "" {
		return ErrSignatureMismatch
	}
	expected := SignPayment(secret, proof.OrderID, proof.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(proof.Signature)) {
		return ErrSignatureMismatch
	}
	return nil
}
