package models

// CreateOrderRequest is the body of POST /create-order.
// Amount is accepted for compatibility with older clients but never charged; the server prices the seats.
type CreateOrderRequest struct {
	Seats       int    `json:"seats" form:"seats"`
	Departure   string `json:"departure" form:"departure"`
	Arrival     string `json:"arrival" form:"arrival"`
	Amount      int64  `json:"amount" form:"amount"`
	Currency    string `json:"currency" form:"currency"`
	Receipt     string `json:"receipt" form:"receipt"`
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
	Contact     string `json:"contact" form:"contact"`
	Email       string `json:"email" form:"email"`
}

// OrderResponse carries what the hosted checkout needs to open
type OrderResponse struct {
	KeyID       string `json:"key_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	OrderID     string `json:"order_id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// Set only for gateways that confirm the payment in the browser
	ClientSecret string `json:"client_secret,omitempty"`
}
