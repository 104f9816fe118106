package adapter

import "context"

// CommissionRequest is the payload handed to the commission calculation
// service after a referred user's order is bound.
type CommissionRequest struct {
	OrderID     string `json:"order_id"`
	UserID      string `json:"user_id"`
	OrderAmount int64  `json:"order_amount"`
	OrderType   string `json:"order_type"` // package key
}

// CommissionInvoker fires the commission calculation as a side effect.
// Implementations must not be load-bearing for the payment flow: callers
// swallow and log every error.
type CommissionInvoker interface {
	Invoke(ctx context.Context, req CommissionRequest) error
}

// SignatureVerifier checks a payment provider's callback signature over the
// raw form parameters before any field is trusted.
type SignatureVerifier interface {
	Verify(params map[string]string) error
}
