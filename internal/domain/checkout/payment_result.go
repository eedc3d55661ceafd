// internal/domain/checkout/payment_result.go
package checkout

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Outcome of an external payment, as reported on the provider's return URL.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	OutcomePending Outcome = "pending"
)

// ProviderReturn is the query string a payment provider redirects back with.
type ProviderReturn struct {
	Method PaymentMethod
	Params map[string]string
}

func (r ProviderReturn) param(k string) string {
	if r.Params == nil {
		return ""
	}
	return strings.TrimSpace(r.Params[k])
}

// OrderID returns the order id the provider echoed back, if any.
func (r ProviderReturn) OrderID() string {
	for _, k := range []string{"orderId", "vnp_TxnRef", "orderCode"} {
		if v := r.param(k); v != "" {
			return v
		}
	}
	return ""
}

// Outcome interprets the provider's result parameters.
func (r ProviderReturn) Outcome() Outcome {
	switch r.Method {
	case Momo:
		if r.param("resultCode") == "0" {
			return OutcomeSuccess
		}
		return OutcomeFailed
	case VNPay:
		if r.param("vnp_ResponseCode") == "00" {
			return OutcomeSuccess
		}
		return OutcomeFailed
	case PayOS:
		switch strings.ToUpper(r.param("status")) {
		case "PAID":
			return OutcomeSuccess
		case "PENDING", "PROCESSING":
			return OutcomePending
		}
		return OutcomeFailed
	case COD:
		return OutcomeSuccess
	}
	return OutcomeFailed
}

// Gateway is the backend's order and payment-link API.
// token is the bearer credential ("" for guest checkout).
type Gateway interface {
	PlaceOrder(ctx context.Context, token string, req OrderRequest) (Order, error)
	CreateMomoURL(ctx context.Context, token, orderID string, amount int64) (string, error)
	CreateVNPayURL(ctx context.Context, token, orderID string, amount decimal.Decimal, info string) (string, error)
	CreatePayOSLink(ctx context.Context, token string, req PayOSRequest) (string, error)
}
