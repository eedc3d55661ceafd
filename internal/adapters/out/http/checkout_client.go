// internal/adapters/out/http/checkout_client.go
package httpout

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	checkoutdom "storefront/internal/domain/checkout"
)

// CheckoutClient implements checkout.Gateway against /payment/*.
type CheckoutClient struct {
	c *Client
}

func NewCheckoutClient(c *Client) *CheckoutClient {
	return &CheckoutClient{c: c}
}

type orderResult struct {
	ID    json.Number     `json:"id"`
	Total decimal.Decimal `json:"total"`
}

func (cc *CheckoutClient) PlaceOrder(ctx context.Context, token string, req checkoutdom.OrderRequest) (checkoutdom.Order, error) {
	var res envelope[orderResult]
	if err := cc.c.do(ctx, http.MethodPost, "/payment/checkout", nil, token, req, &res); err != nil {
		return checkoutdom.Order{}, errors.Wrap(err, "checkout: place order")
	}
	return checkoutdom.Order{
		ID:    strings.TrimSpace(res.Result.ID.String()),
		Total: res.Result.Total,
	}, nil
}

type momoParams struct {
	OrderID string `url:"orderId"`
	Amount  int64  `url:"amount"`
}

func (cc *CheckoutClient) CreateMomoURL(ctx context.Context, token, orderID string, amount int64) (string, error) {
	q, err := query.Values(momoParams{OrderID: orderID, Amount: amount})
	if err != nil {
		return "", errors.Wrap(err, "checkout: momo params")
	}

	var res envelope[string]
	if err := cc.c.do(ctx, http.MethodPost, "/payment/momo/create", q, token, nil, &res); err != nil {
		return "", errors.Wrap(err, "checkout: momo create")
	}
	return strings.TrimSpace(res.Result), nil
}

type vnpayParams struct {
	Amount  string `url:"amount"`
	Info    string `url:"info"`
	OrderID string `url:"orderId"`
}

// CreateVNPayURL returns the raw URL the backend answers with (plain text,
// occasionally JSON-quoted).
func (cc *CheckoutClient) CreateVNPayURL(ctx context.Context, token, orderID string, amount decimal.Decimal, info string) (string, error) {
	q, err := query.Values(vnpayParams{Amount: amount.String(), Info: info, OrderID: orderID})
	if err != nil {
		return "", errors.Wrap(err, "checkout: vnpay params")
	}

	var raw string
	if err := cc.c.do(ctx, http.MethodGet, "/payment/vnpay/create", q, token, nil, &raw); err != nil {
		return "", errors.Wrap(err, "checkout: vnpay create")
	}

	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			raw = s
		}
	}
	return strings.TrimSpace(raw), nil
}

type payOSResult struct {
	CheckoutURL string `json:"checkoutUrl"`
}

func (cc *CheckoutClient) CreatePayOSLink(ctx context.Context, token string, req checkoutdom.PayOSRequest) (string, error) {
	var res envelope[payOSResult]
	if err := cc.c.do(ctx, http.MethodPost, "/payment/payos/create", nil, token, req, &res); err != nil {
		return "", errors.Wrap(err, "checkout: payos create")
	}
	if res.Code != 0 {
		return "", &APIError{Status: http.StatusOK, Code: res.Code, Message: res.Message}
	}
	return strings.TrimSpace(res.Result.CheckoutURL), nil
}
