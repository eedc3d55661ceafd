// internal/adapters/out/http/order_client.go
package httpout

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	orderdom "storefront/internal/domain/order"
)

// OrderClient implements order.Tracker against the backend /orders API.
type OrderClient struct {
	c *Client
}

func NewOrderClient(c *Client) *OrderClient {
	return &OrderClient{c: c}
}

type backendOrderItem struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	ImageURL    string          `json:"imageUrl"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

type backendOrder struct {
	ID              json.Number        `json:"id"`
	CreatedAt       string             `json:"createdAt"`
	Status          string             `json:"status"`
	Total           decimal.Decimal    `json:"total"`
	Items           []backendOrderItem `json:"items"`
	PaymentMethod   string             `json:"paymentMethod"`
	PaymentStatus   string             `json:"paymentStatus"`
	ShippingAddress string             `json:"shippingAddress"`
	CustomerName    string             `json:"customerName"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	CancelledBy     string             `json:"cancelledBy"`
}

// createdAt comes either zoned or as a bare local date-time.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseCreatedAt(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (oc *OrderClient) List(ctx context.Context, token string) ([]orderdom.Order, error) {
	var res envelope[[]backendOrder]
	if err := oc.c.do(ctx, http.MethodGet, "/orders", nil, token, nil, &res); err != nil {
		return nil, translateOrderErr("list", err)
	}

	out := make([]orderdom.Order, 0, len(res.Result))
	for _, o := range res.Result {
		items := make([]orderdom.Item, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, orderdom.Item{
				ProductID: it.ProductID,
				Name:      it.ProductName,
				ImageRef:  oc.c.AssetURL(it.ImageURL, DefaultImage),
				UnitPrice: it.Price,
				Quantity:  it.Quantity,
			})
		}
		out = append(out, orderdom.Order{
			ID:              strings.TrimSpace(o.ID.String()),
			CreatedAt:       parseCreatedAt(o.CreatedAt),
			Status:          orderdom.NormalizeStatus(o.Status),
			Total:           o.Total,
			Items:           items,
			PaymentMethod:   o.PaymentMethod,
			PaymentStatus:   o.PaymentStatus,
			ShippingAddress: o.ShippingAddress,
			CustomerName:    o.CustomerName,
			Email:           o.Email,
			Phone:           o.Phone,
			CancelledBy:     o.CancelledBy,
		})
	}
	return out, nil
}

func (oc *OrderClient) Cancel(ctx context.Context, token, orderID string) error {
	err := oc.c.do(ctx, http.MethodPut, "/orders/cancel/"+orderID, nil, token, struct{}{}, nil)
	return translateOrderErr("cancel", err)
}

func (oc *OrderClient) Return(ctx context.Context, token, orderID string) error {
	err := oc.c.do(ctx, http.MethodPut, "/orders/return/"+orderID, nil, token, struct{}{}, nil)
	return translateOrderErr("return", err)
}

func translateOrderErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return errors.Wrapf(orderdom.ErrUnavailable, "orders %s: %v", op, err)
	}
	switch {
	case apiErr.Status == http.StatusUnauthorized, apiErr.Status == http.StatusForbidden:
		return errors.Wrapf(orderdom.ErrLoginRequired, "orders %s", op)
	case apiErr.Status == http.StatusNotFound:
		return errors.Wrapf(orderdom.ErrNotFound, "orders %s", op)
	case apiErr.Status >= 400 && apiErr.Status < 500:
		return &orderdom.RejectedError{Status: apiErr.Status, Code: apiErr.Code, Message: apiErr.Message}
	}
	return errors.Wrapf(orderdom.ErrUnavailable, "orders %s: %v", op, apiErr)
}
