// internal/adapters/out/http/cart_client.go
package httpout

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	cartdom "storefront/internal/domain/cart"
)

// DefaultImage is shown for lines the backend has no thumbnail for.
const DefaultImage = "/default.jpg"

// CartClient implements cart.RemoteCart against the backend /cart API.
type CartClient struct {
	c *Client
}

func NewCartClient(c *Client) *CartClient {
	return &CartClient{c: c}
}

type cartItemReq struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type backendCartItem struct {
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ThumbnailURL string          `json:"thumbnailUrl"`
}

type getCartResponse struct {
	Items []backendCartItem `json:"items"`
	Total decimal.Decimal   `json:"total"`
}

func (cc *CartClient) Get(ctx context.Context, token string) (cartdom.Snapshot, error) {
	var res getCartResponse
	if err := cc.c.do(ctx, http.MethodGet, "/cart", nil, token, nil, &res); err != nil {
		return cartdom.Snapshot{}, translateCartErr("get", err)
	}

	lines := make([]cartdom.CartLine, 0, len(res.Items))
	for _, it := range res.Items {
		lines = append(lines, cartdom.CartLine{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			UnitPrice: it.Price,
			Quantity:  it.Quantity,
			ImageRef:  cc.c.AssetURL(it.ThumbnailURL, DefaultImage),
		})
	}

	return cartdom.Snapshot{
		Lines: cartdom.Normalize(lines),
		Total: res.Total,
	}, nil
}

func (cc *CartClient) Add(ctx context.Context, token string, productID int64, qty int) error {
	err := cc.c.do(ctx, http.MethodPost, "/cart/add", nil, token, cartItemReq{ProductID: productID, Quantity: qty}, nil)
	return translateCartErr("add", err)
}

func (cc *CartClient) Update(ctx context.Context, token string, productID int64, qty int) error {
	err := cc.c.do(ctx, http.MethodPut, "/cart/update", nil, token, cartItemReq{ProductID: productID, Quantity: qty}, nil)
	return translateCartErr("update", err)
}

func (cc *CartClient) Remove(ctx context.Context, token string, productID int64) error {
	err := cc.c.do(ctx, http.MethodDelete, "/cart/delete/"+strconv.FormatInt(productID, 10), nil, token, nil, nil)
	return translateCartErr("remove", err)
}

// translateCartErr maps transport results onto the cart error taxonomy.
func translateCartErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == cartdom.StockExceededCode {
			return &cartdom.StockExceededError{Code: apiErr.Code, Message: apiErr.Message}
		}
		return &cartdom.TransportError{Op: op, Status: apiErr.Status, Err: apiErr}
	}
	return &cartdom.TransportError{Op: op, Err: err}
}
