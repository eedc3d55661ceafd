// internal/domain/order/entity.go
package order

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the fulfilment status reported by the backend.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
	StatusReturned  Status = "RETURNED"
)

var (
	ErrInvalidID     = errors.New("order: invalid id")
	ErrLoginRequired = errors.New("order: login required")
	ErrNotFound      = errors.New("order: not found")
	ErrUnavailable   = errors.New("order: backend unavailable")
)

// RejectedError is a refusal by the backend (e.g. cancelling a shipped
// order). Message is the backend's text, shown to the user as is.
type RejectedError struct {
	Status  int
	Code    int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("order: rejected (status=%d code=%d)", e.Status, e.Code)
	}
	return e.Message
}

type Item struct {
	ProductID int64
	Name      string
	ImageRef  string
	UnitPrice decimal.Decimal
	Quantity  int
}

func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is one of the shopper's orders as listed by the backend.
type Order struct {
	ID        string
	CreatedAt time.Time
	Status    Status
	Total     decimal.Decimal
	Items     []Item

	PaymentMethod   string
	PaymentStatus   string
	ShippingAddress string
	CustomerName    string
	Email           string
	Phone           string
	CancelledBy     string
}

// CanCancel: an order can be cancelled until it leaves the warehouse.
func (o Order) CanCancel() bool {
	switch o.Status {
	case StatusShipped, StatusDelivered, StatusCancelled, StatusReturned:
		return false
	}
	return true
}

// CanReturn: only delivered orders can be sent back.
func (o Order) CanReturn() bool {
	return o.Status == StatusDelivered
}

// NormalizeStatus upper-cases and trims a backend status.
func NormalizeStatus(s string) Status {
	return Status(strings.ToUpper(strings.TrimSpace(s)))
}

// ParseID accepts the backend's numeric order ids.
func ParseID(s string) (string, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return "", ErrInvalidID
	}
	return strconv.FormatInt(n, 10), nil
}
