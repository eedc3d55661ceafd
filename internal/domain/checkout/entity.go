// internal/domain/checkout/entity.go
package checkout

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"

	cartdom "storefront/internal/domain/cart"
)

var (
	ErrUnknownPaymentMethod = errors.New("checkout: unknown payment method")
	ErrEmptyCart            = errors.New("checkout: cart is empty")
	ErrInvalidCustomer      = errors.New("checkout: customer name, email, phone and address are required")
	ErrNoPaymentURL         = errors.New("checkout: payment provider returned no redirect url")
	ErrInvalidOrder         = errors.New("checkout: backend returned an invalid order")
)

// Shipping is free from FreeShippingThreshold upwards, ShippingFee below it.
var (
	FreeShippingThreshold = decimal.NewFromInt(500000)
	ShippingFee           = decimal.NewFromInt(30000)
)

// PaymentMethod is how the shopper pays.
type PaymentMethod string

const (
	COD   PaymentMethod = "cod"
	Momo  PaymentMethod = "momo"
	VNPay PaymentMethod = "vnpay"
	PayOS PaymentMethod = "payos"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(s))) {
	case COD:
		return COD, nil
	case Momo:
		return Momo, nil
	case VNPay:
		return VNPay, nil
	case PayOS:
		return PayOS, nil
	}
	return "", ErrUnknownPaymentMethod
}

// Redirects reports whether the method hands the shopper to an external payment page.
func (m PaymentMethod) Redirects() bool {
	return m != COD
}

// InitialPaymentStatus is the paymentStatus sent with a new order.
func (m PaymentMethod) InitialPaymentStatus() string {
	if m == COD {
		return "UNPAID"
	}
	return "PENDING"
}

// Customer is the contact/shipping block of the checkout form.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

func (c Customer) Normalize() Customer {
	return Customer{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
	}
}

func (c Customer) Validate() error {
	n := c.Normalize()
	if n.Name == "" || n.Email == "" || n.Phone == "" || n.Address == "" {
		return ErrInvalidCustomer
	}
	if _, err := mail.ParseAddress(n.Email); err != nil {
		return ErrInvalidCustomer
	}
	return nil
}

// ShippingFeeFor applies the free-shipping threshold to a cart total.
func ShippingFeeFor(total decimal.Decimal) decimal.Decimal {
	if total.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return ShippingFee
}

// Quote is the price breakdown shown before the order is placed.
type Quote struct {
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	GrandTotal  decimal.Decimal
}

func QuoteFor(lines cartdom.Lines) Quote {
	sub := lines.Total()
	fee := ShippingFeeFor(sub)
	return Quote{Subtotal: sub, ShippingFee: fee, GrandTotal: sub.Add(fee)}
}

type OrderItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// OrderRequest is the body of POST /payment/checkout.
type OrderRequest struct {
	CustomerName    string      `json:"customerName"`
	Email           string      `json:"email"`
	Phone           string      `json:"phone"`
	ShippingAddress string      `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
	PaymentStatus   string      `json:"paymentStatus"`
	Items           []OrderItem `json:"items"`
}

func NewOrderRequest(c Customer, m PaymentMethod, lines cartdom.Lines) OrderRequest {
	c = c.Normalize()
	items := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, OrderItem{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return OrderRequest{
		CustomerName:    c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		ShippingAddress: c.Address,
		PaymentMethod:   string(m),
		PaymentStatus:   m.InitialPaymentStatus(),
		Items:           items,
	}
}

// Order is what the backend returns for a placed order.
type Order struct {
	ID    string
	Total decimal.Decimal
}

type PayOSItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// PayOSRequest is the body of POST /payment/payos/create.
type PayOSRequest struct {
	OrderCode    int64       `json:"orderCode"`
	Amount       int64       `json:"amount"`
	Description  string      `json:"description"`
	BuyerName    string      `json:"buyerName"`
	BuyerEmail   string      `json:"buyerEmail"`
	BuyerPhone   string      `json:"buyerPhone"`
	BuyerAddress string      `json:"buyerAddress"`
	Items        []PayOSItem `json:"items"`
}
