// internal/adapters/in/http/handler/session.go
package handler

import (
	"context"

	usecase "storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
	checkoutdom "storefront/internal/domain/checkout"
	orderdom "storefront/internal/domain/order"
	sessiondom "storefront/internal/domain/session"
)

// CartService is the cart manager as seen by the handlers.
type CartService interface {
	Start(ctx context.Context) error
	Reload(ctx context.Context) error
	Mode() sessiondom.Mode
	Lines() cartdom.Lines
	AddItem(ctx context.Context, line cartdom.CartLine) error
	RemoveItem(ctx context.Context, productID int64) error
	UpdateQuantity(ctx context.Context, productID int64, qty int) error
	ClearCart(ctx context.Context) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (sessiondom.Credential, error)
	Logout(ctx context.Context) error
}

type CheckoutService interface {
	Quote() checkoutdom.Quote
	PlaceOrder(ctx context.Context, customer checkoutdom.Customer, method checkoutdom.PaymentMethod) (usecase.CheckoutResult, error)
	ConfirmPayment(ctx context.Context, ret checkoutdom.ProviderReturn) (checkoutdom.Outcome, error)
}

type OrderService interface {
	MyOrders(ctx context.Context) ([]orderdom.Order, error)
	Cancel(ctx context.Context, orderID string) error
	Return(ctx context.Context, orderID string) error
}

// Session is one device's cart, auth, checkout and order history.
type Session struct {
	Cart     CartService
	Auth     AuthService
	Checkout CheckoutService
	Orders   OrderService
}

// SessionResolver returns (creating on first use) the session of a device.
type SessionResolver interface {
	Resolve(ctx context.Context, deviceID string) (*Session, error)
}
