// internal/application/usecase/checkout_usecase.go
package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	cartdom "storefront/internal/domain/cart"
	checkoutdom "storefront/internal/domain/checkout"
	sessiondom "storefront/internal/domain/session"
	"storefront/internal/infra/metrics"
)

// CheckoutCart is what checkout needs from the cart manager.
type CheckoutCart interface {
	Lines() cartdom.Lines
	Credential() (sessiondom.Credential, bool)
	ClearCart(ctx context.Context) error
}

// CheckoutResult is the outcome of PlaceOrder.
// RedirectURL is empty for cash on delivery.
type CheckoutResult struct {
	Order       checkoutdom.Order
	Method      checkoutdom.PaymentMethod
	Quote       checkoutdom.Quote
	RedirectURL string
}

// CheckoutUsecase places an order for the current cart and dispatches to the
// selected payment provider.
type CheckoutUsecase struct {
	cart    CheckoutCart
	gateway checkoutdom.Gateway
	metrics *metrics.Metrics
}

func NewCheckoutUsecase(cart CheckoutCart, gateway checkoutdom.Gateway, m *metrics.Metrics) *CheckoutUsecase {
	return &CheckoutUsecase{cart: cart, gateway: gateway, metrics: m}
}

// Quote returns the price breakdown for the current cart.
func (uc *CheckoutUsecase) Quote() checkoutdom.Quote {
	return checkoutdom.QuoteFor(uc.cart.Lines())
}

// PlaceOrder creates the order and, for COD, clears the cart. Redirect
// methods leave the cart alone until the provider reports success
// (ConfirmPayment).
func (uc *CheckoutUsecase) PlaceOrder(ctx context.Context, customer checkoutdom.Customer, method checkoutdom.PaymentMethod) (CheckoutResult, error) {
	if _, err := checkoutdom.ParsePaymentMethod(string(method)); err != nil {
		return CheckoutResult{}, err
	}

	lines := uc.cart.Lines()
	if len(lines) == 0 {
		return CheckoutResult{}, checkoutdom.ErrEmptyCart
	}
	if err := customer.Validate(); err != nil {
		return CheckoutResult{}, err
	}
	customer = customer.Normalize()

	token := ""
	if cred, ok := uc.cart.Credential(); ok {
		token = cred.Token
	}

	req := checkoutdom.NewOrderRequest(customer, method, lines)
	order, err := uc.gateway.PlaceOrder(ctx, token, req)
	if err != nil {
		uc.metrics.Checkout(string(method), "order_failed")
		return CheckoutResult{}, err
	}
	if strings.TrimSpace(order.ID) == "" {
		uc.metrics.Checkout(string(method), "order_failed")
		return CheckoutResult{}, checkoutdom.ErrInvalidOrder
	}

	log.Printf("[checkout_usecase] order placed id=%s method=%s total=%s", order.ID, method, order.Total)

	res := CheckoutResult{
		Order:  order,
		Method: method,
		Quote:  checkoutdom.QuoteFor(lines),
	}

	switch method {
	case checkoutdom.COD:
		if err := uc.cart.ClearCart(ctx); err != nil {
			// the order exists; a stale cart is the lesser problem
			log.Printf("[checkout_usecase] WARN: clear cart after COD order %s failed: %v", order.ID, err)
		}

	case checkoutdom.Momo:
		res.RedirectURL, err = uc.gateway.CreateMomoURL(ctx, token, order.ID, order.Total.Round(0).IntPart())

	case checkoutdom.VNPay:
		res.RedirectURL, err = uc.gateway.CreateVNPayURL(ctx, token, order.ID, order.Total, fmt.Sprintf("Thanh toán đơn hàng #%s", order.ID))

	case checkoutdom.PayOS:
		var payReq checkoutdom.PayOSRequest
		payReq, err = newPayOSRequest(order, customer, lines)
		if err == nil {
			res.RedirectURL, err = uc.gateway.CreatePayOSLink(ctx, token, payReq)
		}
	}

	if err == nil && method.Redirects() && strings.TrimSpace(res.RedirectURL) == "" {
		err = checkoutdom.ErrNoPaymentURL
	}
	if err != nil {
		uc.metrics.Checkout(string(method), "payment_link_failed")
		return res, err
	}

	uc.metrics.Checkout(string(method), "ok")
	return res, nil
}

// ConfirmPayment interprets a provider's return and clears the cart on success.
func (uc *CheckoutUsecase) ConfirmPayment(ctx context.Context, ret checkoutdom.ProviderReturn) (checkoutdom.Outcome, error) {
	outcome := ret.Outcome()
	log.Printf("[checkout_usecase] payment return method=%s orderId=%s outcome=%s", ret.Method, ret.OrderID(), outcome)
	if outcome != checkoutdom.OutcomeSuccess {
		return outcome, nil
	}
	return outcome, uc.cart.ClearCart(ctx)
}

func newPayOSRequest(order checkoutdom.Order, c checkoutdom.Customer, lines cartdom.Lines) (checkoutdom.PayOSRequest, error) {
	code, err := strconv.ParseInt(strings.TrimSpace(order.ID), 10, 64)
	if err != nil {
		return checkoutdom.PayOSRequest{}, checkoutdom.ErrInvalidOrder
	}

	items := make([]checkoutdom.PayOSItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, checkoutdom.PayOSItem{
			Name:     l.Name,
			Quantity: l.Quantity,
			Price:    l.UnitPrice.Round(0).IntPart(),
		})
	}

	amount := order.Total
	if amount.LessThanOrEqual(decimal.Zero) {
		amount = checkoutdom.QuoteFor(lines).GrandTotal
	}

	return checkoutdom.PayOSRequest{
		OrderCode:    code,
		Amount:       amount.Round(0).IntPart(),
		Description:  fmt.Sprintf("DH%d", code),
		BuyerName:    c.Name,
		BuyerEmail:   c.Email,
		BuyerPhone:   c.Phone,
		BuyerAddress: c.Address,
		Items:        items,
	}, nil
}
