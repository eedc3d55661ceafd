package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	checkoutdom "storefront/internal/domain/checkout"
	sessiondom "storefront/internal/domain/session"
)

var shopper = checkoutdom.Customer{
	Name:    "Nguyễn Văn A",
	Email:   "a@example.com",
	Phone:   "0901234567",
	Address: "12 Lê Lợi, Huế",
}

func setupCheckout(t *testing.T) (*CheckoutUsecase, *CartManager, *mockGuestRepository, *mockGateway) {
	t.Helper()
	cart, guest, _, _ := setupCartManager(t)
	gw := &mockGateway{order: checkoutdom.Order{ID: "42", Total: decimal.NewFromInt(230000)}}
	return NewCheckoutUsecase(cart, gw, nil), cart, guest, gw
}

func TestCheckoutQuote(t *testing.T) {
	ctx := context.Background()
	uc, cart, _, _ := setupCheckout(t)

	require.NoError(t, cart.AddItem(ctx, product(1, 100000, 2)))
	q := uc.Quote()
	assert.True(t, decimal.NewFromInt(200000).Equal(q.Subtotal))
	assert.True(t, decimal.NewFromInt(30000).Equal(q.ShippingFee))
	assert.True(t, decimal.NewFromInt(230000).Equal(q.GrandTotal))

	require.NoError(t, cart.AddItem(ctx, product(1, 100000, 3)))
	q = uc.Quote()
	assert.True(t, q.ShippingFee.IsZero())
	assert.True(t, decimal.NewFromInt(500000).Equal(q.GrandTotal))
}

func TestCheckoutPlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("COD clears the cart", func(t *testing.T) {
		uc, cart, guest, gw := setupCheckout(t)
		require.NoError(t, cart.AddItem(ctx, product(1, 100000, 2)))

		res, err := uc.PlaceOrder(ctx, shopper, checkoutdom.COD)
		require.NoError(t, err)
		assert.Equal(t, "42", res.Order.ID)
		assert.Empty(t, res.RedirectURL)
		assert.Equal(t, []string{"order"}, gw.calls)

		assert.Equal(t, "UNPAID", gw.lastReq.PaymentStatus)
		assert.Equal(t, "cod", gw.lastReq.PaymentMethod)
		require.Len(t, gw.lastReq.Items, 1)
		assert.Equal(t, checkoutdom.OrderItem{ProductID: 1, Quantity: 2}, gw.lastReq.Items[0])
		assert.Empty(t, gw.lastToken)

		assert.Empty(t, cart.Lines())
		assert.False(t, guest.stored)
	})

	t.Run("Momo redirects and keeps the cart", func(t *testing.T) {
		uc, cart, _, gw := setupCheckout(t)
		require.NoError(t, cart.AddItem(ctx, product(1, 100000, 2)))
		gw.url = "https://test-payment.momo.vn/pay/42"

		res, err := uc.PlaceOrder(ctx, shopper, checkoutdom.Momo)
		require.NoError(t, err)
		assert.Equal(t, gw.url, res.RedirectURL)
		assert.Equal(t, int64(230000), gw.momoAmount)
		assert.Equal(t, "PENDING", gw.lastReq.PaymentStatus)
		assert.Len(t, cart.Lines(), 1)
	})

	t.Run("VNPay order info", func(t *testing.T) {
		uc, cart, _, gw := setupCheckout(t)
		require.NoError(t, cart.AddItem(ctx, product(1, 100000, 1)))
		gw.url = "https://sandbox.vnpayment.vn/pay"

		_, err := uc.PlaceOrder(ctx, shopper, checkoutdom.VNPay)
		require.NoError(t, err)
		assert.Equal(t, "Thanh toán đơn hàng #42", gw.vnpayInfo)
	})

	t.Run("PayOS request", func(t *testing.T) {
		uc, cart, _, gw := setupCheckout(t)
		require.NoError(t, cart.AddItem(ctx, product(1, 100000, 2)))
		gw.url = "https://pay.payos.vn/web/42"

		res, err := uc.PlaceOrder(ctx, shopper, checkoutdom.PayOS)
		require.NoError(t, err)
		assert.Equal(t, gw.url, res.RedirectURL)
		assert.Equal(t, int64(42), gw.payOS.OrderCode)
		assert.Equal(t, int64(230000), gw.payOS.Amount)
		assert.Equal(t, "DH42", gw.payOS.Description)
		assert.Equal(t, shopper.Email, gw.payOS.BuyerEmail)
		require.Len(t, gw.payOS.Items, 1)
		assert.Equal(t, int64(100000), gw.payOS.Items[0].Price)
	})

	t.Run("PayOS needs a numeric order id", func(t *testing.T) {
		uc, cart, _, gw := setupCheckout(t)
		require.NoError(t, cart.AddItem(ctx, product(1, 100000, 1)))
		gw.order.ID = "ORD-42"

		res, err := uc.PlaceOrder(ctx, shopper, checkoutdom.PayOS)
		assert.ErrorIs(t, err, checkoutdom.ErrInvalidOrder)
		assert.Equal(t, "ORD-42", res.Order.ID)
	})

	t.Run("Missing redirect url", func(t *testing.T) {
		uc, cart, _, _ := setupCheckout(t)
		require.NoError(t, cart.AddItem(ctx, product(1, 100000, 1)))

		_, err := uc.PlaceOrder(ctx, shopper, checkoutdom.Momo)
		assert.ErrorIs(t, err, checkoutdom.ErrNoPaymentURL)
		assert.Len(t, cart.Lines(), 1)
	})

	t.Run("Empty cart", func(t *testing.T) {
		uc, _, _, gw := setupCheckout(t)
		_, err := uc.PlaceOrder(ctx, shopper, checkoutdom.COD)
		assert.ErrorIs(t, err, checkoutdom.ErrEmptyCart)
		assert.Empty(t, gw.calls)
	})

	t.Run("Invalid customer", func(t *testing.T) {
		uc, cart, _, gw := setupCheckout(t)
		require.NoError(t, cart.AddItem(ctx, product(1, 100000, 1)))

		bad := shopper
		bad.Email = "not-an-email"
		_, err := uc.PlaceOrder(ctx, bad, checkoutdom.COD)
		assert.ErrorIs(t, err, checkoutdom.ErrInvalidCustomer)
		assert.Empty(t, gw.calls)
	})

	t.Run("Unknown method", func(t *testing.T) {
		uc, cart, _, _ := setupCheckout(t)
		require.NoError(t, cart.AddItem(ctx, product(1, 100000, 1)))
		_, err := uc.PlaceOrder(ctx, shopper, checkoutdom.PaymentMethod("bitcoin"))
		assert.ErrorIs(t, err, checkoutdom.ErrUnknownPaymentMethod)
	})

	t.Run("Authenticated order carries the token", func(t *testing.T) {
		cart, _, remote, provider := setupCartManager(t, product(1, 100000, 1))
		remote.lines = nil
		provider.login("u1", "tok-1")
		require.NoError(t, cart.Start(ctx))
		require.NoError(t, cart.AddItem(ctx, product(1, 100000, 1)))
		require.Equal(t, sessiondom.AuthenticatedActive, cart.Mode())

		gw := &mockGateway{order: checkoutdom.Order{ID: "7"}}
		_, err := NewCheckoutUsecase(cart, gw, nil).PlaceOrder(ctx, shopper, checkoutdom.COD)
		require.NoError(t, err)
		assert.Equal(t, "tok-1", gw.lastToken)
		assert.Equal(t, []int64{1}, remote.removes)
	})
}

func TestCheckoutConfirmPayment(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		method  checkoutdom.PaymentMethod
		params  map[string]string
		outcome checkoutdom.Outcome
	}{
		{"momo paid", checkoutdom.Momo, map[string]string{"resultCode": "0", "orderId": "42"}, checkoutdom.OutcomeSuccess},
		{"momo cancelled", checkoutdom.Momo, map[string]string{"resultCode": "1006"}, checkoutdom.OutcomeFailed},
		{"vnpay paid", checkoutdom.VNPay, map[string]string{"vnp_ResponseCode": "00", "vnp_TxnRef": "42"}, checkoutdom.OutcomeSuccess},
		{"vnpay failed", checkoutdom.VNPay, map[string]string{"vnp_ResponseCode": "24"}, checkoutdom.OutcomeFailed},
		{"payos paid", checkoutdom.PayOS, map[string]string{"status": "PAID", "orderCode": "42"}, checkoutdom.OutcomeSuccess},
		{"payos pending", checkoutdom.PayOS, map[string]string{"status": "PENDING"}, checkoutdom.OutcomePending},
		{"payos cancelled", checkoutdom.PayOS, map[string]string{"status": "CANCELLED"}, checkoutdom.OutcomeFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, cart, _, _ := setupCheckout(t)
			require.NoError(t, cart.AddItem(ctx, product(1, 100000, 1)))

			outcome, err := uc.ConfirmPayment(ctx, checkoutdom.ProviderReturn{Method: tc.method, Params: tc.params})
			require.NoError(t, err)
			assert.Equal(t, tc.outcome, outcome)

			if tc.outcome == checkoutdom.OutcomeSuccess {
				assert.Empty(t, cart.Lines())
			} else {
				assert.Len(t, cart.Lines(), 1)
			}
		})
	}
}
