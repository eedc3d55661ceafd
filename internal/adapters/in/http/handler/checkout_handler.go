// internal/adapters/in/http/handler/checkout_handler.go
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	checkoutdom "storefront/internal/domain/checkout"
)

// CheckoutHandler serves /checkout and the payment provider return URLs.
type CheckoutHandler struct {
	sessions SessionResolver
}

func NewCheckoutHandler(sessions SessionResolver) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions}
}

type quoteDTO struct {
	Subtotal    json.Number `json:"subtotal"`
	ShippingFee json.Number `json:"shippingFee"`
	GrandTotal  json.Number `json:"grandTotal"`
}

func toQuoteDTO(q checkoutdom.Quote) quoteDTO {
	return quoteDTO{
		Subtotal:    money(q.Subtotal),
		ShippingFee: money(q.ShippingFee),
		GrandTotal:  money(q.GrandTotal),
	}
}

// Quote: GET /checkout/quote
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toQuoteDTO(s.Checkout.Quote()))
}

type checkoutReq struct {
	CustomerName    string `json:"customerName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	ShippingAddress string `json:"shippingAddress"`
	PaymentMethod   string `json:"paymentMethod"`
}

type checkoutResp struct {
	OrderID       string      `json:"orderId"`
	PaymentMethod string      `json:"paymentMethod"`
	Total         json.Number `json:"total"`
	ShippingFee   json.Number `json:"shippingFee"`
	GrandTotal    json.Number `json:"grandTotal"`
	RedirectURL   string      `json:"redirectUrl,omitempty"`
}

// PlaceOrder: POST /checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	var req checkoutReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	method, err := checkoutdom.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		writeUsecaseErr(w, err)
		return
	}

	customer := checkoutdom.Customer{
		Name:    req.CustomerName,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.ShippingAddress,
	}

	res, err := s.Checkout.PlaceOrder(r.Context(), customer, method)
	if err != nil {
		if res.Order.ID != "" {
			// the order exists; tell the UI which one failed to get a payment link
			writeJSON(w, statusFor(err), map[string]any{
				"error":   err.Error(),
				"orderId": res.Order.ID,
			})
			return
		}
		writeUsecaseErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, checkoutResp{
		OrderID:       res.Order.ID,
		PaymentMethod: string(res.Method),
		Total:         money(res.Quote.Subtotal),
		ShippingFee:   money(res.Quote.ShippingFee),
		GrandTotal:    money(res.Quote.GrandTotal),
		RedirectURL:   res.RedirectURL,
	})
}

// PaymentReturn: GET /payment/return/{provider}
func (h *CheckoutHandler) PaymentReturn(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	method, err := checkoutdom.ParsePaymentMethod(mux.Vars(r)["provider"])
	if err != nil {
		writeUsecaseErr(w, err)
		return
	}

	params := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	ret := checkoutdom.ProviderReturn{Method: method, Params: params}

	outcome, err := s.Checkout.ConfirmPayment(r.Context(), ret)
	resp := map[string]any{
		"outcome": string(outcome),
		"orderId": ret.OrderID(),
		"cart":    toCartDTO(s.Cart),
	}
	if err != nil {
		resp["warning"] = "payment confirmed but the cart could not be cleared"
	}
	writeJSON(w, http.StatusOK, resp)
}
