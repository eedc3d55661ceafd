// internal/adapters/in/http/handler/helper_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"storefront/internal/adapters/in/http/middleware"
	usecase "storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
	checkoutdom "storefront/internal/domain/checkout"
	orderdom "storefront/internal/domain/order"
	sessiondom "storefront/internal/domain/session"
)

const maxBody = 1 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": strings.TrimSpace(msg)})
}

func readJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// money renders a decimal as a JSON number.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func productIDVar(r *http.Request) (int64, bool) {
	s := strings.TrimSpace(mux.Vars(r)["productId"])
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// session resolves the device session for r, answering the request itself on failure.
func session(w http.ResponseWriter, r *http.Request, resolver SessionResolver) (*Session, bool) {
	if resolver == nil {
		writeErr(w, http.StatusServiceUnavailable, "sessions are not configured")
		return nil, false
	}
	device, ok := middleware.DeviceIDFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusBadRequest, "device id is missing")
		return nil, false
	}
	s, err := resolver.Resolve(r.Context(), device)
	if err != nil || s == nil {
		log.Printf("[handler] resolve session device=%s failed: %v", device, err)
		writeErr(w, http.StatusServiceUnavailable, "session unavailable")
		return nil, false
	}
	return s, true
}

// statusFor maps use-case errors onto HTTP statuses.
func statusFor(err error) int {
	var stock *cartdom.StockExceededError
	var rejected *orderdom.RejectedError
	switch {
	case errors.As(err, &stock), errors.As(err, &rejected):
		return http.StatusConflict
	case errors.Is(err, orderdom.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, cartdom.ErrInvalidLine),
		errors.Is(err, orderdom.ErrInvalidID),
		errors.Is(err, usecase.ErrAuthInvalidArgument),
		errors.Is(err, checkoutdom.ErrUnknownPaymentMethod),
		errors.Is(err, checkoutdom.ErrEmptyCart),
		errors.Is(err, checkoutdom.ErrInvalidCustomer):
		return http.StatusBadRequest
	case errors.Is(err, sessiondom.ErrUnverifiedAccount):
		return http.StatusForbidden
	case errors.Is(err, sessiondom.ErrLoginFailed),
		errors.Is(err, orderdom.ErrLoginRequired),
		errors.Is(err, sessiondom.ErrInvalidCredential),
		errors.Is(err, sessiondom.ErrExpiredCredential):
		return http.StatusUnauthorized
	case errors.Is(err, cartdom.ErrTransport),
		errors.Is(err, orderdom.ErrUnavailable),
		errors.Is(err, checkoutdom.ErrNoPaymentURL),
		errors.Is(err, checkoutdom.ErrInvalidOrder):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeUsecaseErr(w http.ResponseWriter, err error) {
	code := statusFor(err)

	msg := err.Error()
	var stock *cartdom.StockExceededError
	var rejected *orderdom.RejectedError
	switch {
	case errors.As(err, &stock), errors.Is(err, cartdom.ErrInvalidLine), errors.Is(err, cartdom.ErrTransport):
		msg = cartdom.UserMessage(err)
	case errors.As(err, &rejected):
		msg = rejected.Error()
	case errors.Is(err, orderdom.ErrUnavailable):
		msg = "the order service is unavailable, please try again"
	case code == http.StatusInternalServerError:
		msg = "internal error"
	}

	body := map[string]any{"error": msg}
	if stock != nil {
		body["code"] = stock.Code
	}
	if rejected != nil && rejected.Code != 0 {
		body["code"] = rejected.Code
	}
	if errors.Is(err, sessiondom.ErrUnverifiedAccount) {
		body["code"] = sessiondom.UnverifiedAccountCode
	}
	if code >= http.StatusInternalServerError {
		log.Printf("[handler] status=%d err=%v", code, err)
	}
	writeJSON(w, code, body)
}
