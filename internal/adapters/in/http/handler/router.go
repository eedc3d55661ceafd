// internal/adapters/in/http/handler/router.go
package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/infra/metrics"
)

// RouterDeps are the inputs of NewRouter. Gatherer may be nil (no /metrics).
type RouterDeps struct {
	Sessions SessionResolver
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// NewRouter builds the storefront API. The returned handler still needs
// the CORS / Recover / DeviceID middleware around it.
func NewRouter(deps RouterDeps) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.AccessLog(deps.Metrics))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	cart := NewCartHandler(deps.Sessions)
	r.HandleFunc("/cart", cart.Get).Methods(http.MethodGet)
	r.HandleFunc("/cart", cart.Clear).Methods(http.MethodDelete)
	r.HandleFunc("/cart/items", cart.AddItem).Methods(http.MethodPost)
	r.HandleFunc("/cart/items/{productId}", cart.UpdateQuantity).Methods(http.MethodPut)
	r.HandleFunc("/cart/items/{productId}", cart.RemoveItem).Methods(http.MethodDelete)

	auth := NewAuthHandler(deps.Sessions)
	r.HandleFunc("/auth/login", auth.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", auth.Logout).Methods(http.MethodPost)

	co := NewCheckoutHandler(deps.Sessions)
	r.HandleFunc("/checkout/quote", co.Quote).Methods(http.MethodGet)
	r.HandleFunc("/checkout", co.PlaceOrder).Methods(http.MethodPost)
	r.HandleFunc("/payment/return/{provider}", co.PaymentReturn).Methods(http.MethodGet)

	orders := NewOrderHandler(deps.Sessions)
	r.HandleFunc("/orders", orders.List).Methods(http.MethodGet)
	r.HandleFunc("/orders/{orderId}/cancel", orders.Cancel).Methods(http.MethodPut)
	r.HandleFunc("/orders/{orderId}/return", orders.Return).Methods(http.MethodPut)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeErr(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Wrap applies the outer middleware chain: CORS outermost so even panics
// and 404s carry the CORS headers.
func Wrap(h http.Handler, corsOrigin string) http.Handler {
	return middleware.CORS(corsOrigin)(middleware.Recover(middleware.DeviceID(h)))
}
