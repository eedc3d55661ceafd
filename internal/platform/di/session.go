// internal/platform/di/session.go
package di

import (
	log "github.com/sirupsen/logrus"

	handler "storefront/internal/adapters/in/http/handler"
	httpout "storefront/internal/adapters/out/http"
	"storefront/internal/adapters/out/localstorage"
	usecase "storefront/internal/application/usecase"
	sessiondom "storefront/internal/domain/session"
	"storefront/internal/infra/metrics"
)

// DeviceSession is the use-case graph of one device (one browser, or the
// cartctl user).
type DeviceSession struct {
	Cart     *usecase.CartManager
	Auth     *usecase.AuthUsecase
	Checkout *usecase.CheckoutUsecase
	Orders   *usecase.OrderUsecase
}

// SessionDeps are shared by all device sessions.
type SessionDeps struct {
	Backend   *httpout.Client
	Validator sessiondom.Validator
	Metrics   *metrics.Metrics
}

// NewDeviceSession wires a device session over storage.
func NewDeviceSession(deviceID string, storage localstorage.Storage, deps SessionDeps) *DeviceSession {
	tokens := localstorage.NewTokenStore(storage)
	provider := usecase.NewStoredCredentialProvider(tokens, deps.Validator)

	cart := usecase.NewCartManager(
		localstorage.NewGuestCartRepository(storage),
		httpout.NewCartClient(deps.Backend),
		provider,
		deps.Metrics,
	).WithLogger(log.WithField("device", deviceID))

	return &DeviceSession{
		Cart:     cart,
		Auth:     usecase.NewAuthUsecase(httpout.NewAuthClient(deps.Backend), deps.Validator, tokens, cart),
		Checkout: usecase.NewCheckoutUsecase(cart, httpout.NewCheckoutClient(deps.Backend), deps.Metrics),
		Orders:   usecase.NewOrderUsecase(cart, httpout.NewOrderClient(deps.Backend), deps.Metrics),
	}
}

// HTTP adapts the session for the handlers.
func (s *DeviceSession) HTTP() *handler.Session {
	return &handler.Session{Cart: s.Cart, Auth: s.Auth, Checkout: s.Checkout, Orders: s.Orders}
}
