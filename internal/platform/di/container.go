// internal/platform/di/container.go
package di

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	handler "storefront/internal/adapters/in/http/handler"
)

// Container is the storefront BFF: device sessions plus the router.
type Container struct {
	Infra    *Infra
	Sessions *Sessions
	Router   http.Handler
}

func NewContainer(_ context.Context, infra *Infra) (*Container, error) {
	if infra == nil || infra.Config == nil {
		return nil, errors.New("di.container: infra is nil")
	}

	deps := SessionDeps{
		Backend:   infra.Backend,
		Validator: infra.Validator,
		Metrics:   infra.Metrics,
	}

	var purger Purger
	if infra.SQLite != nil {
		purger = infra.SQLite
	}

	sessions := NewSessions(infra.StorageFor, deps, infra.Config.SessionIdleTTL, purger)
	sessions.Run(0)

	router := handler.NewRouter(handler.RouterDeps{
		Sessions: sessions,
		Metrics:  infra.Metrics,
		Gatherer: infra.Registry,
	})

	log.Printf("[di.container] storefront routes registered (session idle ttl=%s)", infra.Config.SessionIdleTTL)
	return &Container{
		Infra:    infra,
		Sessions: sessions,
		Router:   handler.Wrap(router, infra.Config.CORSOrigin),
	}, nil
}

// Close stops the session janitor. Infra is closed by its owner.
func (c *Container) Close() error {
	if c == nil || c.Sessions == nil {
		return nil
	}
	return c.Sessions.Close()
}
