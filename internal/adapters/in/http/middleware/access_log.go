// internal/adapters/in/http/middleware/access_log.go
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"storefront/internal/infra/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// AccessLog logs each request and records it in m, labelled by the route
// template so per-product paths do not explode the label set.
func AccessLog(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := "unmatched"
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			elapsed := time.Since(start)
			m.ObserveRequest(route, strconv.Itoa(rec.status), elapsed)

			device, _ := DeviceIDFromContext(r.Context())
			log.WithFields(log.Fields{
				"method":  r.Method,
				"route":   route,
				"status":  rec.status,
				"elapsed": elapsed.String(),
				"device":  device,
			}).Debug("[http] request")
		})
	}
}
