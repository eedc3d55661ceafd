// internal/adapters/in/http/middleware/device.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeviceCookie identifies a browser; each device gets its own cart session.
const DeviceCookie = "sf_device"

// DeviceHeader lets non-browser clients pass the device id explicitly.
const DeviceHeader = "X-Device-Id"

const deviceCookieMaxAge = 365 * 24 * time.Hour

type ctxKeyDevice struct{}

// DeviceID resolves the device id (header, then cookie) or issues a new one
// and sets the cookie. The id is available through DeviceIDFromContext.
func DeviceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := readDeviceID(r)
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     DeviceCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(deviceCookieMaxAge.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(WithDeviceID(r.Context(), id)))
	})
}

func readDeviceID(r *http.Request) string {
	if v := validDeviceID(r.Header.Get(DeviceHeader)); v != "" {
		return v
	}
	if c, err := r.Cookie(DeviceCookie); err == nil {
		return validDeviceID(c.Value)
	}
	return ""
}

// validDeviceID accepts only ids we could have issued.
func validDeviceID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return ""
	}
	return u.String()
}

func WithDeviceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyDevice{}, id)
}

func DeviceIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyDevice{}).(string)
	return v, ok && v != ""
}
