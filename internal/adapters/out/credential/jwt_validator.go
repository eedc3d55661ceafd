// internal/adapters/out/credential/jwt_validator.go
package credential

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"

	sessiondom "storefront/internal/domain/session"
)

// JWTValidator reads the claims of the backend-issued JWT.
//
// The signature is not verified here: the backend verifies every request.
// This only decides whether the client should consider itself logged in
// (well-formed token, not expired).
type JWTValidator struct {
	now func() time.Time
}

func NewJWTValidator() *JWTValidator {
	return &JWTValidator{now: time.Now}
}

// NewJWTValidatorWithClock is useful for tests.
func NewJWTValidatorWithClock(now func() time.Time) *JWTValidator {
	if now == nil {
		now = time.Now
	}
	return &JWTValidator{now: now}
}

func (v *JWTValidator) Validate(_ context.Context, token string) (sessiondom.Credential, error) {
	raw := strings.TrimSpace(token)
	if raw == "" {
		return sessiondom.Credential{}, sessiondom.ErrInvalidCredential
	}

	parsed, err := jwt.Parse(
		[]byte(raw),
		jwt.WithVerify(false),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(v.now)),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return sessiondom.Credential{}, sessiondom.ErrExpiredCredential
		}
		return sessiondom.Credential{}, sessiondom.ErrInvalidCredential
	}

	subject := parsed.Subject()
	if subject == "" {
		// the storefront backend puts the account id in a private "id" claim
		if id, ok := parsed.Get("id"); ok {
			subject = claimString(id)
		}
	}

	return sessiondom.Credential{
		Token:     raw,
		Subject:   subject,
		ExpiresAt: parsed.Expiration(),
	}, nil
}

func claimString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case interface{ String() string }:
		return t.String()
	default:
		return ""
	}
}
