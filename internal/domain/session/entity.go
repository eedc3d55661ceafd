// internal/domain/session/entity.go
package session

import (
	"context"
	"errors"
	"strings"
	"time"
)

// TokenKey is the local-storage key the session credential is kept under.
const TokenKey = "token"

var (
	ErrInvalidCredential    = errors.New("session: invalid credential")
	ErrExpiredCredential    = errors.New("session: credential expired")
	ErrUnverifiedAccount    = errors.New("session: account is not verified")
	ErrLoginFailed          = errors.New("session: login failed")
	ErrValidatorUnavailable = errors.New("session: credential validator is not configured")
)

// UnverifiedAccountCode is the backend error code returned on login for an
// account that has not completed OTP verification.
const UnverifiedAccountCode = 1010

// Mode is the state of a cart session.
type Mode int

const (
	Uninitialized Mode = iota
	GuestActive
	AuthenticatedActive
)

func (m Mode) String() string {
	switch m {
	case GuestActive:
		return "guest"
	case AuthenticatedActive:
		return "authenticated"
	default:
		return "uninitialized"
	}
}

// Credential is a validated bearer credential.
// ExpiresAt is zero when the token carries no expiry.
type Credential struct {
	Token     string
	Subject   string
	ExpiresAt time.Time
}

// Valid reports whether the credential is usable at now.
func (c Credential) Valid(now time.Time) bool {
	if strings.TrimSpace(c.Token) == "" {
		return false
	}
	if !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt) {
		return false
	}
	return true
}

// SameLogin reports whether c and other belong to the same login.
// A refreshed token for the same subject is the same login.
func (c Credential) SameLogin(other Credential) bool {
	if c.Subject != "" || other.Subject != "" {
		return c.Subject == other.Subject
	}
	return c.Token == other.Token
}

// Provider yields the currently held valid credential.
// ok is false when there is none (guest).
type Provider interface {
	Current(ctx context.Context) (cred Credential, ok bool, err error)
}

// Validator checks a raw token and extracts its claims.
type Validator interface {
	Validate(ctx context.Context, token string) (Credential, error)
}

// Store persists the raw token on the client side.
type Store interface {
	Load(ctx context.Context) (token string, ok bool, err error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Authenticator exchanges account credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (token string, err error)
}
