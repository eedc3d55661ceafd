// internal/adapters/out/credential/firebase_validator.go
package credential

import (
	"context"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	log "github.com/sirupsen/logrus"

	sessiondom "storefront/internal/domain/session"
)

// IDTokenVerifier is the subset of *fbauth.Client we use.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseValidator validates Firebase ID tokens for deployments that sign
// shoppers in through Firebase Auth instead of the backend's own JWT.
type FirebaseValidator struct {
	Auth IDTokenVerifier
}

func NewFirebaseValidator(client IDTokenVerifier) *FirebaseValidator {
	return &FirebaseValidator{Auth: client}
}

func (v *FirebaseValidator) Validate(ctx context.Context, idToken string) (sessiondom.Credential, error) {
	if v == nil || v.Auth == nil {
		return sessiondom.Credential{}, sessiondom.ErrValidatorUnavailable
	}

	raw := strings.TrimSpace(idToken)
	if raw == "" {
		return sessiondom.Credential{}, sessiondom.ErrInvalidCredential
	}

	token, err := v.Auth.VerifyIDToken(ctx, raw)
	if err != nil {
		if fbauth.IsIDTokenExpired(err) {
			return sessiondom.Credential{}, sessiondom.ErrExpiredCredential
		}
		log.Printf("[firebase_validator] verify failed (len=%d): %v", len(raw), err)
		return sessiondom.Credential{}, sessiondom.ErrInvalidCredential
	}

	uid := strings.TrimSpace(token.UID)
	if uid == "" {
		return sessiondom.Credential{}, sessiondom.ErrInvalidCredential
	}

	var exp time.Time
	if token.Expires > 0 {
		exp = time.Unix(token.Expires, 0)
	}

	return sessiondom.Credential{
		Token:     raw,
		Subject:   uid,
		ExpiresAt: exp,
	}, nil
}
