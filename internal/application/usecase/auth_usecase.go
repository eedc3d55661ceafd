// internal/application/usecase/auth_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	sessiondom "storefront/internal/domain/session"
)

var ErrAuthInvalidArgument = errors.New("auth_usecase: email and password are required")

// SessionListener is notified after the stored credential changed.
type SessionListener interface {
	SessionChanged(ctx context.Context) error
}

// AuthUsecase logs a shopper in or out and tells the cart about it.
type AuthUsecase struct {
	auth      sessiondom.Authenticator
	validator sessiondom.Validator
	store     sessiondom.Store
	listener  SessionListener
}

func NewAuthUsecase(
	auth sessiondom.Authenticator,
	validator sessiondom.Validator,
	store sessiondom.Store,
	listener SessionListener,
) *AuthUsecase {
	return &AuthUsecase{auth: auth, validator: validator, store: store, listener: listener}
}

// Login exchanges email/password for a token, stores it and notifies the
// listener, which merges the guest cart. A failed merge/reload does not undo
// the login; it is logged and returned alongside the credential.
func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (sessiondom.Credential, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return sessiondom.Credential{}, ErrAuthInvalidArgument
	}

	token, err := uc.auth.Login(ctx, email, password)
	if err != nil {
		return sessiondom.Credential{}, err
	}

	cred, err := uc.validator.Validate(ctx, token)
	if err != nil {
		return sessiondom.Credential{}, err
	}

	if err := uc.store.Save(ctx, cred.Token); err != nil {
		return sessiondom.Credential{}, err
	}

	log.Printf("[auth_usecase] login ok subject=%q", cred.Subject)

	if uc.listener != nil {
		if err := uc.listener.SessionChanged(ctx); err != nil {
			log.Printf("[auth_usecase] WARN: session change after login failed: %v", err)
			return cred, err
		}
	}
	return cred, nil
}

// Logout removes the stored token and notifies the listener.
func (uc *AuthUsecase) Logout(ctx context.Context) error {
	if err := uc.store.Clear(ctx); err != nil {
		return err
	}
	log.Printf("[auth_usecase] logout")
	if uc.listener != nil {
		return uc.listener.SessionChanged(ctx)
	}
	return nil
}
