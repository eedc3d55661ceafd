// internal/application/usecase/credential_provider.go
package usecase

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	sessiondom "storefront/internal/domain/session"
)

// StoredCredentialProvider reads the token from the session store and
// validates it on every call. An invalid or expired token counts as "no
// credential"; it is left in the store for the next Logout to remove.
type StoredCredentialProvider struct {
	store     sessiondom.Store
	validator sessiondom.Validator
	now       func() time.Time
}

func NewStoredCredentialProvider(store sessiondom.Store, validator sessiondom.Validator) *StoredCredentialProvider {
	return &StoredCredentialProvider{store: store, validator: validator, now: time.Now}
}

func (p *StoredCredentialProvider) Current(ctx context.Context) (sessiondom.Credential, bool, error) {
	if p == nil || p.store == nil || p.validator == nil {
		return sessiondom.Credential{}, false, sessiondom.ErrValidatorUnavailable
	}

	token, ok, err := p.store.Load(ctx)
	if err != nil {
		return sessiondom.Credential{}, false, err
	}
	if !ok {
		return sessiondom.Credential{}, false, nil
	}

	cred, err := p.validator.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, sessiondom.ErrInvalidCredential) || errors.Is(err, sessiondom.ErrExpiredCredential) {
			log.Printf("[credential_provider] stored token rejected: %v", err)
			return sessiondom.Credential{}, false, nil
		}
		return sessiondom.Credential{}, false, err
	}
	if !cred.Valid(p.now()) {
		return sessiondom.Credential{}, false, nil
	}
	return cred, true, nil
}
