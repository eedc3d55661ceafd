// internal/adapters/out/localstorage/token_store.go
package localstorage

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	sessiondom "storefront/internal/domain/session"
)

// TokenStore implements session.Store under the key session.TokenKey.
type TokenStore struct {
	storage Storage
}

func NewTokenStore(storage Storage) *TokenStore {
	return &TokenStore{storage: storage}
}

func (s *TokenStore) Load(ctx context.Context) (string, bool, error) {
	v, ok, err := s.storage.GetItem(ctx, sessiondom.TokenKey)
	if err != nil {
		return "", false, errors.Wrap(err, "token_store: load")
	}
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", false, nil
	}
	return v, true, nil
}

func (s *TokenStore) Save(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return sessiondom.ErrInvalidCredential
	}
	return errors.Wrap(s.storage.SetItem(ctx, sessiondom.TokenKey, token), "token_store: save")
}

func (s *TokenStore) Clear(ctx context.Context) error {
	return errors.Wrap(s.storage.RemoveItem(ctx, sessiondom.TokenKey), "token_store: clear")
}
