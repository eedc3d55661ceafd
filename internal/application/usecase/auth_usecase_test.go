package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "storefront/internal/domain/cart"
	sessiondom "storefront/internal/domain/session"
)

type mockTokenStore struct {
	token   string
	ok      bool
	loadErr error
	saveErr error
}

func (m *mockTokenStore) Load(context.Context) (string, bool, error) {
	return m.token, m.ok, m.loadErr
}

func (m *mockTokenStore) Save(_ context.Context, token string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token, m.ok = token, true
	return nil
}

func (m *mockTokenStore) Clear(context.Context) error {
	m.token, m.ok = "", false
	return nil
}

// mockValidator accepts tokens of the form "valid:<subject>".
type mockValidator struct {
	err       error
	expiresAt time.Time
}

func (m *mockValidator) Validate(_ context.Context, token string) (sessiondom.Credential, error) {
	if m.err != nil {
		return sessiondom.Credential{}, m.err
	}
	const prefix = "valid:"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return sessiondom.Credential{}, sessiondom.ErrInvalidCredential
	}
	return sessiondom.Credential{Token: token, Subject: token[len(prefix):], ExpiresAt: m.expiresAt}, nil
}

type mockAuthenticator struct {
	token string
	err   error
}

func (m *mockAuthenticator) Login(context.Context, string, string) (string, error) {
	return m.token, m.err
}

func setupAuth(t *testing.T) (*AuthUsecase, *CartManager, *mockTokenStore, *mockGuestRepository, *mockRemoteCart, *mockAuthenticator) {
	t.Helper()
	store := &mockTokenStore{}
	validator := &mockValidator{}
	guest := &mockGuestRepository{}
	remote := newMockRemoteCart(product(1, 100000, 1), product(2, 250000, 1))
	cart := NewCartManager(guest, remote, NewStoredCredentialProvider(store, validator), nil)
	authn := &mockAuthenticator{token: "valid:u1"}
	return NewAuthUsecase(authn, validator, store, cart), cart, store, guest, remote, authn
}

func TestAuthUsecaseLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Success merges the guest cart", func(t *testing.T) {
		uc, cart, store, guest, remote, _ := setupAuth(t)
		require.NoError(t, cart.AddItem(ctx, product(1, 100000, 2)))

		cred, err := uc.Login(ctx, " shopper@example.com ", "secret")
		require.NoError(t, err)
		assert.Equal(t, "u1", cred.Subject)
		assert.Equal(t, "valid:u1", store.token)

		assert.Equal(t, sessiondom.AuthenticatedActive, cart.Mode())
		assert.False(t, guest.stored)
		assert.Equal(t, []int64{1}, remote.adds)
		assert.Equal(t, 2, cart.ItemCount())
	})

	t.Run("Missing arguments", func(t *testing.T) {
		uc, _, _, _, _, _ := setupAuth(t)
		_, err := uc.Login(ctx, "  ", "secret")
		assert.ErrorIs(t, err, ErrAuthInvalidArgument)
		_, err = uc.Login(ctx, "a@b.c", "")
		assert.ErrorIs(t, err, ErrAuthInvalidArgument)
	})

	t.Run("Unverified account stays guest", func(t *testing.T) {
		uc, cart, store, _, _, authn := setupAuth(t)
		authn.err = sessiondom.ErrUnverifiedAccount

		_, err := uc.Login(ctx, "a@b.c", "secret")
		assert.ErrorIs(t, err, sessiondom.ErrUnverifiedAccount)
		assert.False(t, store.ok)
		assert.NotEqual(t, sessiondom.AuthenticatedActive, cart.Mode())
	})

	t.Run("Rejected token is not stored", func(t *testing.T) {
		uc, _, store, _, _, authn := setupAuth(t)
		authn.token = "garbage"

		_, err := uc.Login(ctx, "a@b.c", "secret")
		assert.ErrorIs(t, err, sessiondom.ErrInvalidCredential)
		assert.False(t, store.ok)
	})

	t.Run("Cart sync failure still logs in", func(t *testing.T) {
		uc, cart, store, _, remote, _ := setupAuth(t)
		remote.getErr = &cartdom.TransportError{Op: "get", Err: errBackendDown}

		cred, err := uc.Login(ctx, "a@b.c", "secret")
		assert.ErrorIs(t, err, cartdom.ErrTransport)
		assert.Equal(t, "u1", cred.Subject)
		assert.True(t, store.ok)
		assert.Equal(t, sessiondom.AuthenticatedActive, cart.Mode())
	})
}

func TestAuthUsecaseLogout(t *testing.T) {
	ctx := context.Background()
	uc, cart, store, guest, _, _ := setupAuth(t)

	_, err := uc.Login(ctx, "a@b.c", "secret")
	require.NoError(t, err)
	require.NoError(t, cart.AddItem(ctx, product(2, 250000, 1)))

	require.NoError(t, uc.Logout(ctx))
	assert.False(t, store.ok)
	assert.Equal(t, sessiondom.GuestActive, cart.Mode())
	assert.Empty(t, cart.Lines())
	assert.False(t, guest.stored)
}

func TestStoredCredentialProvider(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	newProvider := func(store *mockTokenStore, v *mockValidator) *StoredCredentialProvider {
		p := NewStoredCredentialProvider(store, v)
		p.now = func() time.Time { return now }
		return p
	}

	t.Run("No token", func(t *testing.T) {
		_, ok, err := newProvider(&mockTokenStore{}, &mockValidator{}).Current(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Valid token", func(t *testing.T) {
		p := newProvider(&mockTokenStore{token: "valid:u1", ok: true}, &mockValidator{expiresAt: now.Add(time.Hour)})
		cred, ok, err := p.Current(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "u1", cred.Subject)
	})

	t.Run("Expired token is no credential", func(t *testing.T) {
		p := newProvider(&mockTokenStore{token: "valid:u1", ok: true}, &mockValidator{expiresAt: now.Add(-time.Second)})
		_, ok, err := p.Current(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Malformed token is no credential", func(t *testing.T) {
		p := newProvider(&mockTokenStore{token: "garbage", ok: true}, &mockValidator{})
		_, ok, err := p.Current(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Validator outage is an error", func(t *testing.T) {
		p := newProvider(&mockTokenStore{token: "valid:u1", ok: true}, &mockValidator{err: sessiondom.ErrValidatorUnavailable})
		_, _, err := p.Current(ctx)
		assert.ErrorIs(t, err, sessiondom.ErrValidatorUnavailable)
	})

	t.Run("Store failure is an error", func(t *testing.T) {
		boom := errors.New("disk")
		_, _, err := newProvider(&mockTokenStore{loadErr: boom}, &mockValidator{}).Current(ctx)
		assert.ErrorIs(t, err, boom)
	})
}
