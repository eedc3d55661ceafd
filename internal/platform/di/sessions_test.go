package di

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	httpout "storefront/internal/adapters/out/http"
	"storefront/internal/adapters/out/localstorage"
	"storefront/internal/adapters/out/memory"
	cartdom "storefront/internal/domain/cart"
	sessiondom "storefront/internal/domain/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type noTokens struct{}

func (noTokens) Validate(context.Context, string) (sessiondom.Credential, error) {
	return sessiondom.Credential{}, sessiondom.ErrInvalidCredential
}

type fakePurger struct {
	mu      sync.Mutex
	cutoffs []time.Time
}

func (p *fakePurger) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cutoffs = append(p.cutoffs, cutoff)
	return 0, nil
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// Guest sessions never reach the backend, so an unroutable base URL is fine.
func newTestSessions(t *testing.T, purger Purger) (*Sessions, map[string]*memory.LocalStorage, *clock) {
	t.Helper()
	stores := make(map[string]*memory.LocalStorage)
	var mu sync.Mutex
	storageFor := func(id string) localstorage.Storage {
		mu.Lock()
		defer mu.Unlock()
		s, ok := stores[id]
		if !ok {
			s = memory.NewLocalStorage()
			stores[id] = s
		}
		return s
	}

	deps := SessionDeps{
		Backend:   httpout.NewClient("http://127.0.0.1:1", time.Second),
		Validator: noTokens{},
	}
	s := NewSessions(storageFor, deps, 30*time.Minute, purger)
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s.now = c.now
	t.Cleanup(func() { _ = s.Close() })
	return s, stores, c
}

func TestSessionsGet(t *testing.T) {
	s, _, _ := newTestSessions(t, nil)
	ctx := context.Background()

	a1, err := s.Get(ctx, "device-a")
	require.NoError(t, err)
	a2, err := s.Get(ctx, " device-a ")
	require.NoError(t, err)
	b, err := s.Get(ctx, "device-b")
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, sessiondom.GuestActive, a1.Cart.Mode())

	_, err = s.Get(ctx, "  ")
	assert.Error(t, err)

	hs, err := s.Resolve(ctx, "device-a")
	require.NoError(t, err)
	assert.Same(t, a1.Cart, hs.Cart)
}

func TestSessionsSweep(t *testing.T) {
	purger := &fakePurger{}
	s, _, c := newTestSessions(t, purger)
	ctx := context.Background()

	a, err := s.Get(ctx, "device-a")
	require.NoError(t, err)
	require.NoError(t, a.Cart.AddItem(ctx, cartdom.CartLine{ProductID: 3, Name: "Bàn", UnitPrice: decimal.NewFromInt(1500000), Quantity: 2}))

	c.advance(20 * time.Minute)
	_, err = s.Get(ctx, "device-b")
	require.NoError(t, err)

	c.advance(15 * time.Minute)
	assert.Equal(t, 1, s.Sweep(ctx))
	assert.Equal(t, 1, s.Len())

	require.Len(t, purger.cutoffs, 1)
	assert.Equal(t, c.now().Add(-localStorageRetention), purger.cutoffs[0])

	t.Run("Evicted device reloads its guest cart from storage", func(t *testing.T) {
		again, err := s.Get(ctx, "device-a")
		require.NoError(t, err)
		assert.NotSame(t, a, again)
		assert.Equal(t, 2, again.Cart.ItemCount())
		assert.True(t, decimal.NewFromInt(3000000).Equal(again.Cart.Total()))
	})
}

func TestSessionsClose(t *testing.T) {
	s, _, _ := newTestSessions(t, nil)
	ctx := context.Background()

	_, err := s.Get(ctx, "device-a")
	require.NoError(t, err)

	s.Run(time.Millisecond)
	s.Run(time.Millisecond) // second call is a no-op

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 0, s.Len())

	_, err = s.Get(ctx, "device-a")
	assert.ErrorIs(t, err, ErrSessionsClosed)
}
