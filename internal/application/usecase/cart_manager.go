// internal/application/usecase/cart_manager.go
package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	cartdom "storefront/internal/domain/cart"
	sessiondom "storefront/internal/domain/session"
	"storefront/internal/infra/metrics"
)

var ErrCartManagerNotConfigured = errors.New("cart_manager: not configured")

// CartManager presents one cart interface over a guest cart (client-local
// storage) and an authenticated cart (backend-owned, cached here), and folds
// the guest cart into the account cart when a credential appears.
//
// The manager only learns about login/logout through Start and
// SessionChanged; it never polls the credential store on its own.
//
// mu guards the in-memory fields only and is never held across storage or
// backend calls. Two racing mutations may therefore lose an update (guest) or
// issue duplicate backend requests (authenticated); callers that need more
// must serialize themselves. transitionMu serializes mode transitions so the
// merge runs once per login.
type CartManager struct {
	guest    cartdom.GuestRepository
	remote   cartdom.RemoteCart
	provider sessiondom.Provider
	metrics  *metrics.Metrics
	logger   *log.Entry

	transitionMu sync.Mutex

	mu    sync.Mutex
	mode  sessiondom.Mode
	cred  sessiondom.Credential
	lines cartdom.Lines
}

func NewCartManager(
	guest cartdom.GuestRepository,
	remote cartdom.RemoteCart,
	provider sessiondom.Provider,
	m *metrics.Metrics,
) *CartManager {
	return &CartManager{
		guest:    guest,
		remote:   remote,
		provider: provider,
		metrics:  m,
		logger:   log.WithField("component", "cart_manager"),
		lines:    cartdom.Lines{},
	}
}

// WithLogger replaces the logger (e.g. to tag a device id).
func (m *CartManager) WithLogger(l *log.Entry) *CartManager {
	if l != nil {
		m.logger = l.WithField("component", "cart_manager")
	}
	return m
}

// ----------------------------
// Reads
// ----------------------------

func (m *CartManager) Mode() sessiondom.Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Lines returns a snapshot of the current lines.
func (m *CartManager) Lines() cartdom.Lines {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lines.Clone()
}

func (m *CartManager) Total() decimal.Decimal {
	return m.Lines().Total()
}

func (m *CartManager) ItemCount() int {
	return m.Lines().ItemCount()
}

// Credential returns the credential of the authenticated session.
func (m *CartManager) Credential() (sessiondom.Credential, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != sessiondom.AuthenticatedActive {
		return sessiondom.Credential{}, false
	}
	return m.cred, true
}

// ----------------------------
// Lifecycle
// ----------------------------

// Start performs the first load. Calling it again is a no-op.
func (m *CartManager) Start(ctx context.Context) error {
	if m.Mode() != sessiondom.Uninitialized {
		return nil
	}
	return m.SessionChanged(ctx)
}

// SessionChanged is the explicit login/logout notification. It re-reads the
// credential provider and fires the matching transition:
//
//   - no credential, not guest        -> GuestActive
//   - credential, not authenticated   -> AuthenticatedActive (merge + reload)
//   - credential for a different login -> AuthenticatedActive again (merge + reload)
//   - same login (e.g. refreshed token) -> credential swapped, nothing else
func (m *CartManager) SessionChanged(ctx context.Context) error {
	if m == nil || m.guest == nil || m.remote == nil || m.provider == nil {
		return ErrCartManagerNotConfigured
	}

	m.transitionMu.Lock()
	defer m.transitionMu.Unlock()

	cred, ok, err := m.provider.Current(ctx)
	if err != nil {
		m.logger.WithError(err).Warn("credential provider failed; treating session as guest")
		ok = false
	}

	m.mu.Lock()
	from := m.mode
	prev := m.cred
	m.mu.Unlock()

	switch {
	case !ok && from == sessiondom.GuestActive:
		return nil
	case !ok:
		return m.enterGuest(ctx, from)
	case from == sessiondom.AuthenticatedActive && prev.SameLogin(cred):
		m.mu.Lock()
		m.cred = cred
		m.mu.Unlock()
		return nil
	default:
		return m.enterAuthenticated(ctx, from, cred)
	}
}

// enterGuest discards any authenticated cache and adopts whatever is in guest
// storage. The authenticated cart is never written back to guest storage.
func (m *CartManager) enterGuest(ctx context.Context, from sessiondom.Mode) error {
	lines, err := m.guest.Load(ctx)
	if err != nil {
		m.logger.WithError(err).Warn("guest cart could not be loaded; starting empty")
		lines = cartdom.Lines{}
	}

	m.mu.Lock()
	m.mode = sessiondom.GuestActive
	m.cred = sessiondom.Credential{}
	m.lines = lines.Clone()
	m.mu.Unlock()

	m.metrics.Transition(from.String(), sessiondom.GuestActive.String())
	m.logger.WithField("lines", len(lines)).Infof("[cart_manager] %s -> guest", from)
	return err
}

// enterAuthenticated runs the merge protocol and then replaces the cache with
// the backend cart. The cache of the previous session (guest lines, or another
// account's cart) is dropped first, so a failed reload leaves an empty cart
// and never lines that belong to someone else.
func (m *CartManager) enterAuthenticated(ctx context.Context, from sessiondom.Mode, cred sessiondom.Credential) error {
	m.merge(ctx, cred)

	m.mu.Lock()
	m.mode = sessiondom.AuthenticatedActive
	m.cred = cred
	m.lines = cartdom.Lines{}
	m.mu.Unlock()

	m.metrics.Transition(from.String(), sessiondom.AuthenticatedActive.String())
	m.logger.WithField("subject", cred.Subject).Infof("[cart_manager] %s -> authenticated", from)

	return m.Reload(ctx)
}

// merge folds the guest cart into the account cart, one line at a time.
// A failed line is logged and skipped. Guest storage is cleared once the loop
// is done regardless of failures; nothing is retried.
func (m *CartManager) merge(ctx context.Context, cred sessiondom.Credential) {
	guestLines, err := m.guest.Load(ctx)
	if err != nil {
		// nothing was read, so nothing is cleared either
		m.logger.WithError(err).Warn("guest cart unreadable; skipping merge")
		return
	}

	merged, failed := 0, 0
	for _, line := range guestLines {
		if err := m.remote.Add(ctx, cred.Token, line.ProductID, line.Quantity); err != nil {
			failed++
			m.metrics.MergeLine(false)
			m.recordBackend("add", err)
			m.logger.WithFields(log.Fields{
				"productId": line.ProductID,
				"quantity":  line.Quantity,
			}).WithError(err).Warn("guest line merge failed")
			continue
		}
		merged++
		m.metrics.MergeLine(true)
		m.recordBackend("add", nil)
	}

	if err := m.guest.Clear(ctx); err != nil {
		m.logger.WithError(err).Warn("guest cart could not be cleared after merge")
	}

	if len(guestLines) > 0 {
		m.logger.WithFields(log.Fields{"merged": merged, "failed": failed}).Info("guest cart merged")
	}
}

// Reload fetches the authenticated cart and replaces the cache wholesale.
// On failure the previous cache is kept and the error returned; only a
// successful empty response empties the cart. In guest mode it re-reads
// guest storage.
func (m *CartManager) Reload(ctx context.Context) error {
	m.mu.Lock()
	mode := m.mode
	cred := m.cred
	m.mu.Unlock()

	switch mode {
	case sessiondom.AuthenticatedActive:
		snap, err := m.remote.Get(ctx, cred.Token)
		m.recordBackend("get", err)
		if err != nil {
			m.logger.WithError(err).Warn("authenticated cart reload failed; keeping previous cache")
			return err
		}
		m.commit(mode, cred, snap.Lines)
		return nil

	case sessiondom.GuestActive:
		lines, err := m.guest.Load(ctx)
		if err != nil {
			return err
		}
		m.commit(mode, cred, lines)
		return nil
	}
	return m.Start(ctx)
}

// commit stores lines if the session is still the one the caller started in.
func (m *CartManager) commit(mode sessiondom.Mode, cred sessiondom.Credential, lines cartdom.Lines) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != mode || m.cred.Token != cred.Token {
		return
	}
	m.lines = lines.Clone()
}

// ----------------------------
// Mutations
// ----------------------------

// AddItem adds line (incrementing an existing product's quantity).
// In authenticated mode backend failures, including stock-exceeded, are
// returned unchanged and the cache is left as it was.
func (m *CartManager) AddItem(ctx context.Context, line cartdom.CartLine) error {
	mode, cred, lines, err := m.current(ctx)
	if err != nil {
		return err
	}

	if mode == sessiondom.AuthenticatedActive {
		if line.ProductID <= 0 || line.Quantity < 1 {
			return cartdom.ErrInvalidLine
		}
		err := m.remote.Add(ctx, cred.Token, line.ProductID, line.Quantity)
		m.recordBackend("add", err)
		if err != nil {
			return err
		}
		return m.Reload(ctx)
	}

	next, err := lines.Add(line)
	if err != nil {
		return err
	}
	return m.persistGuest(ctx, cred, next)
}

// RemoveItem drops productID from the cart.
func (m *CartManager) RemoveItem(ctx context.Context, productID int64) error {
	mode, cred, lines, err := m.current(ctx)
	if err != nil {
		return err
	}

	if mode == sessiondom.AuthenticatedActive {
		err := m.remote.Remove(ctx, cred.Token, productID)
		m.recordBackend("remove", err)
		if err != nil {
			return err
		}
		return m.Reload(ctx)
	}

	return m.persistGuest(ctx, cred, lines.Remove(productID))
}

// UpdateQuantity sets the quantity of productID. qty < 1 is a no-op in both modes.
func (m *CartManager) UpdateQuantity(ctx context.Context, productID int64, qty int) error {
	if qty < 1 {
		return nil
	}

	mode, cred, lines, err := m.current(ctx)
	if err != nil {
		return err
	}

	if mode == sessiondom.AuthenticatedActive {
		err := m.remote.Update(ctx, cred.Token, productID, qty)
		m.recordBackend("update", err)
		if err != nil {
			return err
		}
		return m.Reload(ctx)
	}

	return m.persistGuest(ctx, cred, lines.SetQuantity(productID, qty))
}

// ClearCart empties the cart. In authenticated mode every current line is
// removed one request at a time; the first failure stops the loop, the cache
// is reloaded to show what was actually removed, and the failure is returned.
func (m *CartManager) ClearCart(ctx context.Context) error {
	mode, cred, lines, err := m.current(ctx)
	if err != nil {
		return err
	}

	if mode == sessiondom.AuthenticatedActive {
		var removeErr error
		for _, line := range lines {
			err := m.remote.Remove(ctx, cred.Token, line.ProductID)
			m.recordBackend("remove", err)
			if err != nil {
				m.logger.WithField("productId", line.ProductID).WithError(err).Warn("clear cart: remove failed")
				removeErr = err
				break
			}
		}
		if err := m.Reload(ctx); err != nil && removeErr == nil {
			return err
		}
		return removeErr
	}

	if err := m.guest.Clear(ctx); err != nil {
		return err
	}
	m.commit(mode, cred, cartdom.Lines{})
	return nil
}

// ----------------------------
// helpers
// ----------------------------

// current returns the session state, starting the manager on first use (the
// guest cart is created implicitly by the first mutation).
func (m *CartManager) current(ctx context.Context) (sessiondom.Mode, sessiondom.Credential, cartdom.Lines, error) {
	if m == nil || m.guest == nil || m.remote == nil || m.provider == nil {
		return sessiondom.Uninitialized, sessiondom.Credential{}, nil, ErrCartManagerNotConfigured
	}
	if m.Mode() == sessiondom.Uninitialized {
		if err := m.Start(ctx); err != nil && m.Mode() == sessiondom.Uninitialized {
			return sessiondom.Uninitialized, sessiondom.Credential{}, nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode, m.cred, m.lines.Clone(), nil
}

// persistGuest writes the full line list to guest storage, then the cache.
func (m *CartManager) persistGuest(ctx context.Context, cred sessiondom.Credential, next cartdom.Lines) error {
	if err := m.guest.Save(ctx, next); err != nil {
		return err
	}
	m.commit(sessiondom.GuestActive, cred, next)
	return nil
}

func (m *CartManager) recordBackend(op string, err error) {
	switch {
	case err == nil:
		m.metrics.BackendCall(op, "ok")
	case errors.Is(err, cartdom.ErrStockExceeded):
		m.metrics.BackendCall(op, "stock_exceeded")
	default:
		m.metrics.BackendCall(op, "error")
	}
}
