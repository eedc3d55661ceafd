package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	cartdom "storefront/internal/domain/cart"
	checkoutdom "storefront/internal/domain/checkout"
	sessiondom "storefront/internal/domain/session"
)

var errBackendDown = errors.New("backend down")

// mockGuestRepository stands in for client-local storage.
type mockGuestRepository struct {
	mu       sync.Mutex
	lines    cartdom.Lines
	stored   bool
	loadErr  error
	saveErr  error
	clearErr error
	clears   int
}

func (m *mockGuestRepository) Load(context.Context) (cartdom.Lines, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.lines.Clone(), nil
}

func (m *mockGuestRepository) Save(_ context.Context, lines cartdom.Lines) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.lines = lines.Clone()
	m.stored = true
	return nil
}

func (m *mockGuestRepository) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	if m.clearErr != nil {
		return m.clearErr
	}
	m.lines = nil
	m.stored = false
	return nil
}

// mockRemoteCart is an in-memory backend cart with a tiny catalog.
type mockRemoteCart struct {
	mu        sync.Mutex
	catalog   map[int64]cartdom.CartLine
	lines     cartdom.Lines
	addErr    map[int64]error
	updateErr error
	removeErr map[int64]error
	getErr    error
	tokens    []string
	adds      []int64
	removes   []int64
}

func newMockRemoteCart(catalog ...cartdom.CartLine) *mockRemoteCart {
	m := &mockRemoteCart{
		catalog:   make(map[int64]cartdom.CartLine),
		addErr:    make(map[int64]error),
		removeErr: make(map[int64]error),
	}
	for _, l := range catalog {
		m.catalog[l.ProductID] = l
	}
	return m
}

func (m *mockRemoteCart) Get(_ context.Context, token string) (cartdom.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
	if m.getErr != nil {
		return cartdom.Snapshot{}, m.getErr
	}
	return cartdom.Snapshot{Lines: m.lines.Clone(), Total: m.lines.Total()}, nil
}

func (m *mockRemoteCart) Add(_ context.Context, token string, productID int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
	m.adds = append(m.adds, productID)
	if err := m.addErr[productID]; err != nil {
		return err
	}
	l, ok := m.catalog[productID]
	if !ok {
		l = cartdom.CartLine{ProductID: productID, Name: "unknown", UnitPrice: decimal.Zero}
	}
	l.Quantity = qty
	next, err := m.lines.Add(l)
	if err != nil {
		return err
	}
	m.lines = next
	return nil
}

func (m *mockRemoteCart) Update(_ context.Context, token string, productID int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
	if m.updateErr != nil {
		return m.updateErr
	}
	m.lines = m.lines.SetQuantity(productID, qty)
	return nil
}

func (m *mockRemoteCart) Remove(_ context.Context, token string, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
	m.removes = append(m.removes, productID)
	if err := m.removeErr[productID]; err != nil {
		return err
	}
	m.lines = m.lines.Remove(productID)
	return nil
}

func (m *mockRemoteCart) serverLines() cartdom.Lines {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lines.Clone()
}

// mockProvider is a switchable credential source.
type mockProvider struct {
	mu   sync.Mutex
	cred sessiondom.Credential
	ok   bool
	err  error
}

func (m *mockProvider) Current(context.Context) (sessiondom.Credential, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred, m.ok, m.err
}

func (m *mockProvider) login(subject, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = sessiondom.Credential{Token: token, Subject: subject}
	m.ok = true
}

func (m *mockProvider) logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = sessiondom.Credential{}
	m.ok = false
}

// mockGateway records what checkout asked the backend for.
type mockGateway struct {
	order      checkoutdom.Order
	orderErr   error
	url        string
	urlErr     error
	lastReq    checkoutdom.OrderRequest
	lastToken  string
	momoAmount int64
	vnpayInfo  string
	payOS      checkoutdom.PayOSRequest
	calls      []string
}

func (m *mockGateway) PlaceOrder(_ context.Context, token string, req checkoutdom.OrderRequest) (checkoutdom.Order, error) {
	m.calls = append(m.calls, "order")
	m.lastToken = token
	m.lastReq = req
	return m.order, m.orderErr
}

func (m *mockGateway) CreateMomoURL(_ context.Context, _ string, _ string, amount int64) (string, error) {
	m.calls = append(m.calls, "momo")
	m.momoAmount = amount
	return m.url, m.urlErr
}

func (m *mockGateway) CreateVNPayURL(_ context.Context, _ string, _ string, _ decimal.Decimal, info string) (string, error) {
	m.calls = append(m.calls, "vnpay")
	m.vnpayInfo = info
	return m.url, m.urlErr
}

func (m *mockGateway) CreatePayOSLink(_ context.Context, _ string, req checkoutdom.PayOSRequest) (string, error) {
	m.calls = append(m.calls, "payos")
	m.payOS = req
	return m.url, m.urlErr
}
