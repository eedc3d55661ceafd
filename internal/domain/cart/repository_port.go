// internal/domain/cart/repository_port.go
package cart

import "context"

// GuestKey is the fixed local-storage key the guest cart lives under.
const GuestKey = "cart_guest"

// GuestRepository persists the guest cart on the client side.
//
// Load returns an empty list (not an error) when nothing is stored.
// Clear removes the key entirely.
type GuestRepository interface {
	Load(ctx context.Context) (Lines, error)
	Save(ctx context.Context, lines Lines) error
	Clear(ctx context.Context) error
}

// RemoteCart is the backend cart service for an authenticated session.
// token is the bearer credential.
//
// Add and Update may fail with *StockExceededError; connectivity failures
// are reported as *TransportError.
type RemoteCart interface {
	Get(ctx context.Context, token string) (Snapshot, error)
	Add(ctx context.Context, token string, productID int64, qty int) error
	Update(ctx context.Context, token string, productID int64, qty int) error
	Remove(ctx context.Context, token string, productID int64) error
}
