// internal/adapters/out/localstorage/storage.go
package localstorage

import "context"

// Storage is a string key/value store scoped to one device, in the spirit of
// a browser's localStorage. GetItem reports ok=false for a missing key.
type Storage interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}
