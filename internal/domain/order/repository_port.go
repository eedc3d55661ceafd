// internal/domain/order/repository_port.go
package order

import "context"

// Tracker is the backend's order history API. token is the bearer credential.
type Tracker interface {
	List(ctx context.Context, token string) ([]Order, error)
	Cancel(ctx context.Context, token, orderID string) error
	Return(ctx context.Context, token, orderID string) error
}
