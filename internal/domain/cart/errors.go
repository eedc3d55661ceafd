// internal/domain/cart/errors.go
package cart

import (
	"errors"
	"fmt"
)

// StockExceededCode is the backend error code for "requested quantity exceeds stock".
const StockExceededCode = 1023

var (
	ErrInvalidLine   = errors.New("cart: invalid line")
	ErrStockExceeded = errors.New("cart: quantity exceeds available stock")
	ErrTransport     = errors.New("cart: backend unavailable")
)

// StockExceededError carries the backend's user-facing message verbatim.
type StockExceededError struct {
	Code    int
	Message string
}

func (e *StockExceededError) Error() string {
	if e.Message == "" {
		return ErrStockExceeded.Error()
	}
	return e.Message
}

func (e *StockExceededError) Is(target error) bool { return target == ErrStockExceeded }

// TransportError is any backend call that failed for connectivity reasons or
// returned an unexpected status.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("cart %s: backend status=%d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("cart %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// UserMessage returns the text a UI should show for err, or "" when err is nil.
// Stock-exceeded messages pass through unchanged.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *StockExceededError
	if errors.As(err, &se) {
		return se.Error()
	}
	if errors.Is(err, ErrInvalidLine) {
		return "invalid cart item"
	}
	if errors.Is(err, ErrTransport) {
		return "the cart service is unavailable, please try again"
	}
	return "unexpected cart error"
}
