// internal/domain/cart/entity.go
package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CartLine represents one product's presence in a cart.
// ProductID is the identity key; Name/UnitPrice/ImageRef are a display snapshot
// and are not kept in sync with the catalog.
type CartLine struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	ImageRef  string          `json:"imageRef"`
}

// Subtotal is UnitPrice × Quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l CartLine) validate() error {
	if l.ProductID <= 0 || l.Quantity < 1 {
		return ErrInvalidLine
	}
	if l.UnitPrice.IsNegative() {
		return ErrInvalidLine
	}
	return nil
}

// Lines is the ordered line list of a cart.
// ProductID is unique within Lines. Every mutator returns a new slice and
// leaves the receiver untouched, so a snapshot handed out stays stable.
//
// Total and ItemCount are always computed from the slice; nothing derived is stored.
type Lines []CartLine

// Add increments the quantity of an existing line, or appends the line.
// line.Quantity must be >= 1.
func (ls Lines) Add(line CartLine) (Lines, error) {
	line.Name = strings.TrimSpace(line.Name)
	if err := line.validate(); err != nil {
		return ls, err
	}

	out := ls.Clone()
	if idx := out.index(line.ProductID); idx >= 0 {
		out[idx].Quantity += line.Quantity
		return out, nil
	}
	return append(out, line), nil
}

// Remove filters out productID. Absent products are ignored.
func (ls Lines) Remove(productID int64) Lines {
	out := make(Lines, 0, len(ls))
	for _, l := range ls {
		if l.ProductID == productID {
			continue
		}
		out = append(out, l)
	}
	return out
}

// SetQuantity sets the quantity of productID.
// qty < 1 is a no-op (the line is NOT removed), as is an absent product.
func (ls Lines) SetQuantity(productID int64, qty int) Lines {
	out := ls.Clone()
	if qty < 1 {
		return out
	}
	if idx := out.index(productID); idx >= 0 {
		out[idx].Quantity = qty
	}
	return out
}

// Find returns the line for productID.
func (ls Lines) Find(productID int64) (CartLine, bool) {
	if idx := ls.index(productID); idx >= 0 {
		return ls[idx], true
	}
	return CartLine{}, false
}

// Total is Σ(unitPrice × quantity).
func (ls Lines) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range ls {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemCount is Σ(quantity).
func (ls Lines) ItemCount() int {
	n := 0
	for _, l := range ls {
		n += l.Quantity
	}
	return n
}

// Clone returns a copy that never aliases the receiver. nil clones to an empty list.
func (ls Lines) Clone() Lines {
	out := make(Lines, len(ls))
	copy(out, ls)
	return out
}

func (ls Lines) index(productID int64) int {
	for i := range ls {
		if ls[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Normalize merges duplicate ProductIDs (summing quantities, first occurrence
// keeps its position and snapshot) and drops lines that can never be valid.
// Used on data read from storage we do not fully control.
func Normalize(src []CartLine) Lines {
	out := make(Lines, 0, len(src))
	for _, l := range src {
		if l.ProductID <= 0 || l.Quantity < 1 {
			continue
		}
		if idx := out.index(l.ProductID); idx >= 0 {
			out[idx].Quantity += l.Quantity
			continue
		}
		out = append(out, l)
	}
	return out
}

// Snapshot is the backend's view of an authenticated cart.
// Total is what the backend reported; callers should use Lines.Total().
type Snapshot struct {
	Lines Lines
	Total decimal.Decimal
}
