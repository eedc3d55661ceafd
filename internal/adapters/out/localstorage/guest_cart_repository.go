// internal/adapters/out/localstorage/guest_cart_repository.go
package localstorage

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	cartdom "storefront/internal/domain/cart"
)

// GuestCartRepository implements cart.GuestRepository on top of Storage.
//
// Stored format (key cart.GuestKey), unversioned:
//
//	[{"id":1,"name":"Sofa","price":100000,"quantity":2,"image":"/img/sofa.jpg"}]
type GuestCartRepository struct {
	storage Storage
	key     string
}

func NewGuestCartRepository(storage Storage) *GuestCartRepository {
	return &GuestCartRepository{storage: storage, key: cartdom.GuestKey}
}

type guestLineDoc struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
	Image    string      `json:"image"`
}

func (r *GuestCartRepository) Load(ctx context.Context) (cartdom.Lines, error) {
	if r == nil || r.storage == nil {
		return nil, errors.New("guest_cart_repository: storage is nil")
	}

	raw, ok, err := r.storage.GetItem(ctx, r.key)
	if err != nil {
		return nil, errors.Wrap(err, "guest_cart_repository: load")
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return cartdom.Lines{}, nil
	}

	var docs []guestLineDoc
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		return nil, errors.Wrapf(err, "guest_cart_repository: decode %s", r.key)
	}

	lines := make([]cartdom.CartLine, 0, len(docs))
	for _, d := range docs {
		price := decimal.Zero
		if s := strings.TrimSpace(d.Price.String()); s != "" {
			p, err := decimal.NewFromString(s)
			if err != nil {
				return nil, errors.Wrapf(err, "guest_cart_repository: price of product %d", d.ID)
			}
			price = p
		}
		lines = append(lines, cartdom.CartLine{
			ProductID: d.ID,
			Name:      d.Name,
			UnitPrice: price,
			Quantity:  d.Quantity,
			ImageRef:  d.Image,
		})
	}
	return cartdom.Normalize(lines), nil
}

func (r *GuestCartRepository) Save(ctx context.Context, lines cartdom.Lines) error {
	if r == nil || r.storage == nil {
		return errors.New("guest_cart_repository: storage is nil")
	}

	docs := make([]guestLineDoc, 0, len(lines))
	for _, l := range lines {
		docs = append(docs, guestLineDoc{
			ID:       l.ProductID,
			Name:     l.Name,
			Price:    json.Number(l.UnitPrice.String()),
			Quantity: l.Quantity,
			Image:    l.ImageRef,
		})
	}

	b, err := json.Marshal(docs)
	if err != nil {
		return errors.Wrap(err, "guest_cart_repository: encode")
	}
	return errors.Wrap(r.storage.SetItem(ctx, r.key, string(b)), "guest_cart_repository: save")
}

func (r *GuestCartRepository) Clear(ctx context.Context) error {
	if r == nil || r.storage == nil {
		return errors.New("guest_cart_repository: storage is nil")
	}
	return errors.Wrap(r.storage.RemoveItem(ctx, r.key), "guest_cart_repository: clear")
}
