// internal/adapters/in/http/handler/cart_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	cartdom "storefront/internal/domain/cart"
)

// CartHandler serves /cart for the device session.
type CartHandler struct {
	sessions SessionResolver
}

func NewCartHandler(sessions SessionResolver) *CartHandler {
	return &CartHandler{sessions: sessions}
}

type cartLineDTO struct {
	ProductID int64       `json:"productId"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Quantity  int         `json:"quantity"`
	Subtotal  json.Number `json:"subtotal"`
	Image     string      `json:"image"`
}

type cartDTO struct {
	Mode      string        `json:"mode"`
	Items     []cartLineDTO `json:"items"`
	Total     json.Number   `json:"total"`
	ItemCount int           `json:"itemCount"`
}

func toCartDTO(cart CartService) cartDTO {
	lines := cart.Lines()
	items := make([]cartLineDTO, 0, len(lines))
	for _, l := range lines {
		items = append(items, cartLineDTO{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     money(l.UnitPrice),
			Quantity:  l.Quantity,
			Subtotal:  money(l.Subtotal()),
			Image:     l.ImageRef,
		})
	}
	return cartDTO{
		Mode:      cart.Mode().String(),
		Items:     items,
		Total:     money(lines.Total()),
		ItemCount: lines.ItemCount(),
	}
}

// Get: GET /cart[?refresh=1]
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	if err := s.Cart.Start(r.Context()); err != nil {
		// the guest cart still renders (empty) when storage is unreadable
		log.Printf("[cart_handler] start: %v", err)
	}
	if r.URL.Query().Get("refresh") == "1" {
		if err := s.Cart.Reload(r.Context()); err != nil {
			writeUsecaseErr(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toCartDTO(s.Cart))
}

type addItemReq struct {
	ProductID int64       `json:"productId"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Quantity  *int        `json:"quantity"`
	Image     string      `json:"image"`
}

// AddItem: POST /cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	var req addItemReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	price := decimal.Zero
	if p := strings.TrimSpace(req.Price.String()); p != "" {
		d, err := decimal.NewFromString(p)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "price must be a number")
			return
		}
		price = d
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	line := cartdom.CartLine{
		ProductID: req.ProductID,
		Name:      strings.TrimSpace(req.Name),
		UnitPrice: price,
		Quantity:  qty,
		ImageRef:  strings.TrimSpace(req.Image),
	}
	if err := s.Cart.AddItem(r.Context(), line); err != nil {
		writeUsecaseErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartDTO(s.Cart))
}

type updateQtyReq struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity: PUT /cart/items/{productId}. quantity < 1 leaves the cart unchanged.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	id, ok := productIDVar(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid productId")
		return
	}

	var req updateQtyReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := s.Cart.UpdateQuantity(r.Context(), id, req.Quantity); err != nil {
		writeUsecaseErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartDTO(s.Cart))
}

// RemoveItem: DELETE /cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	id, ok := productIDVar(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid productId")
		return
	}

	if err := s.Cart.RemoveItem(r.Context(), id); err != nil {
		writeUsecaseErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartDTO(s.Cart))
}

// Clear: DELETE /cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	if err := s.Cart.ClearCart(r.Context()); err != nil {
		writeUsecaseErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartDTO(s.Cart))
}
