// internal/adapters/in/http/handler/order_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	orderdom "storefront/internal/domain/order"
)

// OrderHandler serves the logged-in shopper's order history.
type OrderHandler struct {
	sessions SessionResolver
}

func NewOrderHandler(sessions SessionResolver) *OrderHandler {
	return &OrderHandler{sessions: sessions}
}

type orderItemDTO struct {
	ProductID int64       `json:"productId"`
	Name      string      `json:"name"`
	Image     string      `json:"image"`
	Price     json.Number `json:"price"`
	Quantity  int         `json:"quantity"`
	Subtotal  json.Number `json:"subtotal"`
}

type orderDTO struct {
	ID              string         `json:"id"`
	CreatedAt       *time.Time     `json:"createdAt,omitempty"`
	Status          string         `json:"status"`
	Total           json.Number    `json:"total"`
	Items           []orderItemDTO `json:"items"`
	PaymentMethod   string         `json:"paymentMethod,omitempty"`
	PaymentStatus   string         `json:"paymentStatus,omitempty"`
	ShippingAddress string         `json:"shippingAddress,omitempty"`
	CustomerName    string         `json:"customerName,omitempty"`
	Email           string         `json:"email,omitempty"`
	Phone           string         `json:"phone,omitempty"`
	CancelledBy     string         `json:"cancelledBy,omitempty"`
	CanCancel       bool           `json:"canCancel"`
	CanReturn       bool           `json:"canReturn"`
}

func toOrderDTOs(orders []orderdom.Order) []orderDTO {
	out := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		items := make([]orderItemDTO, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, orderItemDTO{
				ProductID: it.ProductID,
				Name:      it.Name,
				Image:     it.ImageRef,
				Price:     money(it.UnitPrice),
				Quantity:  it.Quantity,
				Subtotal:  money(it.Subtotal()),
			})
		}
		dto := orderDTO{
			ID:              o.ID,
			Status:          string(o.Status),
			Total:           money(o.Total),
			Items:           items,
			PaymentMethod:   o.PaymentMethod,
			PaymentStatus:   o.PaymentStatus,
			ShippingAddress: o.ShippingAddress,
			CustomerName:    o.CustomerName,
			Email:           o.Email,
			Phone:           o.Phone,
			CancelledBy:     o.CancelledBy,
			CanCancel:       o.CanCancel(),
			CanReturn:       o.CanReturn(),
		}
		if !o.CreatedAt.IsZero() {
			t := o.CreatedAt
			dto.CreatedAt = &t
		}
		out = append(out, dto)
	}
	return out
}

func (h *OrderHandler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	s, ok := session(w, r, h.sessions)
	if !ok {
		return nil, false
	}
	if s.Orders == nil {
		writeErr(w, http.StatusServiceUnavailable, "order history is not available")
		return nil, false
	}
	return s, true
}

// List: GET /orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeOrders(w, r, s, "")
}

// Cancel: PUT /orders/{orderId}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Orders.Cancel(r.Context(), mux.Vars(r)["orderId"]); err != nil {
		writeUsecaseErr(w, err)
		return
	}
	h.writeOrders(w, r, s, "order cancelled")
}

// Return: PUT /orders/{orderId}/return
func (h *OrderHandler) Return(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Orders.Return(r.Context(), mux.Vars(r)["orderId"]); err != nil {
		writeUsecaseErr(w, err)
		return
	}
	h.writeOrders(w, r, s, "return requested")
}

// writeOrders answers with the fresh order list. After a successful action a
// failed re-read is reported as a warning, not as an error.
func (h *OrderHandler) writeOrders(w http.ResponseWriter, r *http.Request, s *Session, message string) {
	orders, err := s.Orders.MyOrders(r.Context())
	if err != nil && message == "" {
		writeUsecaseErr(w, err)
		return
	}

	resp := map[string]any{"orders": toOrderDTOs(orders)}
	if message != "" {
		resp["message"] = message
	}
	if err != nil {
		resp["warning"] = "order list could not be refreshed"
	}
	writeJSON(w, http.StatusOK, resp)
}
