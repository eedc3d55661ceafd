// internal/application/usecase/order_usecase.go
package usecase

import (
	"context"
	"sort"

	log "github.com/sirupsen/logrus"

	orderdom "storefront/internal/domain/order"
	sessiondom "storefront/internal/domain/session"
	"storefront/internal/infra/metrics"
)

// OrderSession yields the credential the order history is read with.
type OrderSession interface {
	Credential() (sessiondom.Credential, bool)
}

// OrderUsecase lists the logged-in shopper's orders and forwards cancel and
// return requests. Eligibility is decided by the backend; CanCancel/CanReturn
// only drive what the UI offers.
type OrderUsecase struct {
	session OrderSession
	tracker orderdom.Tracker
	metrics *metrics.Metrics
}

func NewOrderUsecase(session OrderSession, tracker orderdom.Tracker, m *metrics.Metrics) *OrderUsecase {
	return &OrderUsecase{session: session, tracker: tracker, metrics: m}
}

func (uc *OrderUsecase) token() (string, error) {
	if uc == nil || uc.session == nil || uc.tracker == nil {
		return "", ErrCartManagerNotConfigured
	}
	cred, ok := uc.session.Credential()
	if !ok {
		return "", orderdom.ErrLoginRequired
	}
	return cred.Token, nil
}

// MyOrders returns the shopper's orders, newest first.
func (uc *OrderUsecase) MyOrders(ctx context.Context) ([]orderdom.Order, error) {
	token, err := uc.token()
	if err != nil {
		return nil, err
	}

	orders, err := uc.tracker.List(ctx, token)
	uc.record("list", err)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (uc *OrderUsecase) Cancel(ctx context.Context, orderID string) error {
	return uc.act(ctx, "cancel", orderID)
}

func (uc *OrderUsecase) Return(ctx context.Context, orderID string) error {
	return uc.act(ctx, "return", orderID)
}

func (uc *OrderUsecase) act(ctx context.Context, action, orderID string) error {
	token, err := uc.token()
	if err != nil {
		return err
	}
	id, err := orderdom.ParseID(orderID)
	if err != nil {
		return err
	}

	if action == "cancel" {
		err = uc.tracker.Cancel(ctx, token, id)
	} else {
		err = uc.tracker.Return(ctx, token, id)
	}
	uc.record(action, err)
	if err != nil {
		log.Printf("[order_usecase] %s order %s failed: %v", action, id, err)
		return err
	}
	log.Printf("[order_usecase] %s order %s ok", action, id)
	return nil
}

func (uc *OrderUsecase) record(action string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	uc.metrics.OrderAction(action, result)
}
