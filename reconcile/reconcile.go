// Package reconcile converges local order state with the payment authority.
// It is polling-driven: a reconciliation runs only when a client asks for an
// order's status, never from a background sweep. Orders nobody polls stay
// pending; that is the documented behavior, not a bug.
package reconcile

import (
	"context"
	"sync"

	"github.com/socialcoffee/coffee-api/ledger"
	"github.com/socialcoffee/coffee-api/models"
	"github.com/socialcoffee/coffee-api/payments"
)

// Notifier is told about orders the coordinator just settled as paid.
type Notifier interface {
	OrderPaid(order models.Order)
}

type StatusView struct {
	OrderID    uint               `json:"order_id"`
	Status     models.OrderStatus `json:"status"`
	PaymentURL string             `json:"payment_url"`
}

type Coordinator struct {
	ledger   *ledger.Ledger
	gateway  payments.Gateway
	notifier Notifier

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// New builds a coordinator. notifier may be nil.
func New(l *ledger.Ledger, gateway payments.Gateway, notifier Notifier) *Coordinator {
	return &Coordinator{
		ledger:   l,
		gateway:  gateway,
		notifier: notifier,
		locks:    make(map[uint]*sync.Mutex),
	}
}

// Reconcile returns the order's current status view, first converging it
// with the gateway when the order is still pending. Settled orders
// short-circuit without any gateway call, which also guarantees the bonus
// can never be credited twice. Concurrent reconciliations of the same order
// serialize on a per-order lock.
func (c *Coordinator) Reconcile(ctx context.Context, orderID uint) (StatusView, error) {
	lock := c.lockFor(orderID)
	lock.Lock()
	defer lock.Unlock()

	order, err := c.ledger.Get(ctx, orderID)
	if err != nil {
		return StatusView{}, err
	}

	if order.Status.Settled() {
		defer c.forget(orderID)
		return view(order), nil
	}
	if order.PaymentToken == "" {
		return view(order), nil
	}

	// A timed-out or failed check reports pending, leaving the order as-is.
	if c.gateway.CheckStatus(ctx, order.PaymentToken) != payments.StatePaid {
		return view(order), nil
	}

	order, err = c.ledger.MarkPaid(ctx, orderID)
	if err != nil {
		return StatusView{}, err
	}
	defer c.forget(orderID)
	if c.notifier != nil {
		c.notifier.OrderPaid(*order)
	}
	return view(order), nil
}

func (c *Coordinator) lockFor(orderID uint) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[orderID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[orderID] = lock
	}
	return lock
}

// forget drops a settled order's lock entry so the map does not grow with
// every order ever polled. A straggler still holding the old mutex is
// harmless: settled orders only take the read short-circuit, and the ledger's
// compare-and-swap makes crediting safe regardless.
func (c *Coordinator) forget(orderID uint) {
	c.mu.Lock()
	delete(c.locks, orderID)
	c.mu.Unlock()
}

func view(order *models.Order) StatusView {
	return StatusView{
		OrderID:    order.ID,
		Status:     order.Status,
		PaymentURL: order.PaymentURL,
	}
}
