package payments

import (
	"context"
	"fmt"
	"sync"
)

// FakeGateway is a deterministic in-memory Gateway for tests and local runs
// without Kaspi credentials. Tokens derive from the order id, and the status
// reported for every token is whatever State is set to.
type FakeGateway struct {
	mu sync.Mutex

	// State is returned by CheckStatus for every token.
	State PaymentState
	// CreateErr, when set, makes CreateInvoice fail.
	CreateErr error

	createCalls int
	statusCalls int
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{State: StatePending}
}

func (f *FakeGateway) CreateInvoice(_ context.Context, orderID uint, _ float64) (Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.CreateErr != nil {
		return Invoice{}, f.CreateErr
	}
	token := fmt.Sprintf("test-qr-token-%d", orderID)
	return Invoice{
		Token:      token,
		PaymentURL: "https://kaspi.kz/pay/" + token,
	}, nil
}

func (f *FakeGateway) CheckStatus(_ context.Context, _ string) PaymentState {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	return f.State
}

// StatusCalls reports how many times CheckStatus ran.
func (f *FakeGateway) StatusCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

// CreateCalls reports how many times CreateInvoice ran.
func (f *FakeGateway) CreateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls
}

// SetState changes the status reported for subsequent checks.
func (f *FakeGateway) SetState(state PaymentState) {
	f.mu.Lock()
	f.State = state
	f.mu.Unlock()
}
