// Package payments wraps the external payment provider. The real provider is
// out of scope; the simulated gateway returns an opaque payment id and an
// outcome the purchase workflow records but never trusts. Coins only move
// when an admin later verifies the payment and promotes the pending row.
package payments

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type ChargeResult struct {
	PaymentID string
	Succeeded bool
}

type Gateway interface {
	Charge(ctx context.Context, userID string, amountMinor int64) (ChargeResult, error)
}

type SimulatedGateway struct {
	// FailEvery makes every Nth charge report failure, for exercising the
	// abandoned-pending path. Zero means every charge succeeds.
	FailEvery int

	mu    sync.Mutex
	calls int
}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

func (g *SimulatedGateway) Charge(_ context.Context, _ string, _ int64) (ChargeResult, error) {
	g.mu.Lock()
	g.calls++
	succeeded := true
	if g.FailEvery > 0 && g.calls%g.FailEvery == 0 {
		succeeded = false
	}
	g.mu.Unlock()
	return ChargeResult{
		PaymentID: "sim_" + uuid.NewString(),
		Succeeded: succeeded,
	}, nil
}
