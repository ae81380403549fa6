package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"coinledger/internal/models"
)

func seedCompletedSpend(m *memStores, id, userID string, amount, balanceBefore int64) {
	m.seedTransaction(newSpendInput(id, userID, amount, balanceBefore), nowMinusDays(0))
}

func TestRefundCreditsFullAmount(t *testing.T) {
	m := newMemStores()
	m.seedBalance("user-1", 25)
	seedCompletedSpend(m, "tx-1", "user-1", 10, 35)
	ledger, hub, _ := newMemLedger(m)

	refund, err := ledger.Refund(context.Background(), RefundRequest{
		AdminID:       "admin-1",
		TransactionID: "tx-1",
	})
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	if refund.Type != models.TypeRefund || refund.Amount != 10 {
		t.Fatalf("unexpected refund transaction: %+v", refund)
	}
	if refund.BalanceBefore != 25 || refund.BalanceAfter != 35 {
		t.Fatalf("unexpected refund snapshots: before=%d after=%d", refund.BalanceBefore, refund.BalanceAfter)
	}
	var metadata map[string]string
	if err := json.Unmarshal([]byte(refund.Metadata), &metadata); err != nil {
		t.Fatalf("bad refund metadata: %v", err)
	}
	if metadata["original_transaction_id"] != "tx-1" {
		t.Fatalf("refund not linked to original: %v", metadata)
	}
	if len(m.audits) != 1 || m.audits[0].action != "refund_transaction" {
		t.Fatalf("refund not audited: %+v", m.audits)
	}
	if len(hub.updates) != 1 || hub.updates[0].Balance != 35 {
		t.Fatalf("unexpected hub updates: %+v", hub.updates)
	}
}

func TestRefundTwiceRejected(t *testing.T) {
	m := newMemStores()
	m.seedBalance("user-1", 25)
	seedCompletedSpend(m, "tx-1", "user-1", 10, 35)
	ledger, _, _ := newMemLedger(m)

	if _, err := ledger.Refund(context.Background(), RefundRequest{AdminID: "admin-1", TransactionID: "tx-1"}); err != nil {
		t.Fatalf("first refund failed: %v", err)
	}
	_, err := ledger.Refund(context.Background(), RefundRequest{AdminID: "admin-2", TransactionID: "tx-1"})
	if !errors.Is(err, ErrAlreadyRefunded) {
		t.Fatalf("expected ErrAlreadyRefunded, got %v", err)
	}
	if got := m.balances["user-1"].Balance; got != 35 {
		t.Fatalf("duplicate refund moved the balance: %d", got)
	}
}

func TestRefundConcurrentDuplicates(t *testing.T) {
	m := newMemStores()
	m.seedBalance("user-1", 0)
	seedCompletedSpend(m, "tx-1", "user-1", 10, 10)
	ledger, _, _ := newMemLedger(m)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Refund(context.Background(), RefundRequest{AdminID: "admin-1", TransactionID: "tx-1"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadyRefunded):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one refund, got %d", succeeded)
	}
	if got := m.balances["user-1"].Balance; got != 10 {
		t.Fatalf("expected balance 10 after single refund, got %d", got)
	}
}

func TestRefundRejectsNonSpend(t *testing.T) {
	m := newMemStores()
	m.seedBalance("user-1", 50)
	earn := newSpendInput("tx-earn", "user-1", 50, 0)
	earn.Type = models.TypeEarn
	earn.BalanceAfter = 50
	m.seedTransaction(earn, nowMinusDays(0))
	ledger, _, _ := newMemLedger(m)

	_, err := ledger.Refund(context.Background(), RefundRequest{AdminID: "admin-1", TransactionID: "tx-earn"})
	if !errors.Is(err, ErrNotRefundable) {
		t.Fatalf("expected ErrNotRefundable, got %v", err)
	}
}

func TestRefundRejectsPendingSpend(t *testing.T) {
	m := newMemStores()
	m.seedBalance("user-1", 50)
	pending := newSpendInput("tx-pending", "user-1", 10, 50)
	pending.Status = models.StatusPending
	pending.BalanceAfter = 50
	m.seedTransaction(pending, nowMinusDays(0))
	ledger, _, _ := newMemLedger(m)

	_, err := ledger.Refund(context.Background(), RefundRequest{AdminID: "admin-1", TransactionID: "tx-pending"})
	if !errors.Is(err, ErrNotRefundable) {
		t.Fatalf("expected ErrNotRefundable, got %v", err)
	}
}

func TestRefundUnknownTransaction(t *testing.T) {
	ledger, _, _ := newMemLedger(newMemStores())
	_, err := ledger.Refund(context.Background(), RefundRequest{AdminID: "admin-1", TransactionID: "missing"})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
