package services

import (
	"context"
	"testing"
	"time"

	"coinledger/internal/models"
)

func TestPurgeOldTransactions(t *testing.T) {
	m := newMemStores()
	m.seedBalance("user-1", 0)
	m.seedTransaction(newSpendInput("tx-old", "user-1", 5, 10), nowMinusDays(400))
	m.seedTransaction(newSpendInput("tx-recent", "user-1", 5, 5), nowMinusDays(10))
	stalePending := newSpendInput("tx-old-pending", "user-1", 5, 0)
	stalePending.Type = models.TypePurchase
	stalePending.Status = models.StatusPending
	stalePending.BalanceAfter = 0
	m.seedTransaction(stalePending, nowMinusDays(400))
	ledger, _, _ := newMemLedger(m)

	purged, err := ledger.PurgeOldTransactions(context.Background(), 365*24*time.Hour)
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged row, got %d", purged)
	}
	if _, err := ledger.transactions.GetByID(context.Background(), "tx-old"); err == nil {
		t.Fatalf("old completed row survived the purge")
	}
	if _, err := ledger.transactions.GetByID(context.Background(), "tx-recent"); err != nil {
		t.Fatalf("recent row purged: %v", err)
	}
	// Pending rows are kept whatever their age; only an admin decision
	// settles them.
	if _, err := ledger.transactions.GetByID(context.Background(), "tx-old-pending"); err != nil {
		t.Fatalf("pending row purged: %v", err)
	}
	if got := m.balances["user-1"].Balance; got != 0 {
		t.Fatalf("purge touched the balance: %d", got)
	}
}

func TestRetentionSweeperStopsOnCancel(t *testing.T) {
	m := newMemStores()
	ledger, _, _ := newMemLedger(m)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ledger.RunRetentionSweeper(ctx, time.Hour, 365*24*time.Hour)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("sweeper did not stop on context cancel")
	}
}
