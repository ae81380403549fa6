package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"coinledger/internal/models"
)

func TestTransactionStoreCreate(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO coin_transactions") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 12 || args[0] != "tx-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			if args[6] != int64(40) || args[7] != int64(30) {
				t.Fatalf("snapshots not passed through: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewTransactionStore(stubDB{})
	err := store.Create(ctx, execer, TransactionInput{
		ID:            "tx-1",
		UserID:        "user-1",
		Type:          models.TypeSpend,
		Amount:        10,
		BalanceBefore: 40,
		BalanceAfter:  30,
		Metadata:      "{}",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionStoreUpdateStatus(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "UPDATE coin_transactions") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != models.StatusCompleted || args[1] != "tx-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewTransactionStore(stubDB{})
	if err := store.UpdateStatus(ctx, execer, "tx-1", models.StatusCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionStoreGetForUpdateLocksRow(t *testing.T) {
	ctx := context.Background()
	getter := stubGetter{
		getFn: func(_ context.Context, _ any, query string, args ...any) error {
			if !strings.Contains(query, "FOR UPDATE") {
				t.Fatalf("promotion read must lock the row: %s", query)
			}
			if args[0] != "tx-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	}
	store := NewTransactionStore(stubDB{})
	if _, err := store.GetForUpdate(ctx, getter, "tx-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionStoreFindRefundOf(t *testing.T) {
	ctx := context.Background()
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "metadata->>'original_transaction_id'") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != models.TypeRefund || args[1] != "tx-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*string) = "tx-refund"
			return nil
		},
	}
	store := NewTransactionStore(stubDB{})
	id, err := store.FindRefundOf(ctx, getter, "tx-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "tx-refund" {
		t.Fatalf("unexpected id: %s", id)
	}
}

func TestTransactionStoreListByUserFilters(t *testing.T) {
	ctx := context.Background()
	store := NewTransactionStore(stubDB{
		selectFn: func(_ context.Context, _ any, query string, args ...any) error {
			if !strings.Contains(query, "AND type = $2") || !strings.Contains(query, "AND reason = $3") {
				t.Fatalf("filters not applied: %s", query)
			}
			if !strings.Contains(query, "ORDER BY created_at DESC, id DESC") {
				t.Fatalf("history must be newest-first with a stable tiebreak: %s", query)
			}
			want := []any{"user-1", models.TypeSpend, models.ReasonBoostListing, 20, 40}
			if len(args) != len(want) {
				t.Fatalf("unexpected args: %#v", args)
			}
			for i := range want {
				if args[i] != want[i] {
					t.Fatalf("arg %d: got %#v, want %#v", i, args[i], want[i])
				}
			}
			return nil
		},
	})
	_, err := store.ListByUser(ctx, "user-1", HistoryFilter{
		Type:   models.TypeSpend,
		Reason: models.ReasonBoostListing,
		Limit:  20,
		Offset: 40,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionStoreListByUserNoFilters(t *testing.T) {
	ctx := context.Background()
	store := NewTransactionStore(stubDB{
		selectFn: func(_ context.Context, _ any, query string, args ...any) error {
			if strings.Contains(query, "AND type") || strings.Contains(query, "AND reason") {
				t.Fatalf("unexpected filters: %s", query)
			}
			if len(args) != 3 {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	})
	if _, err := store.ListByUser(ctx, "user-1", HistoryFilter{Limit: 20}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionStoreDeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	cutoff := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store := NewTransactionStore(stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "DELETE FROM coin_transactions") {
				t.Fatalf("unexpected query: %s", query)
			}
			// Only completed rows age out; pending rows wait for an admin.
			if args[0] != models.StatusCompleted || args[1] != cutoff {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 7}, nil
		},
	})
	deleted, err := store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 7 {
		t.Fatalf("unexpected count: %d", deleted)
	}
}
