package services

import (
	"context"
	"errors"
	"testing"

	"coinledger/internal/models"
)

func TestAdminAdjustAward(t *testing.T) {
	m := newMemStores()
	m.seedBalance("user-1", 5)
	ledger, _, _ := newMemLedger(m)

	created, err := ledger.AdminAdjust(context.Background(), AdminAdjustRequest{
		AdminID:     "admin-1",
		UserID:      "user-1",
		Amount:      30,
		Description: "contest prize",
	})
	if err != nil {
		t.Fatalf("award failed: %v", err)
	}
	if created.Type != models.TypeEarn || created.Reason != models.ReasonAdminAward {
		t.Fatalf("unexpected award transaction: %+v", created)
	}
	if created.BalanceAfter != 35 {
		t.Fatalf("expected balance 35, got %d", created.BalanceAfter)
	}
	if created.RelatedUserID == nil || *created.RelatedUserID != "admin-1" {
		t.Fatalf("award not linked to admin: %+v", created)
	}
	if len(m.audits) != 1 || m.audits[0].action != "award_coins" {
		t.Fatalf("award not audited: %+v", m.audits)
	}
}

func TestAdminAdjustDeductBelowZero(t *testing.T) {
	m := newMemStores()
	m.seedBalance("user-1", 35)
	ledger, _, _ := newMemLedger(m)

	created, err := ledger.AdminAdjust(context.Background(), AdminAdjustRequest{
		AdminID:     "admin-1",
		UserID:      "user-1",
		Amount:      100,
		Description: "penalty",
		Deduct:      true,
	})
	if err != nil {
		t.Fatalf("deduct failed: %v", err)
	}
	if created.Type != models.TypeSpend || created.Reason != models.ReasonAdminDeduct {
		t.Fatalf("unexpected deduct transaction: %+v", created)
	}
	if created.BalanceAfter != -65 {
		t.Fatalf("expected balance -65, got %d", created.BalanceAfter)
	}
	if len(m.audits) != 1 || m.audits[0].action != "deduct_coins" {
		t.Fatalf("deduct not audited: %+v", m.audits)
	}
}

func TestAdminAdjustRejectsNonPositiveAmount(t *testing.T) {
	m := newMemStores()
	m.seedBalance("user-1", 0)
	ledger, _, _ := newMemLedger(m)

	_, err := ledger.AdminAdjust(context.Background(), AdminAdjustRequest{
		AdminID: "admin-1",
		UserID:  "user-1",
		Amount:  0,
	})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
