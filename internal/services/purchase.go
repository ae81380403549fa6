package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coinledger/internal/models"
	"coinledger/internal/policy"

	"github.com/jmoiron/sqlx"
)

type PurchaseResult struct {
	Transaction models.CoinTransaction `json:"transaction"`
	PaymentID   string                 `json:"payment_id"`
	Succeeded   bool                   `json:"payment_succeeded"`
}

// InitiatePurchase charges the gateway and records a pending purchase.
// Whatever the gateway reports, no coins move: the pending row has
// balance_before == balance_after and stays inert until an admin verifies
// the payment and promotes it.
func (s *Ledger) InitiatePurchase(ctx context.Context, userID, packageID string) (PurchaseResult, error) {
	pkg, ok := policy.PackageByID(packageID)
	if !ok {
		return PurchaseResult{}, ErrUnknownPackage
	}
	charge, err := s.gateway.Charge(ctx, userID, pkg.PriceMinorUnits)
	if err != nil {
		return PurchaseResult{}, err
	}
	created, err := s.CreateTransaction(ctx, CreateTransactionRequest{
		UserID:      userID,
		Type:        models.TypePurchase,
		Amount:      pkg.Coins + pkg.BonusCoins,
		Reason:      models.ReasonCoinPurchasePending,
		Description: fmt.Sprintf("Coin purchase (%s package), awaiting payment verification", pkg.ID),
		Status:      models.StatusPending,
		Metadata: map[string]string{
			"payment_id":      charge.PaymentID,
			"package_id":      pkg.ID,
			"gateway_outcome": gatewayOutcome(charge.Succeeded),
		},
	})
	if err != nil {
		return PurchaseResult{}, err
	}
	return PurchaseResult{
		Transaction: created,
		PaymentID:   charge.PaymentID,
		Succeeded:   charge.Succeeded,
	}, nil
}

// PromotePurchase converts a pending purchase into coins. The credit is a
// new completed transaction linked back to the pending row; the pending
// row's status flip is bookkeeping only. The row lock on the pending
// transaction keeps two admins from promoting it twice.
func (s *Ledger) PromotePurchase(ctx context.Context, adminID, transactionID string) (models.CoinTransaction, error) {
	started := time.Now()
	var created models.CoinTransaction
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		pending, err := s.transactions.GetForUpdate(ctx, tx, transactionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAccountNotFound
			}
			return err
		}
		if pending.Status != models.StatusPending || pending.Type != models.TypePurchase {
			return ErrNotPending
		}
		created, err = s.CreateTransactionTx(ctx, tx, CreateTransactionRequest{
			UserID:        pending.UserID,
			Type:          models.TypePurchase,
			Amount:        pending.Amount,
			Reason:        models.ReasonCoinPurchase,
			Description:   "Coin purchase confirmed",
			RelatedUserID: &adminID,
			Metadata: map[string]string{
				"original_transaction_id": pending.ID,
			},
		})
		if err != nil {
			return err
		}
		if err := s.transactions.UpdateStatus(ctx, tx, pending.ID, models.StatusCompleted); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"pending_transaction_id": pending.ID,
			"credit_transaction_id":  created.ID,
		})
		return s.audit.Log(ctx, tx, adminID, "promote_purchase", "coin_transaction", created.ID, string(data))
	})
	if err != nil {
		return models.CoinTransaction{}, err
	}
	s.published(created, time.Since(started))
	return created, nil
}

func gatewayOutcome(succeeded bool) string {
	if succeeded {
		return "success"
	}
	return "failure"
}
