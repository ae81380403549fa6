package services

import (
	"context"
	"encoding/json"
	"time"

	"coinledger/internal/models"

	"github.com/jmoiron/sqlx"
)

type AdminAdjustRequest struct {
	AdminID     string
	UserID      string
	Amount      int64
	Description string
	// Deduct flips the adjustment to a spend. Admin deductions are never
	// balance-gated; the balance may go negative.
	Deduct bool
}

// AdminAdjust awards or deducts coins on behalf of an admin, audited in the
// same transaction as the balance change.
func (s *Ledger) AdminAdjust(ctx context.Context, req AdminAdjustRequest) (models.CoinTransaction, error) {
	started := time.Now()
	txType, reason, action := models.TypeEarn, models.ReasonAdminAward, "award_coins"
	if req.Deduct {
		txType, reason, action = models.TypeSpend, models.ReasonAdminDeduct, "deduct_coins"
	}
	var created models.CoinTransaction
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		created, err = s.CreateTransactionTx(ctx, tx, CreateTransactionRequest{
			UserID:        req.UserID,
			Type:          txType,
			Amount:        req.Amount,
			Reason:        reason,
			Description:   req.Description,
			RelatedUserID: &req.AdminID,
		})
		if err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"transaction_id": created.ID,
			"target_user_id": req.UserID,
		})
		return s.audit.Log(ctx, tx, req.AdminID, action, "coin_transaction", created.ID, string(data))
	})
	if err != nil {
		return models.CoinTransaction{}, err
	}
	s.published(created, time.Since(started))
	return created, nil
}
