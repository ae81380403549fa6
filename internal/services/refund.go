package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"coinledger/internal/models"

	"github.com/jmoiron/sqlx"
)

type RefundRequest struct {
	AdminID       string
	TransactionID string
	Description   string
}

// Refund reverses a completed spend in full. The duplicate check and the
// refund write share one storage transaction, so issuing the same refund
// twice concurrently yields exactly one refund row and one ErrAlreadyRefunded.
func (s *Ledger) Refund(ctx context.Context, req RefundRequest) (models.CoinTransaction, error) {
	started := time.Now()
	original, err := s.transactions.GetByID(ctx, req.TransactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CoinTransaction{}, ErrAccountNotFound
		}
		return models.CoinTransaction{}, err
	}
	if original.Type != models.TypeSpend || original.Status != models.StatusCompleted {
		return models.CoinTransaction{}, ErrNotRefundable
	}

	description := req.Description
	if description == "" {
		description = "Refund of " + original.Reason
	}

	var created models.CoinTransaction
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.transactions.FindRefundOf(ctx, tx, original.ID); err == nil {
			return ErrAlreadyRefunded
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		var err error
		created, err = s.CreateTransactionTx(ctx, tx, CreateTransactionRequest{
			UserID:        original.UserID,
			Type:          models.TypeRefund,
			Amount:        original.Amount,
			Reason:        models.ReasonRefund,
			Description:   description,
			RelatedUserID: &req.AdminID,
			Metadata: map[string]string{
				"original_transaction_id": original.ID,
				"original_reason":         original.Reason,
			},
		})
		if err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"original_transaction_id": original.ID,
			"refund_transaction_id":   created.ID,
		})
		return s.audit.Log(ctx, tx, req.AdminID, "refund_transaction", "coin_transaction", created.ID, string(data))
	})
	if err != nil {
		return models.CoinTransaction{}, err
	}
	s.published(created, time.Since(started))
	return created, nil
}
