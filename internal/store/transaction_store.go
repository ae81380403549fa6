package store

import (
	"context"
	"fmt"
	"time"

	"coinledger/internal/models"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

type TransactionInput struct {
	ID               string
	UserID           string
	Type             string
	Reason           string
	Status           string
	Amount           int64
	BalanceBefore    int64
	BalanceAfter     int64
	Description      string
	RelatedProductID *string
	RelatedUserID    *string
	Metadata         string
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO coin_transactions
			(id, user_id, type, reason, status, amount, balance_before, balance_after,
			 description, related_product_id, related_user_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, input.ID, input.UserID, input.Type, input.Reason, input.Status, input.Amount,
		input.BalanceBefore, input.BalanceAfter, input.Description,
		input.RelatedProductID, input.RelatedUserID, input.Metadata)
	return err
}

const transactionColumns = `
	id, user_id, type, reason, status, amount, balance_before, balance_after,
	description, related_product_id, related_user_id, metadata, created_at`

func (s *TransactionStore) GetByID(ctx context.Context, id string) (models.CoinTransaction, error) {
	var row models.CoinTransaction
	err := s.db.GetContext(ctx, &row, `
		SELECT `+transactionColumns+`
		FROM coin_transactions
		WHERE id = $1
	`, id)
	if err != nil {
		return models.CoinTransaction{}, err
	}
	return row, nil
}

// GetForUpdate locks a single transaction row, used by the pending-purchase
// promotion so two admins cannot promote the same row twice.
func (s *TransactionStore) GetForUpdate(ctx context.Context, tx Getter, id string) (models.CoinTransaction, error) {
	var row models.CoinTransaction
	err := tx.GetContext(ctx, &row, `
		SELECT `+transactionColumns+`
		FROM coin_transactions
		WHERE id = $1
		FOR UPDATE
	`, id)
	if err != nil {
		return models.CoinTransaction{}, err
	}
	return row, nil
}

func (s *TransactionStore) UpdateStatus(ctx context.Context, tx Execer, id, status string) error {
	_, err := tx.ExecContext(ctx, `UPDATE coin_transactions SET status = $1 WHERE id = $2`, status, id)
	return err
}

// FindRefundOf reports the id of an existing refund transaction linked to
// the given original transaction, or sql.ErrNoRows. Must run inside the same
// transaction as the refund write so the duplicate check and the insert are
// one atomic step.
func (s *TransactionStore) FindRefundOf(ctx context.Context, tx Getter, originalID string) (string, error) {
	var id string
	err := tx.GetContext(ctx, &id, `
		SELECT id
		FROM coin_transactions
		WHERE type = $1 AND metadata->>'original_transaction_id' = $2
	`, models.TypeRefund, originalID)
	return id, err
}

type HistoryFilter struct {
	Type   string
	Reason string
	Limit  int
	Offset int
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID string, filter HistoryFilter) ([]models.CoinTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM coin_transactions
		WHERE user_id = $1
	`
	args := []any{userID}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Reason != "" {
		args = append(args, filter.Reason)
		query += fmt.Sprintf(" AND reason = $%d", len(args))
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var rows []models.CoinTransaction
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransactionStore) CountByUser(ctx context.Context, userID string, filter HistoryFilter) (int64, error) {
	query := `SELECT COUNT(1) FROM coin_transactions WHERE user_id = $1`
	args := []any{userID}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Reason != "" {
		args = append(args, filter.Reason)
		query += fmt.Sprintf(" AND reason = $%d", len(args))
	}
	var count int64
	err := s.db.GetContext(ctx, &count, query, args...)
	return count, err
}

// DeleteOlderThan purges completed rows past the retention horizon. Balances
// are authoritative and never recomputed from history, so the purge is pure
// storage hygiene. Pending rows are kept; they may still be promoted.
func (s *TransactionStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM coin_transactions
		WHERE status = $1 AND created_at < $2
	`, models.StatusCompleted, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
