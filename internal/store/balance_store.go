package store

import (
	"context"
	"time"

	"coinledger/internal/models"
)

type BalanceStore struct {
	db DB
}

func NewBalanceStore(db DB) *BalanceStore {
	return &BalanceStore{db: db}
}

func (s *BalanceStore) Create(ctx context.Context, tx Execer, userID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO coin_balances (user_id, balance, total_earned, total_spent)
		VALUES ($1, 0, 0, 0)
	`, userID)
	return err
}

func (s *BalanceStore) Get(ctx context.Context, userID string) (models.CoinBalance, error) {
	var row models.CoinBalance
	err := s.db.GetContext(ctx, &row, `
		SELECT user_id, balance, total_earned, total_spent, last_daily_bonus_at, updated_at
		FROM coin_balances
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return models.CoinBalance{}, err
	}
	return row, nil
}

// GetForUpdate takes the per-user row lock. Every balance mutation goes
// through this lock, which serializes concurrent transactions for the same
// user without blocking other users.
func (s *BalanceStore) GetForUpdate(ctx context.Context, tx Getter, userID string) (models.CoinBalance, error) {
	var row models.CoinBalance
	err := tx.GetContext(ctx, &row, `
		SELECT user_id, balance, total_earned, total_spent, last_daily_bonus_at, updated_at
		FROM coin_balances
		WHERE user_id = $1
		FOR UPDATE
	`, userID)
	if err != nil {
		return models.CoinBalance{}, err
	}
	return row, nil
}

func (s *BalanceStore) Write(ctx context.Context, tx Execer, userID string, balance, earnedDelta, spentDelta int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE coin_balances
		SET balance = $1,
		    total_earned = total_earned + $2,
		    total_spent = total_spent + $3,
		    updated_at = NOW()
		WHERE user_id = $4
	`, balance, earnedDelta, spentDelta, userID)
	return err
}

func (s *BalanceStore) StampDailyBonus(ctx context.Context, tx Execer, userID string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE coin_balances
		SET last_daily_bonus_at = $1, updated_at = NOW()
		WHERE user_id = $2
	`, at.UTC(), userID)
	return err
}
