package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"coinledger/internal/models"
	"coinledger/internal/policy"
	"coinledger/internal/store"

	"github.com/jmoiron/sqlx"
)

type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
	Approve(ctx context.Context, tx store.Execer, userID string) (int64, error)
}

// ApproveAccount approves a registered account and funds the signup bonus in
// the same transaction. Approval is the funding moment, not registration, so
// unapproved duplicate registrations never earn anything. The one-shot
// approval flag flip doubles as the bonus guard.
func (s *Ledger) ApproveAccount(ctx context.Context, adminID, userID string) (models.CoinTransaction, error) {
	started := time.Now()
	var created models.CoinTransaction
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		changed, err := s.users.Approve(ctx, tx, userID)
		if err != nil {
			return err
		}
		if changed == 0 {
			exists, err := s.users.Exists(ctx, userID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrAccountNotFound
			}
			return ErrAlreadyApproved
		}
		created, err = s.CreateTransactionTx(ctx, tx, CreateTransactionRequest{
			UserID:        userID,
			Type:          models.TypeEarn,
			Amount:        policy.SignupBonus,
			Reason:        models.ReasonSignupBonus,
			Description:   "Welcome bonus on account approval",
			RelatedUserID: &adminID,
		})
		if err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"bonus_transaction_id": created.ID,
		})
		return s.audit.Log(ctx, tx, adminID, "approve_account", "user", userID, string(data))
	})
	if err != nil {
		return models.CoinTransaction{}, err
	}
	s.published(created, time.Since(started))
	return created, nil
}

// ClaimDailyBonus grants the daily login bonus when more than the policy
// window has passed since the previous grant. The eligibility read happens
// under the balance row lock, so concurrent claims cannot both pass.
func (s *Ledger) ClaimDailyBonus(ctx context.Context, userID string) (models.CoinTransaction, error) {
	started := time.Now()
	var created models.CoinTransaction
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		balance, err := s.balances.GetForUpdate(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAccountNotFound
			}
			return err
		}
		now := time.Now().UTC()
		if balance.LastDailyBonusAt != nil {
			eligibleAt := balance.LastDailyBonusAt.Add(policy.DailyBonusWindowHours * time.Hour)
			if now.Before(eligibleAt) {
				return ErrBonusNotYetAvailable
			}
		}
		created, err = s.CreateTransactionTx(ctx, tx, CreateTransactionRequest{
			UserID:      userID,
			Type:        models.TypeEarn,
			Amount:      policy.DailyBonus,
			Reason:      models.ReasonDailyLogin,
			Description: "Daily login bonus",
		})
		if err != nil {
			return err
		}
		return s.balances.StampDailyBonus(ctx, tx, userID, now)
	})
	if err != nil {
		return models.CoinTransaction{}, err
	}
	s.published(created, time.Since(started))
	return created, nil
}
