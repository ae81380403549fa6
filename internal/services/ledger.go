package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"coinledger/internal/db"
	"coinledger/internal/models"
	"coinledger/internal/payments"
	"coinledger/internal/store"
	"coinledger/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Ledger is the single choke point for balance changes. Every coin movement,
// whatever workflow triggered it, ends up in CreateTransactionTx under the
// per-user balance row lock.
type Ledger struct {
	txRunner     db.TxRunner
	users        UserDirectory
	balances     BalanceStore
	transactions TransactionStore
	audit        AuditStore
	gateway      Gateway
	hub          BalanceHub
	metrics      Metrics
}

type BalanceStore interface {
	Get(ctx context.Context, userID string) (models.CoinBalance, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.CoinBalance, error)
	Write(ctx context.Context, tx store.Execer, userID string, balance, earnedDelta, spentDelta int64) error
	StampDailyBonus(ctx context.Context, tx store.Execer, userID string, at time.Time) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	GetByID(ctx context.Context, id string) (models.CoinTransaction, error)
	GetForUpdate(ctx context.Context, tx store.Getter, id string) (models.CoinTransaction, error)
	UpdateStatus(ctx context.Context, tx store.Execer, id, status string) error
	FindRefundOf(ctx context.Context, tx store.Getter, originalID string) (string, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type BalanceHub interface {
	BroadcastBalance(userID string, update websocket.BalanceUpdate)
}

type Metrics interface {
	ObserveTransaction(txType, reason, status string, seconds float64)
}

type Gateway interface {
	Charge(ctx context.Context, userID string, amountMinor int64) (payments.ChargeResult, error)
}

func NewLedger(txRunner db.TxRunner, users UserDirectory, balances BalanceStore, transactions TransactionStore, audit AuditStore, gateway Gateway, hub BalanceHub, metrics Metrics) *Ledger {
	return &Ledger{
		txRunner:     txRunner,
		users:        users,
		balances:     balances,
		transactions: transactions,
		audit:        audit,
		gateway:      gateway,
		hub:          hub,
		metrics:      metrics,
	}
}

type CreateTransactionRequest struct {
	UserID           string
	Type             string
	Amount           int64
	Reason           string
	Description      string
	// Status defaults to completed. Pending transactions record intent
	// without touching the balance.
	Status string

	RelatedProductID *string
	RelatedUserID    *string
	Metadata         map[string]string
	// RequireSufficientBalance rejects a spend that would overdraw,
	// checked under the same row lock as the write. Cost-gated actions
	// (listing creation, boosts) set it; fee-on-sale never does.
	RequireSufficientBalance bool
}

// CreateTransaction runs the engine in its own storage transaction.
func (s *Ledger) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (models.CoinTransaction, error) {
	started := time.Now()
	var created models.CoinTransaction
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		created, err = s.CreateTransactionTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return models.CoinTransaction{}, err
	}
	s.published(created, time.Since(started))
	return created, nil
}

// CreateTransactionTx is the engine body, exposed so composite workflows
// (refunds, fees, bonuses, listing costs) can share one atomic scope with
// their guards. Callers are responsible for publishing the result after
// commit; the tx wrapper above does it for the simple path.
func (s *Ledger) CreateTransactionTx(ctx context.Context, tx store.Tx, req CreateTransactionRequest) (models.CoinTransaction, error) {
	if req.Amount <= 0 {
		return models.CoinTransaction{}, ErrInvalidAmount
	}
	delta, ok := models.SignedAmount(req.Type, req.Amount)
	if !ok {
		return models.CoinTransaction{}, ErrInvalidType
	}
	status := req.Status
	if status == "" {
		status = models.StatusCompleted
	}
	if status != models.StatusCompleted && status != models.StatusPending {
		return models.CoinTransaction{}, ErrInvalidStatus
	}

	balance, err := s.balances.GetForUpdate(ctx, tx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CoinTransaction{}, ErrAccountNotFound
		}
		return models.CoinTransaction{}, err
	}

	before := balance.Balance
	after := before
	if status == models.StatusCompleted {
		if req.RequireSufficientBalance && delta < 0 && before < req.Amount {
			return models.CoinTransaction{}, ErrInsufficientBalance
		}
		after = before + delta
		earnedDelta, spentDelta := int64(0), int64(0)
		if delta > 0 {
			earnedDelta = req.Amount
		} else {
			spentDelta = req.Amount
		}
		if err := s.balances.Write(ctx, tx, req.UserID, after, earnedDelta, spentDelta); err != nil {
			return models.CoinTransaction{}, err
		}
	}

	input := store.TransactionInput{
		ID:               uuid.NewString(),
		UserID:           req.UserID,
		Type:             req.Type,
		Reason:           req.Reason,
		Status:           status,
		Amount:           req.Amount,
		BalanceBefore:    before,
		BalanceAfter:     after,
		Description:      req.Description,
		RelatedProductID: req.RelatedProductID,
		RelatedUserID:    req.RelatedUserID,
		Metadata:         encodeMetadata(req.Metadata),
	}
	if err := s.transactions.Create(ctx, tx, input); err != nil {
		return models.CoinTransaction{}, err
	}
	return models.CoinTransaction{
		ID:               input.ID,
		UserID:           input.UserID,
		Type:             input.Type,
		Reason:           input.Reason,
		Status:           input.Status,
		Amount:           input.Amount,
		BalanceBefore:    input.BalanceBefore,
		BalanceAfter:     input.BalanceAfter,
		Description:      input.Description,
		RelatedProductID: input.RelatedProductID,
		RelatedUserID:    input.RelatedUserID,
		Metadata:         input.Metadata,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

func (s *Ledger) GetBalance(ctx context.Context, userID string) (models.CoinBalance, error) {
	balance, err := s.balances.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CoinBalance{}, ErrAccountNotFound
		}
		return models.CoinBalance{}, err
	}
	return balance, nil
}

// published reports a committed transaction to the hub and metrics.
func (s *Ledger) published(created models.CoinTransaction, took time.Duration) {
	s.metrics.ObserveTransaction(created.Type, created.Reason, created.Status, took.Seconds())
	if created.Status != models.StatusCompleted {
		return
	}
	s.hub.BroadcastBalance(created.UserID, websocket.BalanceUpdate{
		Balance:       created.BalanceAfter,
		TransactionID: created.ID,
		Type:          created.Type,
		Reason:        created.Reason,
	})
}

func encodeMetadata(metadata map[string]string) string {
	if len(metadata) == 0 {
		return "{}"
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}
