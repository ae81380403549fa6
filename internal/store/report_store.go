package store

import (
	"context"
	"time"

	"coinledger/internal/models"

	"github.com/lib/pq"
)

// ReportStore is the read-only reporting surface over balances and the
// transaction ledger. Nothing here writes.
type ReportStore struct {
	db DB
}

func NewReportStore(db DB) *ReportStore {
	return &ReportStore{db: db}
}

type CirculationSummary struct {
	TotalUsers              int64 `db:"total_users" json:"total_users"`
	TotalCoinsInCirculation int64 `db:"total_coins" json:"total_coins_in_circulation"`
	TotalTransactions       int64 `db:"total_transactions" json:"total_transactions"`
	TotalEarned             int64 `db:"total_earned" json:"total_earned"`
	TotalSpent              int64 `db:"total_spent" json:"total_spent"`
	TotalPurchased          int64 `db:"total_purchased" json:"total_purchased"`
}

func (s *ReportStore) CirculationSummary(ctx context.Context) (CirculationSummary, error) {
	var row CirculationSummary
	err := s.db.GetContext(ctx, &row, `
		SELECT
			(SELECT COUNT(1) FROM users WHERE is_approved = TRUE) AS total_users,
			(SELECT COALESCE(SUM(balance), 0) FROM coin_balances) AS total_coins,
			(SELECT COUNT(1) FROM coin_transactions) AS total_transactions,
			(SELECT COALESCE(SUM(amount), 0) FROM coin_transactions
				WHERE type = $1 AND status = $4) AS total_earned,
			(SELECT COALESCE(SUM(amount), 0) FROM coin_transactions
				WHERE type = $2 AND status = $4) AS total_spent,
			(SELECT COALESCE(SUM(amount), 0) FROM coin_transactions
				WHERE type = $3 AND status = $4) AS total_purchased
	`, models.TypeEarn, models.TypeSpend, models.TypePurchase, models.StatusCompleted)
	if err != nil {
		return CirculationSummary{}, err
	}
	return row, nil
}

type DailyActivityRow struct {
	Day    time.Time `db:"day" json:"day"`
	Type   string    `db:"type" json:"type"`
	Count  int64     `db:"count" json:"count"`
	Amount int64     `db:"amount" json:"amount"`
}

func (s *ReportStore) DailyActivity(ctx context.Context, days int) ([]DailyActivityRow, error) {
	var rows []DailyActivityRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT date_trunc('day', created_at) AS day,
		       type,
		       COUNT(1) AS count,
		       COALESCE(SUM(amount), 0) AS amount
		FROM coin_transactions
		WHERE status = $1 AND created_at >= NOW() - ($2 || ' days')::interval
		GROUP BY day, type
		ORDER BY day DESC, type
	`, models.StatusCompleted, days)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Fraud-signal rows are advisory reports for a human admin, never automatic
// enforcement.

type HighEarnerRow struct {
	UserID      string    `db:"user_id" json:"user_id"`
	Username    string    `db:"username" json:"username"`
	TotalEarned int64     `db:"total_earned" json:"total_earned"`
	SignedUpAt  time.Time `db:"signed_up_at" json:"signed_up_at"`
}

// HighEarners reports accounts with a large lifetime earn shortly after
// account creation.
func (s *ReportStore) HighEarners(ctx context.Context, minEarned int64, withinDays int) ([]HighEarnerRow, error) {
	var rows []HighEarnerRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT b.user_id, u.username, b.total_earned, u.created_at AS signed_up_at
		FROM coin_balances b
		JOIN users u ON u.id = b.user_id
		WHERE b.total_earned >= $1
		  AND u.created_at >= NOW() - ($2 || ' days')::interval
		ORDER BY b.total_earned DESC
	`, minEarned, withinDays)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type RapidSpenderRow struct {
	UserID     string `db:"user_id" json:"user_id"`
	Username   string `db:"username" json:"username"`
	SpentLast  int64  `db:"spent_last" json:"spent_last_24h"`
	SpendCount int64  `db:"spend_count" json:"spend_count"`
}

func (s *ReportStore) RapidSpenders(ctx context.Context, minSpent int64) ([]RapidSpenderRow, error) {
	var rows []RapidSpenderRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT t.user_id, u.username,
		       COALESCE(SUM(t.amount), 0) AS spent_last,
		       COUNT(1) AS spend_count
		FROM coin_transactions t
		JOIN users u ON u.id = t.user_id
		WHERE t.type = $1 AND t.status = $2
		  AND t.created_at >= NOW() - INTERVAL '24 hours'
		GROUP BY t.user_id, u.username
		HAVING COALESCE(SUM(t.amount), 0) >= $3
		ORDER BY spent_last DESC
	`, models.TypeSpend, models.StatusCompleted, minSpent)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type BonusPatternRow struct {
	UserID     string    `db:"user_id" json:"user_id"`
	Username   string    `db:"username" json:"username"`
	Day        time.Time `db:"day" json:"day"`
	BonusCount int64     `db:"bonus_count" json:"bonus_count"`
}

// UnusualBonusPatterns reports accounts that claimed a bonus-tagged reason
// more than once on the same calendar day over the trailing week.
func (s *ReportStore) UnusualBonusPatterns(ctx context.Context) ([]BonusPatternRow, error) {
	var rows []BonusPatternRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT t.user_id, u.username,
		       date_trunc('day', t.created_at) AS day,
		       COUNT(1) AS bonus_count
		FROM coin_transactions t
		JOIN users u ON u.id = t.user_id
		WHERE t.reason = ANY($1)
		  AND t.created_at >= NOW() - INTERVAL '7 days'
		GROUP BY t.user_id, u.username, day
		HAVING COUNT(1) > 1
		ORDER BY bonus_count DESC, day DESC
	`, pq.Array(models.BonusReasons()))
	if err != nil {
		return nil, err
	}
	return rows, nil
}
