package models

import "time"

type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	IsApproved   bool       `db:"is_approved" json:"is_approved"`
	ApprovedAt   *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// CoinBalance is the authoritative per-user coin state. Balance may go
// negative; TotalEarned and TotalSpent are lifetime counters and are never
// used to re-derive Balance.
type CoinBalance struct {
	UserID           string     `db:"user_id" json:"user_id"`
	Balance          int64      `db:"balance" json:"balance"`
	TotalEarned      int64      `db:"total_earned" json:"total_earned"`
	TotalSpent       int64      `db:"total_spent" json:"total_spent"`
	LastDailyBonusAt *time.Time `db:"last_daily_bonus_at" json:"last_daily_bonus_at,omitempty"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

type CoinTransaction struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	Type             string    `db:"type" json:"type"`
	Reason           string    `db:"reason" json:"reason"`
	Status           string    `db:"status" json:"status"`
	Amount           int64     `db:"amount" json:"amount"`
	BalanceBefore    int64     `db:"balance_before" json:"balance_before"`
	BalanceAfter     int64     `db:"balance_after" json:"balance_after"`
	Description      string    `db:"description" json:"description"`
	RelatedProductID *string   `db:"related_product_id" json:"related_product_id,omitempty"`
	RelatedUserID    *string   `db:"related_user_id" json:"related_user_id,omitempty"`
	Metadata         string    `db:"metadata" json:"metadata"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Listing is the collaborator that owns the one-shot fee flag; the ledger
// never mutates listings outside the sale workflow. Price is whole pesos.
type Listing struct {
	ID             string     `db:"id" json:"id"`
	SellerID       string     `db:"seller_id" json:"seller_id"`
	Title          string     `db:"title" json:"title"`
	Price          int64      `db:"price" json:"price"`
	Status         string     `db:"status" json:"status"`
	IsBoosted      bool       `db:"is_boosted" json:"is_boosted"`
	BoostTier      *string    `db:"boost_tier" json:"boost_tier,omitempty"`
	BoostExpiresAt *time.Time `db:"boost_expires_at" json:"boost_expires_at,omitempty"`
	FeeApplied     bool       `db:"fee_applied" json:"fee_applied"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// Transaction types. The type carries the sign; Amount is always positive.
const (
	TypeEarn     = "earn"
	TypeSpend    = "spend"
	TypePurchase = "purchase"
	TypeRefund   = "refund"
)

const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// Well-known reasons. Anything outside this set is passed through as a
// custom reason; policy logic only matches on the constants below.
const (
	ReasonCreateListing       = "create_listing"
	ReasonBoostListing        = "boost_listing"
	ReasonSignupBonus         = "signup_bonus"
	ReasonDailyLogin          = "daily_login"
	ReasonAdminAward          = "admin_award"
	ReasonAdminDeduct         = "admin_deduct"
	ReasonTransactionFee      = "transaction_fee"
	ReasonCoinPurchasePending = "coin_purchase_pending"
	ReasonCoinPurchase        = "coin_purchase"
	ReasonRefund              = "refund"
)

const (
	ListingStatusActive = "active"
	ListingStatusSold   = "sold"
)

// SignedAmount maps a positive amount onto the balance delta implied by the
// transaction type. The second return is false for unknown types.
func SignedAmount(txType string, amount int64) (int64, bool) {
	switch txType {
	case TypeEarn, TypePurchase, TypeRefund:
		return amount, true
	case TypeSpend:
		return -amount, true
	default:
		return 0, false
	}
}

// BonusReasons are the reason tags counted by the unusual-bonus-pattern
// fraud query.
func BonusReasons() []string {
	return []string{ReasonSignupBonus, ReasonDailyLogin}
}
