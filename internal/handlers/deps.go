package handlers

import (
	"context"
	"time"

	"coinledger/internal/models"
	"coinledger/internal/services"
	"coinledger/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
}

type BalanceStore interface {
	Create(ctx context.Context, tx store.Execer, userID string) error
}

type TransactionStore interface {
	ListByUser(ctx context.Context, userID string, filter store.HistoryFilter) ([]models.CoinTransaction, error)
	CountByUser(ctx context.Context, userID string, filter store.HistoryFilter) (int64, error)
}

type ReportStore interface {
	CirculationSummary(ctx context.Context) (store.CirculationSummary, error)
	DailyActivity(ctx context.Context, days int) ([]store.DailyActivityRow, error)
	HighEarners(ctx context.Context, minEarned int64, withinDays int) ([]store.HighEarnerRow, error)
	RapidSpenders(ctx context.Context, minSpent int64) ([]store.RapidSpenderRow, error)
	UnusualBonusPatterns(ctx context.Context) ([]store.BonusPatternRow, error)
}

type ListingStore interface {
	GetByID(ctx context.Context, id string) (models.Listing, error)
	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]models.Listing, error)
}

type AdminStore interface {
	IsAdmin(ctx context.Context, userID string) (bool, bool, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
	CreateAdmin(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	CreateFirstAdmin(ctx context.Context, tx store.Execer, userID string) (bool, error)
	GrantRole(ctx context.Context, tx store.Execer, adminUserID, role string) error
}

// CirculationGauge is fed the coin total whenever a fresh circulation
// summary is computed, so /metrics tracks what the admin dashboard saw.
type CirculationGauge interface {
	SetCirculation(total int64)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]store.AuditEntry, error)
}

type LedgerService interface {
	CreateTransaction(ctx context.Context, req services.CreateTransactionRequest) (models.CoinTransaction, error)
	GetBalance(ctx context.Context, userID string) (models.CoinBalance, error)
	Refund(ctx context.Context, req services.RefundRequest) (models.CoinTransaction, error)
	InitiatePurchase(ctx context.Context, userID, packageID string) (services.PurchaseResult, error)
	PromotePurchase(ctx context.Context, adminID, transactionID string) (models.CoinTransaction, error)
	ApproveAccount(ctx context.Context, adminID, userID string) (models.CoinTransaction, error)
	ClaimDailyBonus(ctx context.Context, userID string) (models.CoinTransaction, error)
	AdminAdjust(ctx context.Context, req services.AdminAdjustRequest) (models.CoinTransaction, error)
	PurgeOldTransactions(ctx context.Context, horizon time.Duration) (int64, error)
}

type ListingService interface {
	CreateListing(ctx context.Context, sellerID, title string, price int64) (services.ListingResult, error)
	BoostListing(ctx context.Context, sellerID, listingID, tierName string) (services.ListingResult, error)
	MarkSold(ctx context.Context, actorID, listingID string, actorIsAdmin bool) (services.SaleResult, error)
}
