package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coinledger/internal/auth"
	"coinledger/internal/config"
	"coinledger/internal/db"
	"coinledger/internal/models"
	"coinledger/internal/services"
	"coinledger/internal/store"
	"coinledger/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn        func(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	getByEmailFn    func(ctx context.Context, email string) (models.User, error)
	getByUsernameFn func(ctx context.Context, username string) (models.User, error)
	getByIDFn       func(ctx context.Context, userID string) (models.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, email, passwordHash)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	if s.getByUsernameFn == nil {
		return models.User{}, nil
	}
	return s.getByUsernameFn(ctx, username)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{}, nil
	}
	return s.getByIDFn(ctx, userID)
}

type stubBalanceStore struct {
	createFn func(ctx context.Context, tx store.Execer, userID string) error
}

func (s stubBalanceStore) Create(ctx context.Context, tx store.Execer, userID string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, userID)
}

type stubTransactionStore struct {
	listByUserFn  func(ctx context.Context, userID string, filter store.HistoryFilter) ([]models.CoinTransaction, error)
	countByUserFn func(ctx context.Context, userID string, filter store.HistoryFilter) (int64, error)
}

func (s stubTransactionStore) ListByUser(ctx context.Context, userID string, filter store.HistoryFilter) ([]models.CoinTransaction, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, filter)
}

func (s stubTransactionStore) CountByUser(ctx context.Context, userID string, filter store.HistoryFilter) (int64, error) {
	if s.countByUserFn == nil {
		return 0, nil
	}
	return s.countByUserFn(ctx, userID, filter)
}

type stubReportStore struct {
	circulationFn   func(ctx context.Context) (store.CirculationSummary, error)
	dailyFn         func(ctx context.Context, days int) ([]store.DailyActivityRow, error)
	highEarnersFn   func(ctx context.Context, minEarned int64, withinDays int) ([]store.HighEarnerRow, error)
	rapidSpendersFn func(ctx context.Context, minSpent int64) ([]store.RapidSpenderRow, error)
	bonusPatternsFn func(ctx context.Context) ([]store.BonusPatternRow, error)
}

func (s stubReportStore) CirculationSummary(ctx context.Context) (store.CirculationSummary, error) {
	if s.circulationFn == nil {
		return store.CirculationSummary{}, nil
	}
	return s.circulationFn(ctx)
}

func (s stubReportStore) DailyActivity(ctx context.Context, days int) ([]store.DailyActivityRow, error) {
	if s.dailyFn == nil {
		return nil, nil
	}
	return s.dailyFn(ctx, days)
}

func (s stubReportStore) HighEarners(ctx context.Context, minEarned int64, withinDays int) ([]store.HighEarnerRow, error) {
	if s.highEarnersFn == nil {
		return nil, nil
	}
	return s.highEarnersFn(ctx, minEarned, withinDays)
}

func (s stubReportStore) RapidSpenders(ctx context.Context, minSpent int64) ([]store.RapidSpenderRow, error) {
	if s.rapidSpendersFn == nil {
		return nil, nil
	}
	return s.rapidSpendersFn(ctx, minSpent)
}

func (s stubReportStore) UnusualBonusPatterns(ctx context.Context) ([]store.BonusPatternRow, error) {
	if s.bonusPatternsFn == nil {
		return nil, nil
	}
	return s.bonusPatternsFn(ctx)
}

type stubListingRows struct {
	getByIDFn      func(ctx context.Context, id string) (models.Listing, error)
	listBySellerFn func(ctx context.Context, sellerID string, limit, offset int) ([]models.Listing, error)
}

func (s stubListingRows) GetByID(ctx context.Context, id string) (models.Listing, error) {
	if s.getByIDFn == nil {
		return models.Listing{}, nil
	}
	return s.getByIDFn(ctx, id)
}

func (s stubListingRows) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]models.Listing, error) {
	if s.listBySellerFn == nil {
		return nil, nil
	}
	return s.listBySellerFn(ctx, sellerID, limit, offset)
}

type stubAdminStore struct {
	isAdminFn          func(ctx context.Context, userID string) (bool, bool, error)
	hasRoleFn          func(ctx context.Context, userID, role string) (bool, error)
	createAdminFn      func(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	createFirstAdminFn func(ctx context.Context, tx store.Execer, userID string) (bool, error)
	grantRoleFn        func(ctx context.Context, tx store.Execer, adminUserID, role string) error
}

func (s stubAdminStore) IsAdmin(ctx context.Context, userID string) (bool, bool, error) {
	if s.isAdminFn == nil {
		return false, false, nil
	}
	return s.isAdminFn(ctx, userID)
}

func (s stubAdminStore) HasRole(ctx context.Context, userID, role string) (bool, error) {
	if s.hasRoleFn == nil {
		return false, nil
	}
	return s.hasRoleFn(ctx, userID, role)
}

func (s stubAdminStore) CreateAdmin(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error {
	if s.createAdminFn == nil {
		return nil
	}
	return s.createAdminFn(ctx, tx, userID, isSuper, createdBy)
}

func (s stubAdminStore) GrantRole(ctx context.Context, tx store.Execer, adminUserID, role string) error {
	if s.grantRoleFn == nil {
		return nil
	}
	return s.grantRoleFn(ctx, tx, adminUserID, role)
}

func (s stubAdminStore) CreateFirstAdmin(ctx context.Context, tx store.Execer, userID string) (bool, error) {
	if s.createFirstAdminFn == nil {
		return false, nil
	}
	return s.createFirstAdminFn(ctx, tx, userID)
}

type stubAuditStore struct {
	logFn  func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	listFn func(ctx context.Context, limit, offset int) ([]store.AuditEntry, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]store.AuditEntry, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubLedgerService struct {
	createTransactionFn func(ctx context.Context, req services.CreateTransactionRequest) (models.CoinTransaction, error)
	getBalanceFn        func(ctx context.Context, userID string) (models.CoinBalance, error)
	refundFn            func(ctx context.Context, req services.RefundRequest) (models.CoinTransaction, error)
	initiatePurchaseFn  func(ctx context.Context, userID, packageID string) (services.PurchaseResult, error)
	promotePurchaseFn   func(ctx context.Context, adminID, transactionID string) (models.CoinTransaction, error)
	approveAccountFn    func(ctx context.Context, adminID, userID string) (models.CoinTransaction, error)
	claimDailyBonusFn   func(ctx context.Context, userID string) (models.CoinTransaction, error)
	adminAdjustFn       func(ctx context.Context, req services.AdminAdjustRequest) (models.CoinTransaction, error)
	purgeFn             func(ctx context.Context, horizon time.Duration) (int64, error)
}

func (s stubLedgerService) CreateTransaction(ctx context.Context, req services.CreateTransactionRequest) (models.CoinTransaction, error) {
	if s.createTransactionFn == nil {
		return models.CoinTransaction{}, nil
	}
	return s.createTransactionFn(ctx, req)
}

func (s stubLedgerService) GetBalance(ctx context.Context, userID string) (models.CoinBalance, error) {
	if s.getBalanceFn == nil {
		return models.CoinBalance{}, nil
	}
	return s.getBalanceFn(ctx, userID)
}

func (s stubLedgerService) Refund(ctx context.Context, req services.RefundRequest) (models.CoinTransaction, error) {
	if s.refundFn == nil {
		return models.CoinTransaction{}, nil
	}
	return s.refundFn(ctx, req)
}

func (s stubLedgerService) InitiatePurchase(ctx context.Context, userID, packageID string) (services.PurchaseResult, error) {
	if s.initiatePurchaseFn == nil {
		return services.PurchaseResult{}, nil
	}
	return s.initiatePurchaseFn(ctx, userID, packageID)
}

func (s stubLedgerService) PromotePurchase(ctx context.Context, adminID, transactionID string) (models.CoinTransaction, error) {
	if s.promotePurchaseFn == nil {
		return models.CoinTransaction{}, nil
	}
	return s.promotePurchaseFn(ctx, adminID, transactionID)
}

func (s stubLedgerService) ApproveAccount(ctx context.Context, adminID, userID string) (models.CoinTransaction, error) {
	if s.approveAccountFn == nil {
		return models.CoinTransaction{}, nil
	}
	return s.approveAccountFn(ctx, adminID, userID)
}

func (s stubLedgerService) ClaimDailyBonus(ctx context.Context, userID string) (models.CoinTransaction, error) {
	if s.claimDailyBonusFn == nil {
		return models.CoinTransaction{}, nil
	}
	return s.claimDailyBonusFn(ctx, userID)
}

func (s stubLedgerService) AdminAdjust(ctx context.Context, req services.AdminAdjustRequest) (models.CoinTransaction, error) {
	if s.adminAdjustFn == nil {
		return models.CoinTransaction{}, nil
	}
	return s.adminAdjustFn(ctx, req)
}

func (s stubLedgerService) PurgeOldTransactions(ctx context.Context, horizon time.Duration) (int64, error) {
	if s.purgeFn == nil {
		return 0, nil
	}
	return s.purgeFn(ctx, horizon)
}

type stubListingService struct {
	createFn func(ctx context.Context, sellerID, title string, price int64) (services.ListingResult, error)
	boostFn  func(ctx context.Context, sellerID, listingID, tierName string) (services.ListingResult, error)
	soldFn   func(ctx context.Context, actorID, listingID string, actorIsAdmin bool) (services.SaleResult, error)
}

func (s stubListingService) CreateListing(ctx context.Context, sellerID, title string, price int64) (services.ListingResult, error) {
	if s.createFn == nil {
		return services.ListingResult{}, nil
	}
	return s.createFn(ctx, sellerID, title, price)
}

func (s stubListingService) BoostListing(ctx context.Context, sellerID, listingID, tierName string) (services.ListingResult, error) {
	if s.boostFn == nil {
		return services.ListingResult{}, nil
	}
	return s.boostFn(ctx, sellerID, listingID, tierName)
}

func (s stubListingService) MarkSold(ctx context.Context, actorID, listingID string, actorIsAdmin bool) (services.SaleResult, error) {
	if s.soldFn == nil {
		return services.SaleResult{}, nil
	}
	return s.soldFn(ctx, actorID, listingID, actorIsAdmin)
}

type recordingGauge struct {
	last *int64
}

func (g recordingGauge) SetCirculation(total int64) {
	if g.last != nil {
		*g.last = total
	}
}

type testDeps struct {
	txRunner     db.TxRunner
	users        UserStore
	balances     BalanceStore
	transactions TransactionStore
	reports      ReportStore
	listingRows  ListingStore
	admin        AdminStore
	audit        AuditStore
	ledger       LedgerService
	listings     ListingService
	circulation  CirculationGauge
}

func newTestHandler(deps testDeps) *Handler {
	if deps.txRunner == nil {
		deps.txRunner = fakeTxRunner{}
	}
	if deps.users == nil {
		deps.users = stubUserStore{}
	}
	if deps.balances == nil {
		deps.balances = stubBalanceStore{}
	}
	if deps.transactions == nil {
		deps.transactions = stubTransactionStore{}
	}
	if deps.reports == nil {
		deps.reports = stubReportStore{}
	}
	if deps.listingRows == nil {
		deps.listingRows = stubListingRows{}
	}
	if deps.admin == nil {
		deps.admin = stubAdminStore{}
	}
	if deps.audit == nil {
		deps.audit = stubAuditStore{}
	}
	if deps.ledger == nil {
		deps.ledger = stubLedgerService{}
	}
	if deps.listings == nil {
		deps.listings = stubListingService{}
	}
	if deps.circulation == nil {
		deps.circulation = recordingGauge{}
	}
	cfg := config.Config{
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
		SaleFeePercent: "0.10",
		RetentionDays:  365,
	}
	return New(cfg, deps.txRunner, deps.users, deps.balances, deps.transactions, deps.reports,
		deps.listingRows, deps.admin, deps.audit, deps.ledger, deps.listings,
		websocket.NewHub(), deps.circulation, http.NotFoundHandler())
}

func authedRequest(t *testing.T, method, target string, body io.Reader, userID string) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken("secret", userID, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.Routes().ServeHTTP(rr, req)
	return rr
}
