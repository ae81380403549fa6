package handlers

import (
	"net/http"

	"coinledger/internal/config"
	"coinledger/internal/db"
	"coinledger/internal/middleware"
	"coinledger/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	cfg          config.Config
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
	hub          *websocket.Hub
	circulation  CirculationGauge
	metricsPage  http.Handler
}

func New(cfg config.Config, txRunner db.TxRunner, users UserStore, balances BalanceStore, transactions TransactionStore, reports ReportStore, listingRows ListingStore, admin AdminStore, audit AuditStore, ledger LedgerService, listings ListingService, hub *websocket.Hub, circulation CirculationGauge, metricsPage http.Handler) *Handler {
	return &Handler{
		cfg:          cfg,
		txRunner:     txRunner,
		users:        users,
		balances:     balances,
		transactions: transactions,
		reports:      reports,
		listingRows:  listingRows,
		admin:        admin,
		audit:        audit,
		ledger:       ledger,
		listings:     listings,
		hub:          hub,
		circulation:  circulation,
		metricsPage:  metricsPage,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/coins/balance", h.GetBalance)
		r.Get("/coins/transactions", h.ListTransactions)
		r.Get("/coins/packages", h.ListPackages)
		r.Post("/coins/daily-bonus", h.ClaimDailyBonus)
		r.Post("/coins/purchase", h.InitiatePurchase)
		r.Post("/listings", h.CreateListing)
		r.Get("/listings/mine", h.ListMyListings)
		r.Post("/listings/{id}/boost", h.BoostListing)
		r.Post("/listings/{id}/sold", h.MarkListingSold)
	})
	router.Get("/ws/coins", h.WSCoins)

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.With(middleware.RequireAdmin(h.admin, "CanManageUsers")).Post("/users/{id}/approve", h.ApproveUser)
		r.With(middleware.RequireAdmin(h.admin, "CanManageCoins")).Post("/coins/award", h.AwardCoins)
		r.With(middleware.RequireAdmin(h.admin, "CanManageCoins")).Post("/coins/deduct", h.DeductCoins)
		r.With(middleware.RequireAdmin(h.admin, "CanManageCoins")).Post("/coins/refund", h.RefundTransaction)
		r.With(middleware.RequireAdmin(h.admin, "CanManageCoins")).Post("/coins/purchases/{id}/promote", h.PromotePurchase)
		r.With(middleware.RequireAdmin(h.admin, "CanViewReports")).Get("/coins/summary", h.CirculationSummary)
		r.With(middleware.RequireAdmin(h.admin, "CanViewReports")).Get("/coins/activity", h.DailyActivity)
		r.With(middleware.RequireAdmin(h.admin, "CanViewReports")).Get("/coins/suspicious", h.SuspiciousActivity)
		r.With(middleware.RequireAdmin(h.admin, "CanViewReports")).Get("/audit", h.ListAuditLogs)
		r.With(middleware.RequireAdmin(h.admin, "")).Post("/coins/purge", h.PurgeTransactions)
		r.With(middleware.RequireAdmin(h.admin, "")).Post("/roles/grant", h.GrantRole)
		r.With(middleware.RequireAdmin(h.admin, "")).Post("/promote", h.PromoteAdmin)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Method(http.MethodGet, "/metrics", h.metricsPage)
	return router
}
