package handlers

import (
	"encoding/json"
	"net/http"

	"coinledger/internal/auth"
	"coinledger/internal/middleware"
	"coinledger/internal/money"
	"coinledger/internal/policy"
	"coinledger/internal/store"
	"coinledger/internal/websocket"
)

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	balance, err := h.ledger.GetBalance(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"balance":             balance.Balance,
		"total_earned":        balance.TotalEarned,
		"total_spent":         balance.TotalSpent,
		"last_daily_bonus_at": balance.LastDailyBonusAt,
	})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 20)
	if limit > 100 {
		limit = 100
	}
	page := parseInt(query.Get("page"), 1)
	filter := store.HistoryFilter{
		Type:   query.Get("type"),
		Reason: query.Get("reason"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	rows, err := h.transactions.ListByUser(r.Context(), userID, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	total, err := h.transactions.CountByUser(r.Context(), userID, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"transactions": rows,
		"page":         page,
		"limit":        limit,
		"total":        total,
	})
}

func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages := policy.Packages()
	out := make([]map[string]any, 0, len(packages))
	for _, pkg := range packages {
		out = append(out, map[string]any{
			"id":          pkg.ID,
			"coins":       pkg.Coins,
			"bonus_coins": pkg.BonusCoins,
			"price":       money.FormatMinor(pkg.PriceMinorUnits),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) ClaimDailyBonus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	created, err := h.ledger.ClaimDailyBonus(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

type purchaseRequest struct {
	PackageID string `json:"package_id"`
}

func (h *Handler) InitiatePurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PackageID == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	result, err := h.ledger.InitiatePurchase(r.Context(), userID, req.PackageID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, result)
}

// WSCoins authenticates via a token query parameter because browsers cannot
// set headers on websocket dials.
func (h *Handler) WSCoins(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}
