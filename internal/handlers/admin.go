package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"coinledger/internal/middleware"
	"coinledger/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

func (h *Handler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	created, err := h.ledger.ApproveAccount(r.Context(), adminID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":            "approved",
		"bonus_transaction": created,
	})
}

type adjustRequest struct {
	UserID      string `json:"user_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

func (h *Handler) AwardCoins(w http.ResponseWriter, r *http.Request) {
	h.adjustCoins(w, r, false)
}

func (h *Handler) DeductCoins(w http.ResponseWriter, r *http.Request) {
	h.adjustCoins(w, r, true)
}

func (h *Handler) adjustCoins(w http.ResponseWriter, r *http.Request, deduct bool) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	created, err := h.ledger.AdminAdjust(r.Context(), services.AdminAdjustRequest{
		AdminID:     adminID,
		UserID:      req.UserID,
		Amount:      req.Amount,
		Description: req.Description,
		Deduct:      deduct,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

type refundRequest struct {
	TransactionID string `json:"transaction_id"`
	Description   string `json:"description"`
}

func (h *Handler) RefundTransaction(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TransactionID == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	created, err := h.ledger.Refund(r.Context(), services.RefundRequest{
		AdminID:       adminID,
		TransactionID: req.TransactionID,
		Description:   req.Description,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) PromotePurchase(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	created, err := h.ledger.PromotePurchase(r.Context(), adminID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) CirculationSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.CirculationSummary(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load summary")
		return
	}
	h.circulation.SetCirculation(summary.TotalCoinsInCirculation)
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) DailyActivity(w http.ResponseWriter, r *http.Request) {
	days := parseInt(r.URL.Query().Get("days"), 30)
	if days > 90 {
		days = 90
	}
	rows, err := h.reports.DailyActivity(r.Context(), days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load activity")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"days":     days,
		"activity": rows,
	})
}

// Advisory thresholds for the fraud-signal report. Humans review the output;
// nothing is enforced automatically.
const (
	highEarnerMinCoins   = 500
	highEarnerWindowDays = 7
	rapidSpenderMinCoins = 200
)

func (h *Handler) SuspiciousActivity(w http.ResponseWriter, r *http.Request) {
	highEarners, err := h.reports.HighEarners(r.Context(), highEarnerMinCoins, highEarnerWindowDays)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load report")
		return
	}
	rapidSpenders, err := h.reports.RapidSpenders(r.Context(), rapidSpenderMinCoins)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load report")
		return
	}
	bonusPatterns, err := h.reports.UnusualBonusPatterns(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load report")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"high_earners":           highEarners,
		"rapid_spenders":         rapidSpenders,
		"unusual_bonus_patterns": bonusPatterns,
	})
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	page := parseInt(query.Get("page"), 1)
	rows, err := h.audit.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit logs")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) PurgeTransactions(w http.ResponseWriter, r *http.Request) {
	horizon := time.Duration(h.cfg.RetentionDays) * 24 * time.Hour
	purged, err := h.ledger.PurgeOldTransactions(r.Context(), horizon)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "purge failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"purged": purged})
}

type promoteAdminRequest struct {
	Identifier string `json:"identifier"`
}

func (h *Handler) PromoteAdmin(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	_, isSuper, err := h.admin.IsAdmin(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to verify admin")
		return
	}
	if !isSuper {
		respondError(w, http.StatusForbidden, "super_admin_required")
		return
	}
	var req promoteAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Identifier == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	targetID, err := h.resolveUserID(r, req.Identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to resolve user")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.admin.CreateAdmin(r.Context(), tx, targetID, false, &userID); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"target_user_id": targetID})
		return h.audit.Log(r.Context(), tx, userID, "promote_admin", "admin", targetID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to promote admin")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "promoted"})
}

type grantRoleRequest struct {
	AdminUserID string `json:"admin_user_id"`
	Role        string `json:"role"`
}

func (h *Handler) GrantRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	_, isSuper, err := h.admin.IsAdmin(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to verify admin")
		return
	}
	if !isSuper {
		respondError(w, http.StatusForbidden, "super_admin_required")
		return
	}
	var req grantRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AdminUserID == "" || req.Role == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	isAdmin, targetIsSuper, err := h.admin.IsAdmin(r.Context(), req.AdminUserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to verify target admin")
		return
	}
	if !isAdmin {
		respondError(w, http.StatusBadRequest, "target is not an admin")
		return
	}
	if targetIsSuper {
		respondError(w, http.StatusBadRequest, "cannot assign roles to super admin")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.admin.GrantRole(r.Context(), tx, req.AdminUserID, req.Role); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"admin_user_id": req.AdminUserID,
			"role":          req.Role,
		})
		return h.audit.Log(r.Context(), tx, userID, "grant_role", "admin_role", req.AdminUserID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to grant role")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "role_granted"})
}

func (h *Handler) resolveUserID(r *http.Request, identifier string) (string, error) {
	if strings.Contains(identifier, "@") {
		user, err := h.users.GetByEmail(r.Context(), identifier)
		if err != nil {
			return "", err
		}
		return user.ID, nil
	}
	user, err := h.users.GetByUsername(r.Context(), identifier)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
