package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"coinledger/internal/services"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

// respondServiceError translates ledger errors into HTTP statuses. Unknown
// errors become opaque 500s.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrListingNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidType),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrUnknownPackage),
		errors.Is(err, services.ErrUnknownBoostTier):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInsufficientBalance):
		respondError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, services.ErrAlreadyRefunded),
		errors.Is(err, services.ErrNotRefundable),
		errors.Is(err, services.ErrNotPending),
		errors.Is(err, services.ErrAlreadyApproved),
		errors.Is(err, services.ErrBonusNotYetAvailable),
		errors.Is(err, services.ErrListingNotActive):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNotListingOwner):
		respondError(w, http.StatusForbidden, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
