package handlers

import (
	"encoding/json"
	"net/http"

	"coinledger/internal/middleware"
	"coinledger/internal/validator"

	"github.com/go-chi/chi/v5"
)

type createListingRequest struct {
	Title string `json:"title"`
	Price int64  `json:"price"`
}

func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateListingTitle(req.Title); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidateListingPrice(req.Price); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.listings.CreateListing(r.Context(), userID, req.Title, req.Price)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListMyListings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 20)
	page := parseInt(query.Get("page"), 1)
	rows, err := h.listingRows.ListBySeller(r.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load listings")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

type boostRequest struct {
	Tier string `json:"tier"`
}

func (h *Handler) BoostListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req boostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Tier == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	result, err := h.listings.BoostListing(r.Context(), userID, chi.URLParam(r, "id"), req.Tier)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) MarkListingSold(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	isAdmin, _, err := h.admin.IsAdmin(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to verify admin")
		return
	}
	result, err := h.listings.MarkSold(r.Context(), userID, chi.URLParam(r, "id"), isAdmin)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
