package handlers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/Senjuv/healt-tracker/internal/models"
)

type CreateWeightRequest struct {
	Weight float64 `json:"weight"`
}

type CreateWeightResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Entry   *models.WeightEntry `json:"entry,omitempty"`
}

type GetWeightsResponse struct {
	Success  bool                    `json:"success"`
	Message  string                  `json:"message,omitempty"`
	Entries  []models.WeightEntry    `json:"entries"`
	Progress *models.ProgressSummary `json:"progress,omitempty"`
}

// CreateWeight records a new body-weight measurement for the authenticated
// user. The weight must be a positive finite number.
func (h *Handler) CreateWeight(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Weight <= 0 || math.IsNaN(req.Weight) || math.IsInf(req.Weight, 0) {
		writeError(w, http.StatusBadRequest, "Weight must be a positive number")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Records.InsertWeight(ctx, userID, req.Weight)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save weight entry")
		return
	}

	writeJSON(w, http.StatusCreated, CreateWeightResponse{
		Success: true,
		Message: "Weight entry saved",
		Entry:   entry,
	})
}

// GetWeights returns the full weight history, oldest first, with the
// progress summary once at least 2 entries exist.
func (h *Handler) GetWeights(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Records.ListWeights(ctx, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, GetWeightsResponse{
			Success: false,
			Message: "Failed to load weight history",
			Entries: []models.WeightEntry{},
		})
		return
	}
	if entries == nil {
		entries = []models.WeightEntry{}
	}

	resp := GetWeightsResponse{Success: true, Entries: entries}
	if summary, ok := models.SummarizeProgress(entries); ok {
		resp.Progress = &summary
	}
	writeJSON(w, http.StatusOK, resp)
}
