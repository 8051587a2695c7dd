package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Senjuv/healt-tracker/internal/models"
)

type SaveNutritionRequest struct {
	Description string `json:"description,omitempty"`
	Analysis    string `json:"analysis"`
	HasImage    bool   `json:"has_image"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

type SaveNutritionResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Record  *models.NutritionRecord `json:"record,omitempty"`
}

type GetNutritionResponse struct {
	Success bool                     `json:"success"`
	Message string                   `json:"message,omitempty"`
	Records []models.NutritionRecord `json:"records"`
	Total   int64                    `json:"total"`
}

// SaveNutrition persists a nutrition analysis the user explicitly chose to
// keep. At least one of description or source image must have been present.
func (h *Handler) SaveNutrition(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SaveNutritionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Description) == "" && !req.HasImage {
		writeError(w, http.StatusBadRequest, "A description or a meal photo is required")
		return
	}
	if strings.TrimSpace(req.Analysis) == "" {
		writeError(w, http.StatusBadRequest, "Analysis text is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	record, err := h.Records.InsertNutrition(ctx, userID, models.NutritionRecord{
		Description: strings.TrimSpace(req.Description),
		Analysis:    req.Analysis,
		HasImage:    req.HasImage,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save nutrition record")
		return
	}

	writeJSON(w, http.StatusCreated, SaveNutritionResponse{
		Success: true,
		Message: "Nutrition record saved",
		Record:  record,
	})
}

// GetNutrition returns saved nutrition analyses, newest first.
func (h *Handler) GetNutrition(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit, skip := paginationParams(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	records, total, err := h.Records.ListNutrition(ctx, userID, limit, skip)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, GetNutritionResponse{
			Success: false,
			Message: "Failed to load nutrition history",
			Records: []models.NutritionRecord{},
		})
		return
	}
	if records == nil {
		records = []models.NutritionRecord{}
	}

	writeJSON(w, http.StatusOK, GetNutritionResponse{
		Success: true,
		Records: records,
		Total:   total,
	})
}

// maxPageSize caps how many records one history request can pull.
const maxPageSize = 100

// paginationParams reads limit/skip query parameters with the same defaults
// for every history listing.
func paginationParams(r *http.Request) (limit, skip int64) {
	limit = 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if parsed, err := strconv.ParseInt(s, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if s := r.URL.Query().Get("skip"); s != "" {
		if parsed, err := strconv.ParseInt(s, 10, 64); err == nil && parsed >= 0 {
			skip = parsed
		}
	}
	return limit, skip
}
