package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Senjuv/healt-tracker/internal/models"
)

type SaveSkinRequest struct {
	Notes    string `json:"notes,omitempty"`
	Analysis string `json:"analysis"`
	HasImage bool   `json:"has_image"`
	PhotoURL string `json:"photo_url,omitempty"`
}

type SaveSkinResponse struct {
	Success bool                     `json:"success"`
	Message string                   `json:"message"`
	Entry   *models.SkinJournalEntry `json:"entry,omitempty"`
}

type GetSkinResponse struct {
	Success bool                      `json:"success"`
	Message string                    `json:"message,omitempty"`
	Entries []models.SkinJournalEntry `json:"entries"`
	Total   int64                     `json:"total"`
}

// SaveSkin persists a skincare analysis. A source image is mandatory for
// skin journal entries.
func (h *Handler) SaveSkin(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SaveSkinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !req.HasImage {
		writeError(w, http.StatusBadRequest, "A face photo is required for skin journal entries")
		return
	}
	if strings.TrimSpace(req.Analysis) == "" {
		writeError(w, http.StatusBadRequest, "Analysis text is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Records.InsertSkin(ctx, userID, models.SkinJournalEntry{
		Notes:    strings.TrimSpace(req.Notes),
		Analysis: req.Analysis,
		HasImage: true,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save skin journal entry")
		return
	}

	writeJSON(w, http.StatusCreated, SaveSkinResponse{
		Success: true,
		Message: "Skin journal entry saved",
		Entry:   entry,
	})
}

// GetSkin returns saved skincare analyses, newest first.
func (h *Handler) GetSkin(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit, skip := paginationParams(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	entries, total, err := h.Records.ListSkin(ctx, userID, limit, skip)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, GetSkinResponse{
			Success: false,
			Message: "Failed to load skin journal",
			Entries: []models.SkinJournalEntry{},
		})
		return
	}
	if entries == nil {
		entries = []models.SkinJournalEntry{}
	}

	writeJSON(w, http.StatusOK, GetSkinResponse{
		Success: true,
		Entries: entries,
		Total:   total,
	})
}
