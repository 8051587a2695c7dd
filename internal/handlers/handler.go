package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Senjuv/healt-tracker/internal/config"
	"github.com/Senjuv/healt-tracker/internal/feed"
	"github.com/Senjuv/healt-tracker/internal/genai"
	"github.com/Senjuv/healt-tracker/internal/services"
)

// Handler carries every dependency the HTTP layer needs. It is constructed
// once in main; no handler reaches for package-level state.
type Handler struct {
	Cfg        *config.Config
	Sessions   *services.SessionService
	Users      *services.UserService
	Records    *services.RecordsService
	Cache      *services.CacheService
	Cloudinary *services.CloudinaryService // nil when credentials are absent
	GenAI      *genai.Client
	Feed       *feed.Subscriber
}

// extractBearerToken pulls the token out of an Authorization header.
func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requireAuth validates the session and returns the authenticated user's ID.
// Returns ("", false) if not authenticated.
func (h *Handler) requireAuth(r *http.Request) (string, bool) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return "", false
	}
	userID, ok, err := h.Sessions.Validate(r.Context(), token)
	if err != nil || !ok {
		return "", false
	}
	return userID.String(), true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message})
}
