package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Senjuv/healt-tracker/internal/genai"
	"github.com/Senjuv/healt-tracker/internal/services"
)

type GenerateRequest struct {
	Text  string            `json:"text,omitempty"`
	Image *genai.InlineData `json:"image,omitempty"`
}

type GenerateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Task    string `json:"task,omitempty"`
	Text    string `json:"text,omitempty"`
	Cached  bool   `json:"cached,omitempty"`
}

// Generate runs one AI task for the authenticated user. The task comes from
// the URL (a closed set, see routes); validation failures are reported
// before any upstream call is made. Identical requests within the cache TTL
// are answered from Redis.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	task, err := genai.ParseTask(chi.URLParam(r, "task"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown task")
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := genai.BuildInput{Text: req.Text, Image: req.Image}

	// Progress advice needs the caller's weight history
	if task == genai.TaskProgressAdvice {
		listCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		history, err := h.Records.ListWeights(listCtx, userID)
		cancel()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load weight history")
			return
		}
		input.History = history
	}

	genReq, err := genai.BuildRequest(task, input)
	if err != nil {
		if errors.Is(err, genai.ErrImageRequired) || errors.Is(err, genai.ErrInsufficientHistory) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to build generation request")
		return
	}

	payload, err := json.Marshal(genReq)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build generation request")
		return
	}
	cacheKey := services.GenerationCacheKey(task.String(), payload)

	if cached, hit, _ := h.Cache.GetString(r.Context(), cacheKey); hit {
		writeJSON(w, http.StatusOK, GenerateResponse{
			Success: true,
			Task:    task.String(),
			Text:    cached,
			Cached:  true,
		})
		return
	}

	text, err := h.GenAI.Generate(r.Context(), genReq)
	if err != nil {
		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && !apiErr.Transient() {
			log.Printf("genai: permanent failure on %s: %v", task, err)
			writeError(w, http.StatusBadGateway, "La IA rechazó la solicitud.")
			return
		}
		log.Printf("genai: %s failed after retries: %v", task, err)
		writeError(w, http.StatusBadGateway, "El servicio de IA no está disponible en este momento. Inténtalo de nuevo.")
		return
	}

	if text != genai.FallbackText {
		if err := h.Cache.SetString(r.Context(), cacheKey, text); err != nil {
			log.Printf("genai: response cache write failed: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Success: true,
		Task:    task.String(),
		Text:    text,
	})
}
