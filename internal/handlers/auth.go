package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Senjuv/healt-tracker/pkg/utils"
)

type CreateSessionRequest struct {
	Token string `json:"token,omitempty"`
}

type SessionResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SessionToken string `json:"session_token,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	Anonymous    bool   `json:"anonymous"`
}

// CreateSession exchanges an externally supplied login token for a session.
// An absent or stale token is not an error: the caller gets a fresh anonymous
// identity instead, so the journal always has a user to scope records under.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.Body != nil {
		// Body is optional for anonymous sessions
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	ctx := r.Context()
	anonymous := false

	userID, ok := h.Sessions.ExchangeLoginToken(ctx, req.Token)
	if !ok {
		user, err := h.Users.CreateAnonymous(ctx)
		if err != nil {
			log.Printf("auth: anonymous user creation failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to create session")
			return
		}
		userID = user.ID
		anonymous = true
	}

	sessionToken, err := h.Sessions.Create(ctx, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	if err := h.Users.TouchLastSeen(ctx, userID); err != nil {
		log.Printf("auth: touch last_seen failed for %s: %v", userID, err)
	}

	writeJSON(w, http.StatusCreated, SessionResponse{
		Success:      true,
		Message:      "Session created",
		SessionToken: sessionToken,
		UserID:       userID.String(),
		Anonymous:    anonymous,
	})
}

type SignupRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	RecoveryEmail string `json:"recovery_email,omitempty"` // optional
}

type SigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SessionToken string `json:"session_token,omitempty"`
	LoginToken   string `json:"login_token,omitempty"`
	UserID       string `json:"user_id,omitempty"`
}

// Signup registers a named account. Accounts are optional; they exist so a
// user can reach the same journal from several devices.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateUsername(req.Username); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	ctx := r.Context()
	username := utils.NormalizeUsername(req.Username)

	existing, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "Username is already taken")
		return
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	// Recovery email is stored encrypted or not at all
	encryptedEmail := ""
	if strings.TrimSpace(req.RecoveryEmail) != "" {
		encryptedEmail, err = utils.Encrypt(strings.TrimSpace(req.RecoveryEmail))
		if err != nil {
			log.Printf("auth: recovery email encryption unavailable: %v", err)
			encryptedEmail = ""
		}
	}

	user, err := h.Users.CreateRegistered(ctx, username, passwordHash, encryptedEmail)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	sessionToken, err := h.Sessions.Create(ctx, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Account created but session failed; please sign in")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success:      true,
		Message:      "Account created",
		SessionToken: sessionToken,
		UserID:       user.ID.String(),
	})
}

// Signin authenticates a named account. The response also carries a one-shot
// login token the client can hand to another tab or device, which exchanges
// it at the session endpoint.
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	user, err := h.Users.GetByUsername(ctx, utils.NormalizeUsername(req.Username))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Sign in failed")
		return
	}
	if user == nil || user.PasswordHash == "" {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	valid, err := utils.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !valid {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	sessionToken, err := h.Sessions.Create(ctx, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Sign in failed")
		return
	}

	loginToken, err := h.Sessions.MintLoginToken(ctx, user.ID)
	if err != nil {
		log.Printf("auth: login token mint failed for %s: %v", user.ID, err)
		loginToken = ""
	}

	if err := h.Users.TouchLastSeen(ctx, user.ID); err != nil {
		log.Printf("auth: touch last_seen failed for %s: %v", user.ID, err)
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success:      true,
		Message:      "Signed in",
		SessionToken: sessionToken,
		LoginToken:   loginToken,
		UserID:       user.ID.String(),
	})
}

// Logout invalidates the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if err := h.Sessions.Invalidate(r.Context(), token); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}
	writeJSON(w, http.StatusOK, errorResponse{Success: true, Message: "Logged out"})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.Users.GetByID(r.Context(), id)
	if err != nil || user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}
