package handlers

import (
	"net/http"

	"github.com/isdelr/weight-tracker-be/internal/auth"
	"github.com/isdelr/weight-tracker-be/internal/models"
	"github.com/isdelr/weight-tracker-be/internal/services"
	"github.com/rs/zerolog/hlog"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	accounts services.AccountServiceProvider
	sessions services.SessionServiceProvider
	cookie   auth.CookieOptions
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts services.AccountServiceProvider, sessions services.SessionServiceProvider, cookie auth.CookieOptions) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions, cookie: cookie}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type accountResponse struct {
	Message string         `json:"message,omitempty"`
	User    models.Account `json:"user"`
}

// Register creates an account and logs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	account, err := h.accounts.Register(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !h.startSession(w, r, account) {
		return
	}

	hlog.FromRequest(r).Info().Int64("account_id", account.ID).Msg("Account registered")
	writeJSON(w, http.StatusCreated, accountResponse{Message: "User registered successfully", User: account})
}

// Login checks credentials and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	account, err := h.accounts.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("username", payload.Username).Msg("Failed authentication attempt")
		writeError(w, r, err)
		return
	}
	if !h.startSession(w, r, account) {
		return
	}

	writeJSON(w, http.StatusOK, accountResponse{Message: "Login successful", User: account})
}

// LoginRequired answers GET /auth/login, where browsers land when they are
// sent to log in.
func (h *AuthHandler) LoginRequired(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusUnauthorized, map[string]any{
		"error": "Authentication required",
		"next":  nullable(r.URL.Query().Get("next")),
	})
}

// Logout revokes the caller's session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Revoke(r.Context(), caller.SessionID); err != nil {
		writeError(w, r, err)
		return
	}
	auth.ClearSessionCookie(w, h.cookie)
	writeMessage(w, http.StatusOK, "Logout successful")
}

// CurrentUser returns the authenticated account.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	account, err := h.accounts.GetAccountByID(r.Context(), caller.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{User: account})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, account models.Account) bool {
	token, session, err := h.sessions.Create(r.Context(), account.ID)
	if err != nil {
		writeError(w, r, err)
		return false
	}
	auth.SetSessionCookie(w, token, session.ExpiresAt, h.cookie)
	return true
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
