package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

// AuthService defines the authentication operations required by the
// HTTP handlers.
type AuthService interface {
	// Register creates a pending account.
	Register(ctx context.Context, req models.RegisterRequest) (models.Registration, error)
	// RequestLogin issues a one-time password for an approved account and
	// returns the message shown to the user.
	RequestLogin(ctx context.Context, email string) (string, error)
	// VerifyOTP consumes a one-time password and returns an access token.
	VerifyOTP(ctx context.Context, email, otp string) (models.Login, error)
	// Me returns the account with the given id.
	Me(ctx context.Context, userID int64) (models.User, error)
}

// AuthHandler handles registration, OTP login and the current account.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// Log records failed requests.
	Log         *zap.Logger
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	reg, err := h.AuthService.Register(r.Context(), req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		envelope
		User models.RegisteredUser `json:"user"`
	}{envelope{OK: true, Message: reg.Message}, reg.User})
}

// LoginRequest handles POST /api/auth/login-request. It answers 404 for
// unknown emails and 403 for accounts that may not sign in.
func (h *AuthHandler) LoginRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	msg, err := h.AuthService.RequestLogin(r.Context(), req.Email)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{OK: true, Message: msg})
}

// VerifyOTP handles POST /api/auth/verify-otp.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if !decode(w, r, &req) {
		return
	}
	login, err := h.AuthService.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		envelope
		AccessToken string      `json:"accessToken"`
		User        models.User `json:"user"`
	}{ok, login.AccessToken, login.User})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.AuthService.Me(r.Context(), userID(r))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		envelope
		User models.User `json:"user"`
	}{ok, u})
}
