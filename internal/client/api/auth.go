package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

type registerResponse struct {
	envelope
	User *models.RegisteredUser `json:"user"`
}

type verifyResponse struct {
	envelope
	AccessToken string       `json:"accessToken"`
	User        *models.User `json:"user"`
}

type meResponse struct {
	envelope
	User *models.User `json:"user"`
}

// NormalizeEmail is the form in which emails are sent to the auth endpoints.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register submits a registration. The account starts out pending approval.
func (a *API) Register(ctx context.Context, req models.RegisterRequest) (models.Registration, error) {
	const path, fallback = "/auth/register", "Registration failed"
	req.Email = NormalizeEmail(req.Email)

	var resp registerResponse
	if err := a.call(ctx, http.MethodPost, path, nil, req, &resp, fallback); err != nil {
		return models.Registration{}, err
	}
	if resp.User == nil {
		return models.Registration{}, decodeError(http.MethodPost, path, fallback, "missing user")
	}
	return models.Registration{Message: resp.Message, User: *resp.User}, nil
}

// RequestLogin asks the server to email a one-time password and returns
// the server's message. A 403 means the account is pending or rejected.
func (a *API) RequestLogin(ctx context.Context, email string) (string, error) {
	var resp envelope
	body := map[string]string{"email": NormalizeEmail(email)}
	if err := a.call(ctx, http.MethodPost, "/auth/login-request", nil, body, &resp, "Failed to send OTP"); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// VerifyOTP exchanges an emailed one-time password for an access token.
func (a *API) VerifyOTP(ctx context.Context, email, otp string) (models.Login, error) {
	const path, fallback = "/auth/verify-otp", "Invalid or expired OTP"
	body := map[string]string{
		"email": NormalizeEmail(email),
		"otp":   strings.TrimSpace(otp),
	}

	var resp verifyResponse
	if err := a.call(ctx, http.MethodPost, path, nil, body, &resp, fallback); err != nil {
		return models.Login{}, err
	}
	if resp.AccessToken == "" {
		return models.Login{}, decodeError(http.MethodPost, path, fallback, "missing accessToken")
	}
	if resp.User == nil {
		return models.Login{}, decodeError(http.MethodPost, path, fallback, "missing user")
	}
	return models.Login{AccessToken: resp.AccessToken, User: *resp.User}, nil
}

// Me returns the account the current token belongs to.
func (a *API) Me(ctx context.Context) (models.User, error) {
	const path, fallback = "/auth/me", "Failed to load profile"

	var resp meResponse
	if err := a.call(ctx, http.MethodGet, path, nil, nil, &resp, fallback); err != nil {
		return models.User{}, err
	}
	if resp.User == nil {
		return models.User{}, decodeError(http.MethodGet, path, fallback, "missing user")
	}
	return *resp.User, nil
}
