// Package session runs the sign-in flow: registration, emailed one-time
// password and the stored access token.
package session

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/client/api"
	"github.com/atinyakov/DigitalHouse/internal/client/credential"
	"github.com/atinyakov/DigitalHouse/internal/models"
)

// OTPLength is the number of digits in an emailed code.
const OTPLength = 6

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Input errors, checked before any request is sent.
var (
	ErrEmailRequired  = errors.New("email is required")
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrOTPIncomplete  = errors.New("otp must have 6 digits")
	ErrNameRequired   = errors.New("full name is required")
	ErrInvalidMobile  = errors.New("mobile number must have at least 10 digits")
	ErrLocationNeeded = errors.New("location is required")
	ErrKulamNeeded    = errors.New("kulam is required")
)

// Auth is the slice of the API the session uses.
type Auth interface {
	Register(ctx context.Context, req models.RegisterRequest) (models.Registration, error)
	RequestLogin(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, email, otp string) (models.Login, error)
	Me(ctx context.Context) (models.User, error)
}

// Tokens is the credential slot.
type Tokens interface {
	Get(ctx context.Context) string
	Set(ctx context.Context, token string)
	Clear(ctx context.Context)
}

// Session tracks who is signed in.
type Session struct {
	auth   Auth
	tokens Tokens
	log    *zap.Logger

	mu   sync.Mutex
	user *models.User
}

// New returns a Session.
func New(auth Auth, tokens Tokens, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{auth: auth, tokens: tokens, log: log}
}

// ValidEmail reports whether email looks like an address.
func ValidEmail(email string) bool {
	return emailRe.MatchString(strings.TrimSpace(email))
}

// CleanOTP keeps at most OTPLength digits of raw.
func CleanOTP(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == OTPLength {
				break
			}
		}
	}
	return b.String()
}

// RequestOTP validates email and asks the server to send a code. It returns
// the normalized email the code was sent to and the server's message.
func (s *Session) RequestOTP(ctx context.Context, email string) (string, string, error) {
	if strings.TrimSpace(email) == "" {
		return "", "", ErrEmailRequired
	}
	if !ValidEmail(email) {
		return "", "", ErrInvalidEmail
	}
	email = api.NormalizeEmail(email)
	msg, err := s.auth.RequestLogin(ctx, email)
	if err != nil {
		return "", "", err
	}
	return email, msg, nil
}

// VerifyOTP exchanges the code for a token and stores it.
func (s *Session) VerifyOTP(ctx context.Context, email, otp string) (models.User, error) {
	otp = CleanOTP(otp)
	if len(otp) < OTPLength {
		return models.User{}, ErrOTPIncomplete
	}
	login, err := s.auth.VerifyOTP(ctx, email, otp)
	if err != nil {
		return models.User{}, err
	}
	s.tokens.Set(ctx, login.AccessToken)

	s.mu.Lock()
	u := login.User
	s.user = &u
	s.mu.Unlock()

	s.log.Info("signed in", zap.Int64("user_id", u.ID))
	return u, nil
}

// ValidateRegistration checks the fields the server requires.
func ValidateRegistration(req models.RegisterRequest) error {
	if strings.TrimSpace(req.FullName) == "" {
		return ErrNameRequired
	}
	if !ValidEmail(req.Email) {
		return ErrInvalidEmail
	}
	if req.Mobile == nil || len(strings.TrimSpace(*req.Mobile)) < 10 {
		return ErrInvalidMobile
	}
	if req.Location == nil || strings.TrimSpace(*req.Location) == "" {
		return ErrLocationNeeded
	}
	if req.Kulam == nil || strings.TrimSpace(*req.Kulam) == "" {
		return ErrKulamNeeded
	}
	return nil
}

// Register validates and submits a registration. Optional blank fields
// are sent as null.
func (s *Session) Register(ctx context.Context, req models.RegisterRequest) (models.Registration, error) {
	if err := ValidateRegistration(req); err != nil {
		return models.Registration{}, err
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Gender = trimOrNil(req.Gender)
	req.DOB = trimOrNil(req.DOB)
	req.Mobile = trimOrNil(req.Mobile)
	req.Occupation = trimOrNil(req.Occupation)
	req.Location = trimOrNil(req.Location)
	req.Community = trimOrNil(req.Community)
	req.Kulam = trimOrNil(req.Kulam)
	return s.auth.Register(ctx, req)
}

// Me fetches the account behind the stored token.
func (s *Session) Me(ctx context.Context) (models.User, error) {
	u, err := s.auth.Me(ctx)
	if err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return u, nil
}

// User returns the last account seen, if any.
func (s *Session) User() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// SignedIn reports whether a token is stored.
func (s *Session) SignedIn(ctx context.Context) bool {
	return s.tokens.Get(ctx) != ""
}

// Token describes the stored token without verifying it.
func (s *Session) Token(ctx context.Context) (credential.TokenInfo, error) {
	token := s.tokens.Get(ctx)
	if token == "" {
		return credential.TokenInfo{}, credential.ErrNotFound
	}
	return credential.Inspect(token)
}

// Logout forgets the token and the cached account.
func (s *Session) Logout(ctx context.Context) {
	s.tokens.Clear(ctx)
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.log.Info("signed out")
}

func trimOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
