package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/logger"
	"github.com/atinyakov/DigitalHouse/internal/models"
	"github.com/atinyakov/DigitalHouse/internal/repository"
)

// Messages returned by the auth endpoints. The client matches on some of them.
const (
	MsgNoAccount         = "No account found. Please register first."
	MsgUnderVerification = "Your account is under verification"
	MsgRejected          = "Your registration was rejected"
	MsgNotApproved       = "Account not approved"
	MsgInvalidOTP        = "Invalid or expired OTP"
	MsgInvalidToken      = "Invalid or expired token"
	MsgOTPSent           = "OTP sent to your email"
)

var (
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobileRe = regexp.MustCompile(`^\d{10}$`)
)

// UserRepository stores accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, u repository.UserRecord) (repository.UserRecord, error)
	UserByEmail(ctx context.Context, email string) (repository.UserRecord, error)
	UserByID(ctx context.Context, id int64) (repository.UserRecord, error)
	UpdateUser(ctx context.Context, id int64, fn func(*repository.UserRecord) error) (repository.UserRecord, error)
}

// OTPRepository stores pending one-time passwords.
type OTPRepository interface {
	SaveOTP(ctx context.Context, email, code string, expires time.Time) error
	ConsumeOTP(ctx context.Context, email, code string, now time.Time) (bool, error)
}

// AuthRepository defines the persistence operations required by the
// authentication service.
type AuthRepository interface {
	UserRepository
	OTPRepository
}

// AuthOptions tune the authentication service.
type AuthOptions struct {
	// AutoApprove activates registrations immediately.
	AutoApprove bool
	// OTPCode, when set, is issued instead of a random code.
	OTPCode string
	OTPTTL  time.Duration
}

// AuthService implements registration, OTP login and token authentication.
type AuthService struct {
	repo   AuthRepository
	tokens *Tokens
	opts   AuthOptions
	log    *zap.Logger
	now    func() time.Time
}

// NewAuthService constructs an AuthService. A nil log discards output.
func NewAuthService(repo AuthRepository, tokens *Tokens, opts AuthOptions, log *zap.Logger) *AuthService {
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = 5 * time.Minute
	}
	return &AuthService{repo: repo, tokens: tokens, opts: opts, log: logger.OrNop(log), now: time.Now}
}

func normEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}

// Register creates an account. It starts out pending unless AutoApprove is set.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (models.Registration, error) {
	name := strings.TrimSpace(req.FullName)
	email := normEmail(req.Email)
	mobile := trimPtr(req.Mobile)
	switch {
	case name == "":
		return models.Registration{}, fail(KindInvalid, "Full name is required")
	case !emailRe.MatchString(email):
		return models.Registration{}, fail(KindInvalid, "A valid email is required")
	case mobile != nil && !mobileRe.MatchString(*mobile):
		return models.Registration{}, fail(KindInvalid, "Mobile number must be 10 digits")
	}

	status := models.AccountPending
	if s.opts.AutoApprove {
		status = models.AccountApproved
	}
	location, kulam := trimPtr(req.Location), trimPtr(req.Kulam)
	occupation := trimPtr(req.Occupation)
	rec := repository.UserRecord{
		FullName:       name,
		Email:          email,
		Mobile:         mobile,
		Gender:         trimPtr(req.Gender),
		DOB:            trimPtr(req.DOB),
		Occupation:     occupation,
		Location:       location,
		Community:      trimPtr(req.Community),
		Kulam:          kulam,
		ProfileImage:   trimPtr(req.ProfilePhoto),
		NativeDistrict: location,
		Role:           repository.RoleMember,
		Status:         status,
		Sections: models.ProfileSections{
			Community: &models.CommunitySection{Kulam: kulam},
			Personal:  &models.PersonalSection{CurrentLocation: location, Occupation: occupation},
		},
	}
	u, err := s.repo.CreateUser(ctx, rec)
	if errors.Is(err, repository.ErrConflict) {
		return models.Registration{}, &Error{Kind: KindConflict, Message: "An account with this email or mobile already exists", Err: err}
	}
	if err != nil {
		return models.Registration{}, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user registered", zap.Int64("user_id", u.ID), zap.String("status", string(u.Status)))

	msg := "Registration submitted. Your account is under verification."
	if u.Status == models.AccountApproved {
		msg = "Registration successful. You can now sign in."
	}
	return models.Registration{
		Message: msg,
		User:    models.RegisteredUser{ID: u.ID, Email: u.Email, Status: u.Status},
	}, nil
}

// statusError returns the error for an account that may not sign in, or nil.
func statusError(status models.AccountStatus) error {
	switch status {
	case models.AccountApproved:
		return nil
	case models.AccountPending:
		return fail(KindForbidden, MsgUnderVerification)
	case models.AccountRejected:
		return fail(KindForbidden, MsgRejected)
	}
	return fail(KindForbidden, MsgNotApproved)
}

// RequestLogin issues a one-time password for an approved account. There
// is no mailer; the code is written to the log.
func (s *AuthService) RequestLogin(ctx context.Context, email string) (string, error) {
	email = normEmail(email)
	if email == "" {
		return "", fail(KindInvalid, "Email is required")
	}
	u, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		return "", notFound(err, MsgNoAccount)
	}
	if err := statusError(u.Status); err != nil {
		return "", err
	}

	code := s.opts.OTPCode
	if code == "" {
		if code, err = randomCode(); err != nil {
			return "", err
		}
	}
	if err := s.repo.SaveOTP(ctx, email, code, s.now().Add(s.opts.OTPTTL)); err != nil {
		return "", fmt.Errorf("save otp: %w", err)
	}
	s.log.Info("otp issued", zap.String("email", email), zap.String("otp", code))
	return MsgOTPSent, nil
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// VerifyOTP exchanges a live one-time password for an access token.
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) (models.Login, error) {
	email = normEmail(email)
	ok, err := s.repo.ConsumeOTP(ctx, email, strings.TrimSpace(otp), s.now())
	if err != nil {
		return models.Login{}, fmt.Errorf("consume otp: %w", err)
	}
	if !ok {
		return models.Login{}, fail(KindInvalid, MsgInvalidOTP)
	}
	u, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		return models.Login{}, notFound(err, MsgNoAccount)
	}
	if err := statusError(u.Status); err != nil {
		return models.Login{}, err
	}
	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return models.Login{}, err
	}
	s.log.Info("user signed in", zap.Int64("user_id", u.ID))
	return models.Login{AccessToken: token, User: UserModel(u)}, nil
}

// Authenticate resolves a bearer token to an approved account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (repository.UserRecord, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return repository.UserRecord{}, &Error{Kind: KindUnauthorized, Message: MsgInvalidToken, Err: err}
	}
	u, err := s.repo.UserByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.UserRecord{}, &Error{Kind: KindUnauthorized, Message: MsgInvalidToken, Err: err}
	}
	if err != nil {
		return repository.UserRecord{}, err
	}
	if u.Status != models.AccountApproved {
		return repository.UserRecord{}, fail(KindForbidden, MsgNotApproved)
	}
	return u, nil
}

// Me returns the account with the given id.
func (s *AuthService) Me(ctx context.Context, userID int64) (models.User, error) {
	u, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return models.User{}, notFound(err, "User not found")
	}
	return UserModel(u), nil
}

// UserModel is the account as the auth endpoints return it.
func UserModel(u repository.UserRecord) models.User {
	return models.User{ID: u.ID, FullName: u.FullName, Email: u.Email, Status: u.Status, CreatedAt: u.CreatedAt}
}
