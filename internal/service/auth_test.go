package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/DigitalHouse/internal/models"
	"github.com/atinyakov/DigitalHouse/internal/repository"
)

const testSecret = "test-secret-0123456789"

func newAuth(t *testing.T, opts AuthOptions) (*AuthService, *repository.Memory) {
	t.Helper()
	repo := repository.NewMemory()
	return NewAuthService(repo, NewTokens(testSecret, time.Hour), opts, nil), repo
}

func register(t *testing.T, s *AuthService, email string) models.Registration {
	t.Helper()
	reg, err := s.Register(context.Background(), models.RegisterRequest{FullName: gofakeit.Name(), Email: email})
	require.NoError(t, err)
	return reg
}

func TestRegister(t *testing.T) {
	s, repo := newAuth(t, AuthOptions{})
	ctx := context.Background()

	mobile, blank := "9876543210", "  "
	reg, err := s.Register(ctx, models.RegisterRequest{
		FullName: " Kavin ", Email: " Kavin@Example.com", Mobile: &mobile, Occupation: &blank,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AccountPending, reg.User.Status)
	assert.Equal(t, "kavin@example.com", reg.User.Email)
	assert.Contains(t, reg.Message, "under verification")

	u, err := repo.UserByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kavin", u.FullName)
	assert.Nil(t, u.Occupation)

	tests := []struct {
		name string
		req  models.RegisterRequest
		kind Kind
	}{
		{"no name", models.RegisterRequest{Email: "a@b.co"}, KindInvalid},
		{"bad email", models.RegisterRequest{FullName: "A", Email: "ab.co"}, KindInvalid},
		{"bad mobile", models.RegisterRequest{FullName: "A", Email: "a@b.co", Mobile: func() *string { s := "12"; return &s }()}, KindInvalid},
		{"duplicate", models.RegisterRequest{FullName: "A", Email: "KAVIN@example.com"}, KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.NotEmpty(t, MessageOf(err))
		})
	}

	auto, _ := newAuth(t, AuthOptions{AutoApprove: true})
	assert.Equal(t, models.AccountApproved, register(t, auto, "a@b.co").User.Status)
}

func TestLoginFlow(t *testing.T) {
	s, repo := newAuth(t, AuthOptions{OTPCode: "424242"})
	ctx := context.Background()

	_, err := s.RequestLogin(ctx, "ghost@example.com")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, MsgNoAccount, MessageOf(err))

	reg := register(t, s, "member@example.com")
	_, err = s.RequestLogin(ctx, "member@example.com")
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Equal(t, MsgUnderVerification, MessageOf(err))

	_, err = repo.UpdateUser(ctx, reg.User.ID, func(u *repository.UserRecord) error {
		u.Status = models.AccountRejected
		return nil
	})
	require.NoError(t, err)
	_, err = s.RequestLogin(ctx, "member@example.com")
	assert.Equal(t, MsgRejected, MessageOf(err))

	_, err = repo.UpdateUser(ctx, reg.User.ID, func(u *repository.UserRecord) error {
		u.Status = models.AccountApproved
		return nil
	})
	require.NoError(t, err)
	msg, err := s.RequestLogin(ctx, " Member@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, MsgOTPSent, msg)

	_, err = s.VerifyOTP(ctx, "member@example.com", "000000")
	assert.Equal(t, MsgInvalidOTP, MessageOf(err))

	login, err := s.VerifyOTP(ctx, "member@example.com", "424242")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
	assert.NotEmpty(t, login.AccessToken)

	_, err = s.VerifyOTP(ctx, "member@example.com", "424242")
	assert.Equal(t, MsgInvalidOTP, MessageOf(err), "codes are single use")

	u, err := s.Authenticate(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, u.ID)

	_, err = s.Authenticate(ctx, "garbage")
	assert.Equal(t, KindUnauthorized, KindOf(err))

	_, err = repo.UpdateUser(ctx, reg.User.ID, func(u *repository.UserRecord) error {
		u.Status = models.AccountPending
		return nil
	})
	require.NoError(t, err)
	_, err = s.Authenticate(ctx, login.AccessToken)
	assert.Equal(t, KindForbidden, KindOf(err))

	me, err := s.Me(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "member@example.com", me.Email)
}

func TestRequestLogin_RandomCode(t *testing.T) {
	s, repo := newAuth(t, AuthOptions{AutoApprove: true})
	register(t, s, "r@example.com")
	_, err := s.RequestLogin(context.Background(), "r@example.com")
	require.NoError(t, err)

	n, err := repo.DeleteExpiredOTPs(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n, "a code was stored with the configured lifetime")
}

type mockAuthRepo struct {
	*repository.Memory
	SaveOTPFunc func(ctx context.Context, email, code string, expires time.Time) error
}

func (m *mockAuthRepo) SaveOTP(ctx context.Context, email, code string, expires time.Time) error {
	return m.SaveOTPFunc(ctx, email, code, expires)
}

func TestRequestLogin_StoreError(t *testing.T) {
	repo := &mockAuthRepo{
		Memory: repository.NewMemory(),
		SaveOTPFunc: func(context.Context, string, string, time.Time) error {
			return errors.New("disk full")
		},
	}
	s := NewAuthService(repo, NewTokens(testSecret, time.Hour), AuthOptions{AutoApprove: true}, nil)
	register(t, s, "x@example.com")

	_, err := s.RequestLogin(context.Background(), "x@example.com")
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestTokens(t *testing.T) {
	tok := NewTokens(testSecret, time.Minute)
	s, err := tok.Issue(7, "a@b.co")
	require.NoError(t, err)
	id, err := tok.Verify(s)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = NewTokens("another-secret-0123456", time.Minute).Verify(s)
	assert.ErrorIs(t, err, ErrInvalidToken)

	sig, err := tok.SignUpload(UploadGrant{Key: "posts/1/a.png", ContentType: "image/png", MaxSize: 10}, time.Minute)
	require.NoError(t, err)
	_, err = tok.Verify(sig)
	assert.ErrorIs(t, err, ErrInvalidToken, "upload signatures are not access tokens")
	g, err := tok.VerifyUpload(sig, "posts/1/a.png")
	require.NoError(t, err)
	assert.Equal(t, int64(10), g.MaxSize)
	_, err = tok.VerifyUpload(sig, "posts/1/b.png")
	assert.ErrorIs(t, err, ErrInvalidToken)

	tok.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tok.Verify(s)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")
}
