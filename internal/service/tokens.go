package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	audienceAccess = "access"
	audienceUpload = "upload"
)

// ErrInvalidToken is returned for tokens that fail signature, audience or
// expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// Tokens issues and verifies the HS256 tokens of the backend: bearer
// access tokens and the signatures of presigned upload URLs.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns Tokens signing with secret; access tokens live for ttl.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issue returns an access token for the user.
func (t *Tokens) Issue(userID int64, email string) (string, error) {
	now := t.now()
	claims := accessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  jwt.ClaimStrings{audienceAccess},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return s, nil
}

// Verify returns the user id an access token was issued to.
func (t *Tokens) Verify(token string) (int64, error) {
	var claims accessClaims
	if err := t.parse(token, &claims, audienceAccess); err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// UploadGrant is what a presigned upload URL allows.
type UploadGrant struct {
	Key         string
	ContentType string
	MaxSize     int64
}

type uploadClaims struct {
	ContentType string `json:"ct"`
	MaxSize     int64  `json:"max"`
	jwt.RegisteredClaims
}

// SignUpload returns the signature of a presigned upload URL for g, valid for ttl.
func (t *Tokens) SignUpload(g UploadGrant, ttl time.Duration) (string, error) {
	now := t.now()
	claims := uploadClaims{
		ContentType: g.ContentType,
		MaxSize:     g.MaxSize,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   g.Key,
			Audience:  jwt.ClaimStrings{audienceUpload},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign upload: %w", err)
	}
	return s, nil
}

// VerifyUpload checks that sig grants an upload to key.
func (t *Tokens) VerifyUpload(sig, key string) (UploadGrant, error) {
	var claims uploadClaims
	if err := t.parse(sig, &claims, audienceUpload); err != nil {
		return UploadGrant{}, err
	}
	if claims.Subject != key {
		return UploadGrant{}, ErrInvalidToken
	}
	return UploadGrant{Key: key, ContentType: claims.ContentType, MaxSize: claims.MaxSize}, nil
}

func (t *Tokens) parse(token string, claims jwt.Claims, audience string) error {
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}
