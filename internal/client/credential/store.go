// Package credential keeps the single access token the client holds.
//
// Store is deliberately forgiving: a broken backend never surfaces as an
// error to callers. Failures are logged and read as "no token".
package credential

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// ErrNotFound is returned by a Backend whose slot is empty.
var ErrNotFound = errors.New("credential not found")

// Backend persists one token.
type Backend interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// Store is the credential slot used by the transport client.
type Store struct {
	backend Backend
	log     *zap.Logger
}

// NewStore wraps backend. A nil log discards warnings.
func NewStore(backend Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{backend: backend, log: log}
}

// Set stores token, replacing any previous one. An empty token clears the slot.
func (s *Store) Set(ctx context.Context, token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		s.Clear(ctx)
		return
	}
	if err := s.backend.Save(ctx, token); err != nil {
		s.log.Warn("failed to save credential", zap.Error(err))
	}
}

// Get returns the stored token, or "" when there is none or the backend failed.
func (s *Store) Get(ctx context.Context) string {
	token, err := s.backend.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("failed to load credential", zap.Error(err))
		}
		return ""
	}
	return token
}

// Clear removes the stored token. Clearing an empty slot is a no-op.
func (s *Store) Clear(ctx context.Context) {
	if err := s.backend.Delete(ctx); err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Warn("failed to delete credential", zap.Error(err))
	}
}
