package credential

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/config"
)

// Open builds the Store selected by opts. The returned close func releases
// backend resources and is never nil.
func Open(ctx context.Context, opts *config.Options, log *zap.Logger) (*Store, func() error, error) {
	noop := func() error { return nil }

	switch opts.CredentialBackend {
	case config.BackendMemory:
		return NewStore(NewMemoryBackend(), log), noop, nil

	case config.BackendFile:
		fb, err := NewFileBackend(opts.CredentialFile, passphraseOrDefault(opts.CredentialPassphrase))
		if err != nil {
			return nil, noop, err
		}
		return NewStore(fb, log), noop, nil

	case config.BackendRedis:
		rdb, err := OpenRedis(ctx, opts.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return NewStore(NewRedisBackend(rdb, opts.RedisKey, 0), log), rdb.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown credential backend %q", opts.CredentialBackend)
}

// passphraseOrDefault ties an unset passphrase to the host so a copied
// file does not open elsewhere.
func passphraseOrDefault(p string) string {
	if p != "" {
		return p
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return "digitalhouse:" + host
}
