package repository

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// OTPStore is the part of the store the sweeper needs.
type OTPStore interface {
	DeleteExpiredOTPs(ctx context.Context, now time.Time) (int, error)
}

// StartOTPSweeper removes expired one-time passwords every interval until
// ctx is done.
func StartOTPSweeper(ctx context.Context, store OTPStore, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n, err := store.DeleteExpiredOTPs(ctx, now)
				if err != nil {
					log.Error("failed to sweep expired OTPs", zap.Error(err))
					continue
				}
				if n > 0 {
					log.Info("swept expired OTPs", zap.Int("removed", n))
				}
			}
		}
	}()
}
