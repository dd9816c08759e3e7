package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpiredVerificationPurger es implementado por stores sin expiracion nativa (Postgres).
type ExpiredVerificationPurger interface {
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// RunVerificationSweeper borra periodicamente los OTP pendientes vencidos hace mas de grace.
// Bloquea hasta que ctx se cancela.
func RunVerificationSweeper(ctx context.Context, logger *zap.Logger, purger ExpiredVerificationPurger, interval, grace time.Duration) {
	if purger == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purger.PurgeExpired(ctx, time.Now().UTC().Add(-grace))
			if err != nil {
				logger.Warn("purge expired verifications failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Debug("purged expired verifications", zap.Int64("count", n))
			}
		}
	}
}
