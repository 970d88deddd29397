package store

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often the OTP sweeper runs.
const DefaultSweepInterval = time.Minute

// StartOTPSweeper runs a background goroutine that periodically drops
// expired OTP records. Verification enforces expiry on its own; the sweeper
// only keeps the map from accumulating dead records.
func StartOTPSweeper(ctx context.Context, s Store, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("OTP sweeper started", "interval", interval)

		for {
			select {
			case <-ticker.C:
				if removed := s.CleanupExpiredOTPs(time.Now()); removed > 0 {
					slog.Info("OTP sweeper removed expired records", "count", removed)
				}
			case <-ctx.Done():
				slog.Info("OTP sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
