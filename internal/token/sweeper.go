package token

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskhive/taskhive/internal/metrics"
	"github.com/taskhive/taskhive/internal/repository"
)

// Sweeper periodically purges expired refresh-token and consumed
// verification-jti rows. Revocation correctness never depends on it; it
// only keeps the stores from growing without bound.
type Sweeper struct {
	refresh      repository.RefreshTokenStore
	verification repository.VerificationTokenStore
	interval     time.Duration
	logger       *slog.Logger
}

func NewSweeper(refresh repository.RefreshTokenStore, verification repository.VerificationTokenStore, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		refresh:      refresh,
		verification: verification,
		interval:     interval,
		logger:       logger.With("component", "token_sweeper"),
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("token sweeper started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("token sweeper shut down")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now()

	removed, err := s.refresh.DeleteExpired(ctx, cutoff)
	if err != nil {
		s.logger.Error("sweep refresh tokens", "error", err)
	} else if removed > 0 {
		metrics.TokensSweptTotal.WithLabelValues("refresh").Add(float64(removed))
		s.logger.Info("swept expired refresh tokens", "count", removed)
	}

	removed, err = s.verification.DeleteExpired(ctx, cutoff)
	if err != nil {
		s.logger.Error("sweep verification tokens", "error", err)
	} else if removed > 0 {
		metrics.TokensSweptTotal.WithLabelValues("verification").Add(float64(removed))
		s.logger.Info("swept consumed verification tokens", "count", removed)
	}
}
