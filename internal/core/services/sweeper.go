package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

const (
	DefaultSweepInterval = 30 * time.Second
	DefaultSweepTimeout  = 10 * time.Second
)

// Sweeper periodically closes sessions whose window has elapsed. It holds
// no state; it only coordinates with admission through the measure store's
// compare-and-set.
type Sweeper struct {
	sessions ports.SessionService
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewSweeper(sessions ports.SessionService, interval, timeout time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if timeout <= 0 {
		timeout = DefaultSweepTimeout
	}
	return &Sweeper{
		sessions: sessions,
		interval: interval,
		timeout:  timeout,
		logger:   resolveLogger(logger),
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("session sweeper started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.tick(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.SweepOnce(ctx); err != nil {
		s.logger.Error("session sweep failed", "error", err)
	}
}

// SweepOnce runs a single bounded sweep and returns the measures it closed.
func (s *Sweeper) SweepOnce(ctx context.Context) ([]uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	closed, err := s.sessions.CloseExpired(ctx)
	if len(closed) > 0 {
		s.logger.Info("expired sessions closed", "count", len(closed))
	} else if err == nil {
		s.logger.Debug("no expired sessions to close")
	}
	return closed, err
}
