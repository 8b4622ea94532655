// Package sweeper evicts expired temporary blocks from the registry.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/caasmo/countryblock/registry"
	"github.com/caasmo/countryblock/scheduler"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultInterval = time.Minute

type Sweeper struct {
	registry  *registry.Registry
	logger    *slog.Logger
	evictions prometheus.Counter
}

type Option func(*Sweeper)

// WithEvictionCounter counts every evicted entry.
func WithEvictionCounter(c prometheus.Counter) Option {
	return func(s *Sweeper) {
		s.evictions = c
	}
}

func New(reg *registry.Registry, logger *slog.Logger, opts ...Option) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sweeper{
		registry: reg,
		logger:   logger.With("component", "sweeper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep removes every temporary entry whose expiry is not after now. An
// entry unblocked or re-blocked since the snapshot is left alone. It returns
// the number of evicted entries; the error is only ever ctx.Err().
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.registry.Now()
	evicted := 0

	for _, ref := range s.registry.Refs() {
		if err := ctx.Err(); err != nil {
			return evicted, err
		}
		if !ref.IsTemporary() {
			continue
		}
		if ref.ExpiresAt.IsZero() {
			s.logger.Warn("temporary block without expiry, skipping", "code", ref.Code)
			continue
		}
		if !ref.Expired(now) {
			continue
		}

		if !s.registry.RemoveIfSame(ref) {
			s.logger.Debug("entry changed since snapshot, not evicted", "code", ref.Code)
			continue
		}
		evicted++
		if s.evictions != nil {
			s.evictions.Inc()
		}
		s.logger.Info("temporary block expired", "code", ref.Code, "expires_at", ref.ExpiresAt)
	}

	return evicted, nil
}

// Job adapts the sweeper to the scheduler.
func (s *Sweeper) Job(interval time.Duration) scheduler.Job {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return scheduler.Job{
		Name:     "expiration_sweeper",
		Interval: interval,
		Run: func(ctx context.Context) error {
			_, err := s.Sweep(ctx)
			return err
		},
	}
}
