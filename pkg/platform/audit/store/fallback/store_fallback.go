// Package fallback routes audit events to a secondary store while the
// primary sink is failing.
package fallback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	audit "landregistry/pkg/platform/audit"
	"landregistry/pkg/platform/circuit"
)

// Store writes to primary until the breaker opens, then to secondary. While
// open it probes primary at most once per probeInterval.
type Store struct {
	primary       audit.Store
	secondary     audit.Store
	breaker       *circuit.Breaker
	logger        *slog.Logger
	probeInterval time.Duration
	now           func() time.Time

	mu        sync.Mutex
	lastProbe time.Time
}

type Option func(*Store)

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Store) { s.breaker = b }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithProbeInterval(d time.Duration) Option {
	return func(s *Store) { s.probeInterval = d }
}

func New(primary, secondary audit.Store, opts ...Option) *Store {
	s := &Store{
		primary:       primary,
		secondary:     secondary,
		breaker:       circuit.New("audit-sink"),
		logger:        slog.Default(),
		probeInterval: 5 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if s.breaker.IsOpen() && !s.shouldProbe() {
		return s.secondary.Append(ctx, event)
	}

	if err := s.primary.Append(ctx, event); err != nil {
		_, change := s.breaker.RecordFailure()
		if change.Opened {
			s.logger.WarnContext(ctx, "audit sink circuit opened", "breaker", s.breaker.Name(), "error", err)
		}
		return s.secondary.Append(ctx, event)
	}

	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "audit sink circuit closed", "breaker", s.breaker.Name())
	}
	return nil
}

// ListBySubject reads the secondary, which holds whatever primary missed.
func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	lister, ok := s.secondary.(audit.Lister)
	if !ok {
		return nil, nil
	}
	return lister.ListBySubject(ctx, subject)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	lister, ok := s.secondary.(audit.Lister)
	if !ok {
		return nil, nil
	}
	return lister.ListRecent(ctx, limit)
}

func (s *Store) shouldProbe() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastProbe) < s.probeInterval {
		return false
	}
	s.lastProbe = now
	return true
}
