package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionStore evicts sessions that have been idle past their TTL.
type SessionStore interface {
	Sweep(now time.Time) int
}

// Pruner drops idle per-client state, such as rate limiter buckets.
type Pruner interface {
	Prune() int
}

// SessionSweeper periodically evicts idle storefront sessions and prunes
// stale rate limiter entries.
type SessionSweeper struct {
	store     SessionStore
	pruners   []Pruner
	logger    *zap.Logger
	config    SessionSweeperConfig
	now       func() time.Time
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// SessionSweeperConfig holds configuration for the session sweeper
type SessionSweeperConfig struct {
	// Enabled determines if the sweeper is active
	Enabled bool

	// Interval is the time between sweeps
	Interval time.Duration
}

// DefaultSessionSweeperConfig returns default configuration
func DefaultSessionSweeperConfig() SessionSweeperConfig {
	return SessionSweeperConfig{
		Enabled:  true,
		Interval: time.Minute,
	}
}

// Validate checks the sweeper configuration
func (c SessionSweeperConfig) Validate() error {
	if c.Enabled && c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// NewSessionSweeper creates a new session sweeper
func NewSessionSweeper(
	store SessionStore,
	logger *zap.Logger,
	config SessionSweeperConfig,
	pruners ...Pruner,
) (*SessionSweeper, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionSweeper{
		store:   store,
		pruners: pruners,
		logger:  logger,
		config:  config,
		now:     time.Now,
	}, nil
}

// Start starts the sweep loop
func (s *SessionSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Session sweeper is disabled")
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Session sweeper started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("pruners", len(s.pruners)),
	)
	return nil
}

// Stop gracefully stops the sweeper
func (s *SessionSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Session sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Session sweeper stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the sweep loop is active
func (s *SessionSweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// SweepOnce runs a single sweep and returns the number of evicted sessions
// and pruned entries.
func (s *SessionSweeper) SweepOnce() (evicted, pruned int) {
	evicted = s.store.Sweep(s.now())
	for _, p := range s.pruners {
		pruned += p.Prune()
	}
	if evicted > 0 || pruned > 0 {
		s.logger.Debug("Session sweep completed",
			zap.Int("evicted_sessions", evicted),
			zap.Int("pruned_entries", pruned),
		)
	}
	return evicted, pruned
}

func (s *SessionSweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Session sweep loop stopping")
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}
