// Package service provides the catalog service that backs the HTTP API,
// the site pages and the CLI.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	repository "github.com/okian/pmwiki/internal/adapters/repository"
	"github.com/okian/pmwiki/internal/domain/compare"
	"github.com/okian/pmwiki/pkg/logger"
)

// Defaults used when no option overrides them.
const (
	DefaultRevalidateInterval  = time.Hour
	DefaultSweepInterval       = 10 * time.Minute
	DefaultBaseURL             = "https://pmwiki.kr"
	DefaultMaxRankingLimit     = 100
	DefaultRecommendationLimit = 10
)

// Service implements the catalog, ranking and compare operations.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	registry *compare.Registry
	snap     atomic.Pointer[snapshot]

	// Configuration
	baseURL             string
	revalidateInterval  time.Duration
	sweepInterval       time.Duration
	searchLimit         int
	maxRankingLimit     int
	recommendationLimit int
	now                 func() time.Time

	// State
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	// Refresh is serialized so concurrent rebuilds don't race on the pointer.
	refreshMu sync.Mutex

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the catalog store. The service owns it and closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRegistry sets the compare session registry.
func WithRegistry(r *compare.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBaseURL sets the public site URL used in structured data and the sitemap.
func WithBaseURL(u string) Option {
	return func(s *Service) {
		if u != "" {
			s.baseURL = u
		}
	}
}

// WithRevalidateInterval sets how often listing snapshots are rebuilt.
func WithRevalidateInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.revalidateInterval = d
		}
	}
}

// WithSweepInterval sets how often idle compare sessions are dropped.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithSearchLimit sets the default and maximum number of search results.
func WithSearchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.searchLimit = n
		}
	}
}

// WithMaxRankingLimit bounds the N accepted by TopRanked.
func WithMaxRankingLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRankingLimit = n
		}
	}
}

// WithRecommendationLimit caps each recommendation list.
func WithRecommendationLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recommendationLimit = n
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration. Without
// WithStore the service runs on an empty in-memory store.
func New(opts ...Option) *Service {
	s := &Service{
		baseURL:             DefaultBaseURL,
		revalidateInterval:  DefaultRevalidateInterval,
		sweepInterval:       DefaultSweepInterval,
		searchLimit:         30,
		maxRankingLimit:     DefaultMaxRankingLimit,
		recommendationLimit: DefaultRecommendationLimit,
		now:                 time.Now,
		logger:              nil, // replaced when the service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.registry == nil {
		s.registry = compare.NewRegistry()
	}
	return s
}

// Start builds the first snapshot and starts the revalidation and session
// sweep loops. A failed first build is logged; pages degrade to empty
// listings until the next successful rebuild.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting catalog service...")

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn(ctx, "initial catalog snapshot failed", logger.Error(err))
	}

	s.stopCh = make(chan struct{})
	s.wg.Add(1)
	go s.loop(s.stopCh)

	s.started = true
	s.logger.Info(ctx, "catalog service started",
		logger.Duration("revalidate", s.revalidateInterval),
		logger.Duration("sweep", s.sweepInterval),
		logger.Int("published", s.current().published()),
	)
	return nil
}

// Stop gracefully shuts down the service: loops exit, compare sessions and
// their watch streams end, and the store is closed.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping catalog service...")

	close(s.stopCh)
	s.wg.Wait()

	s.registry.Close()

	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing store", logger.Error(err))
	}

	s.started = false
	s.logger.Info(context.Background(), "catalog service stopped")
}

func (s *Service) loop(stop <-chan struct{}) {
	defer s.wg.Done()

	revalidate := time.NewTicker(s.revalidateInterval)
	defer revalidate.Stop()
	sweep := time.NewTicker(s.sweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-stop:
			return
		case <-revalidate.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.revalidateInterval)
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn(ctx, "catalog revalidation failed, keeping previous snapshot", logger.Error(err))
			}
			cancel()
		case <-sweep.C:
			if n := s.registry.Sweep(); n > 0 {
				s.logger.Debug(context.Background(), "idle compare sessions dropped", logger.Int("count", n))
			}
		}
	}
}

// Store exposes the underlying store for seeding.
func (s *Service) Store() repository.Store {
	return s.store
}

// Registry exposes the compare session registry.
func (s *Service) Registry() *compare.Registry {
	return s.registry
}

// BaseURL returns the public site URL.
func (s *Service) BaseURL() string {
	return s.baseURL
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.current()
	stats := map[string]interface{}{
		"started":            s.started,
		"revalidateInterval": s.revalidateInterval.String(),
		"compareSessions":    s.registry.Len(),
		"publishedModels":    snap.published(),
		"rankedModels":       snap.board.Len(),
	}
	if !snap.builtAt.IsZero() {
		stats["snapshotBuiltAt"] = snap.builtAt.UTC().Format(time.RFC3339)
	}
	return stats
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}

func wrapFetch(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
