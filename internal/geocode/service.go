package geocode

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Provider defines the interface for geocoding providers.
type Provider interface {
	// Geocode resolves a free-text place to its best-match coordinate.
	// Returns ErrNoMatch when the provider has no result for the place.
	Geocode(ctx context.Context, place string) (*Coordinate, error)

	// Name returns the provider name for logging.
	Name() string
}

// CacheMetrics records cache outcomes for geocoding lookups.
type CacheMetrics interface {
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// ServiceConfig holds configuration for the geocoding service.
type ServiceConfig struct {
	// Provider is the geocoding provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// Metrics records cache hit/miss counts (optional).
	Metrics CacheMetrics

	// CooldownAfterLookup is slept after each successful provider call
	// to respect the provider's usage policy (default: 1 second).
	// Cached hits never pay the cooldown.
	CooldownAfterLookup time.Duration
}

// Service memoizes place lookups for the lifetime of the process.
// Failures are cached alongside successes so a place that could not be
// resolved is never re-queried within the same planning session. The
// cache is unbounded by design; see DESIGN.md for the hardening path.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	metrics  CacheMetrics
	cooldown time.Duration

	mu    sync.Mutex
	cache map[string]*Coordinate // nil value = cached failure
}

// NewService creates a new geocoding service.
func NewService(cfg ServiceConfig) *Service {
	cooldown := cfg.CooldownAfterLookup
	if cooldown == 0 {
		cooldown = time.Second
	}

	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		cooldown: cooldown,
		cache:    make(map[string]*Coordinate),
	}
}

// Resolve maps a place string to a coordinate, or nil when the place is
// empty or could not be resolved. Lookup failures are absorbed here:
// the caller sees nil, never an error, and the failure is memoized.
func (s *Service) Resolve(ctx context.Context, place string) *Coordinate {
	key := strings.ToLower(strings.TrimSpace(place))
	if key == "" {
		return nil
	}

	s.mu.Lock()
	if coord, ok := s.cache[key]; ok {
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.RecordCacheHit(s.provider.Name(), "geocode")
		}
		return coord
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordCacheMiss(s.provider.Name(), "geocode")
	}

	coord, err := s.provider.Geocode(ctx, place)
	if err != nil {
		s.logger.Warn().
			Str("place", place).
			Str("provider", s.provider.Name()).
			Err(err).
			Msg("geocoding failed, caching miss")
		coord = nil
	}

	s.mu.Lock()
	// First resolution wins if a concurrent request raced us here.
	if existing, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return existing
	}
	s.cache[key] = coord
	s.mu.Unlock()

	if coord != nil && s.cooldown > 0 {
		// Cooperative politeness toward the provider, not a hard contract.
		select {
		case <-time.After(s.cooldown):
		case <-ctx.Done():
		}
	}

	return coord
}

// CacheSize returns the number of memoized places, including failures.
func (s *Service) CacheSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}
