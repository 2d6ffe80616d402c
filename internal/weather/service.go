package weather

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripsense/tripsense/internal/trip"
)

// Provider defines the interface for forecast providers.
type Provider interface {
	// ForecastByQuery fetches a multi-day forecast series for a coarse
	// city query, ordered by sample time.
	ForecastByQuery(ctx context.Context, query string) ([]Sample, error)

	// Name returns the provider name for logging.
	Name() string
}

// ServiceConfig holds configuration for the weather overlay service.
type ServiceConfig struct {
	// Provider is the forecast provider. Nil means no provider is
	// configured; overlays soft-degrade to an empty result with a note.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service builds weather overlays. Forecast series are cached by
// case-normalized query string for the lifetime of the process,
// write-once per key; failed fetches are cached too so a bad query is
// attempted at most once per session.
type Service struct {
	provider Provider
	logger   zerolog.Logger

	mu    sync.Mutex
	cache map[string][]Sample // nil value = cached failure
}

// NewService creates a new weather overlay service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		cache:    make(map[string][]Sample),
	}
}

// Configured reports whether a forecast provider is available.
func (s *Service) Configured() bool {
	return s.provider != nil
}

// BuildOverlay builds the weather sidecar for an itinerary. For each
// leg it resolves depart/arrive instants, derives a city query for each
// endpoint, and picks the forecast sample closest in time to each
// instant. Endpoints that cannot be resolved yield nil samples; the
// overlay itself never fails.
func (s *Service) BuildOverlay(ctx context.Context, req *trip.Request, itin *trip.Itinerary) *Overlay {
	if s.provider == nil {
		return &Overlay{
			LegWeather: []LegWeather{},
			Note:       "no weather provider configured; overlay skipped",
		}
	}

	resolved := trip.ResolveLegTimes(req, itin.Legs)

	overlay := &Overlay{LegWeather: make([]LegWeather, 0, len(resolved))}
	for _, sl := range resolved {
		// From/to are queried separately: a leg may span two places.
		fromSeries := s.forecastForPlace(ctx, sl.Leg.FromLocation)
		toSeries := s.forecastForPlace(ctx, sl.Leg.ToLocation)

		overlay.LegWeather = append(overlay.LegWeather, LegWeather{
			Sequence:      sl.Leg.Sequence,
			FromLocation:  sl.Leg.FromLocation,
			ToLocation:    sl.Leg.ToLocation,
			DepartTime:    sl.Depart,
			ArriveTime:    sl.Arrive,
			DepartWeather: closestSample(fromSeries, sl.Depart),
			ArriveWeather: closestSample(toSeries, sl.Arrive),
		})
	}
	return overlay
}

// forecastForPlace resolves a place to a city query and returns its
// cached or freshly fetched forecast series. Nil on any failure.
func (s *Service) forecastForPlace(ctx context.Context, place string) []Sample {
	query := ExtractCityQuery(place)
	if query == "" {
		return nil
	}
	key := strings.ToLower(query)

	s.mu.Lock()
	if series, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return series
	}
	s.mu.Unlock()

	series, err := s.provider.ForecastByQuery(ctx, query)
	if err != nil {
		s.logger.Warn().
			Str("query", query).
			Str("provider", s.provider.Name()).
			Err(err).
			Msg("forecast fetch failed, caching miss")
		series = nil
	}

	s.mu.Lock()
	if existing, ok := s.cache[key]; ok {
		series = existing
	} else {
		s.cache[key] = series
	}
	s.mu.Unlock()

	return series
}

// closestSample picks the sample whose timestamp has the smallest
// absolute distance to the target instant.
func closestSample(series []Sample, target time.Time) *Sample {
	if len(series) == 0 {
		return nil
	}

	best := 0
	bestDiff := absDuration(series[0].Time.Sub(target))
	for i := 1; i < len(series); i++ {
		if diff := absDuration(series[i].Time.Sub(target)); diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}
	picked := series[best]
	return &picked
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// CacheSize returns the number of cached queries, including failures.
func (s *Service) CacheSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}
