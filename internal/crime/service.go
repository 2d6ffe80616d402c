package crime

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripsense/tripsense/internal/geocode"
	"github.com/tripsense/tripsense/internal/trip"
)

// Dataset defines the interface for incident dataset providers.
type Dataset interface {
	// Count returns the number of incidents matching the filter.
	Count(ctx context.Context, f Filter) (int, error)

	// TopOffenses returns the most frequent offense categories matching
	// the filter, descending by count, with null categories bucketed
	// under "Unknown".
	TopOffenses(ctx context.Context, f Filter, limit int) ([]OffenseCount, error)

	// Name returns the dataset name for Stats.Source and logging.
	Name() string
}

// Geocoder resolves place strings to coordinates. Satisfied by
// *geocode.Service.
type Geocoder interface {
	Resolve(ctx context.Context, place string) *geocode.Coordinate
}

// ServiceConfig holds configuration for the crime overlay service.
type ServiceConfig struct {
	// Dataset is the incident dataset (required).
	Dataset Dataset

	// Geocoder resolves leg endpoints (required).
	Geocoder Geocoder

	// Logger for service operations.
	Logger zerolog.Logger

	// LookbackDays is the widening schedule of lookback windows, each
	// ending at the trip's end instant (default: 45, 180, 365).
	LookbackDays []int

	// RadiusStepsM is the widening schedule of search radii in meters
	// (default: 400, 800, 1200).
	RadiusStepsM []int

	// TopOffenseLimit is how many offense categories to fetch for the
	// winning filter (default: 5).
	TopOffenseLimit int
}

// Service builds crime overlays. Incident datasets are sparse and
// laggy: a fixed radius and window would silently report a false "zero
// risk" in low-data areas, so the search widens its lookback window
// (outer loop) and radius (inner loop) until something turns up,
// preferring the tightest scope that produced a signal. The loop order
// is a deliberate policy: recency over locality.
type Service struct {
	dataset         Dataset
	geocoder        Geocoder
	logger          zerolog.Logger
	lookbackDays    []int
	radiusStepsM    []int
	topOffenseLimit int
}

// NewService creates a new crime overlay service.
func NewService(cfg ServiceConfig) *Service {
	lookbacks := cfg.LookbackDays
	if len(lookbacks) == 0 {
		lookbacks = []int{45, 180, 365}
	}

	radii := cfg.RadiusStepsM
	if len(radii) == 0 {
		radii = []int{400, 800, 1200}
	}

	limit := cfg.TopOffenseLimit
	if limit == 0 {
		limit = 5
	}

	return &Service{
		dataset:         cfg.Dataset,
		geocoder:        cfg.Geocoder,
		logger:          cfg.Logger,
		lookbackDays:    lookbacks,
		radiusStepsM:    radii,
		topOffenseLimit: limit,
	}
}

// BuildOverlay builds the crime sidecar for an itinerary. Each leg
// endpoint is resolved and queried independently; a failure at one
// endpoint never fails the overlay.
func (s *Service) BuildOverlay(ctx context.Context, req *trip.Request, itin *trip.Itinerary) *Overlay {
	overlay := &Overlay{
		LegCrime: make([]LegCrime, 0, len(itin.Legs)),
		Params: SearchParams{
			LookbackDays: s.lookbackDays,
			RadiusStepsM: s.radiusStepsM,
		},
	}

	for _, leg := range itin.Legs {
		lc := LegCrime{
			Sequence:     leg.Sequence,
			FromLocation: leg.FromLocation,
			ToLocation:   leg.ToLocation,
		}
		if leg.FromLocation != "" {
			lc.FromCrime = s.StatsForPlace(ctx, leg.FromLocation, req.StartTime, req.EndTime)
		}
		if leg.ToLocation != "" {
			lc.ToCrime = s.StatsForPlace(ctx, leg.ToLocation, req.StartTime, req.EndTime)
		}
		overlay.LegCrime = append(overlay.LegCrime, lc)
	}
	return overlay
}

// StatsForPlace geocodes a place and runs the adaptive search anchored
// at the trip's end instant. Never returns nil.
func (s *Service) StatsForPlace(ctx context.Context, place string, baseStart, baseEnd time.Time) *Stats {
	widestRadius := s.radiusStepsM[len(s.radiusStepsM)-1]
	widestLookback := s.lookbackDays[len(s.lookbackDays)-1]

	coord := s.geocoder.Resolve(ctx, place)
	if coord == nil {
		return &Stats{
			Count:       nil,
			Window:      windowLabel(baseStart, baseEnd),
			RadiusM:     widestRadius,
			TopOffenses: []OffenseCount{},
			Source:      s.dataset.Name(),
			Note:        "geocoding failed; cannot compute nearby stats",
		}
	}

	// Widen the window first, then the radius within it.
	for _, days := range s.lookbackDays {
		start := baseEnd.AddDate(0, 0, -days)
		if stats := s.statsForPoint(ctx, coord, start, baseEnd); stats != nil {
			stats.Widened = days != s.lookbackDays[0] || stats.RadiusM != s.radiusStepsM[0]
			if stats.Widened {
				stats.Note = "search widened beyond the default radius/window to find signal"
			}
			return stats
		}
	}

	// Exhausted: a legitimate zero, reported with the widest parameters.
	zero := 0
	return &Stats{
		Count:       &zero,
		Window:      windowLabel(baseEnd.AddDate(0, 0, -widestLookback), baseEnd),
		RadiusM:     widestRadius,
		TopOffenses: []OffenseCount{},
		Source:      s.dataset.Name(),
		Widened:     true,
		Note:        "no geocoded matches for any window/radius; dataset may lag or coords missing",
	}
}

// statsForPoint tries each radius at one window, returning the first
// non-zero result at the tightest radius that produced one. Nil when
// every radius came back empty or failed.
func (s *Service) statsForPoint(ctx context.Context, coord *geocode.Coordinate, start, end time.Time) *Stats {
	for _, radiusM := range s.radiusStepsM {
		f := Filter{
			BBox:  BoundingBoxAround(coord.Lat, coord.Lon, radiusM),
			Start: start,
			End:   end,
		}

		count, err := s.dataset.Count(ctx, f)
		if err != nil {
			s.logger.Warn().
				Int("radius_m", radiusM).
				Time("window_start", start).
				Str("dataset", s.dataset.Name()).
				Err(err).
				Msg("incident count query failed")
			continue
		}
		if count <= 0 {
			continue
		}

		// Top offenses for exactly the winning filter. Best effort: a
		// failed grouped query degrades to an empty list.
		offenses, err := s.dataset.TopOffenses(ctx, f, s.topOffenseLimit)
		if err != nil {
			s.logger.Warn().
				Int("radius_m", radiusM).
				Str("dataset", s.dataset.Name()).
				Err(err).
				Msg("top offense query failed")
			offenses = nil
		}
		if offenses == nil {
			offenses = []OffenseCount{}
		}

		return &Stats{
			Count:       &count,
			Window:      windowLabel(start, end),
			RadiusM:     radiusM,
			TopOffenses: offenses,
			Source:      s.dataset.Name(),
		}
	}
	return nil
}
