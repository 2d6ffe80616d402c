package planner

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tripsense/tripsense/internal/trip"
	"github.com/tripsense/tripsense/internal/weather"
)

// Provider is the external planning collaborator.
type Provider interface {
	// GenerateItinerary produces a fresh itinerary for a validated trip
	// request.
	GenerateItinerary(ctx context.Context, req *trip.Request) (*trip.Itinerary, error)

	// OptimizeItinerary revises a plan given the minimal context. Only
	// called when the gate found an actionable signal.
	OptimizeItinerary(ctx context.Context, pc Context) (*OptimizationResult, error)

	// Name returns the provider name for logging.
	Name() string
}

// ServiceConfig holds configuration for the planning service.
type ServiceConfig struct {
	// Provider is the planning collaborator (required).
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service runs the plan and optimize flows around the collaborator.
// The optimize gate is deterministic and local: the collaborator is
// never consulted just to learn that nothing changed.
type Service struct {
	provider Provider
	logger   zerolog.Logger
}

// NewService creates a new planning service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Plan generates a fresh itinerary and normalizes its leg sequence.
func (s *Service) Plan(ctx context.Context, req *trip.Request) (*trip.Itinerary, error) {
	if s.provider == nil {
		return nil, ErrProviderNotConfigured
	}

	itin, err := s.provider.GenerateItinerary(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(itin.Legs) == 0 {
		return nil, ErrEmptyItinerary
	}

	itin.Legs = trip.NormalizeSequence(itin.Legs)
	s.logger.Info().
		Str("provider", s.provider.Name()).
		Int("legs", len(itin.Legs)).
		Msg("itinerary generated")
	return itin, nil
}

// Optimize applies the deterministic gate and, when a signal exists,
// asks the collaborator for a revision. The no-op path returns a copy
// of the current itinerary with an appended assumption.
func (s *Service) Optimize(ctx context.Context, req *trip.Request, current *trip.Itinerary, signals OptimizationSignals) (*OptimizationResult, error) {
	anyBad, risks := SummarizeWeatherRisk(signals.Weather)

	if !anyBad && len(signals.Notes) == 0 && signals.TripBudgetUSD == nil {
		s.logger.Info().Msg("no actionable signals; skipping optimization call")
		return noOpResult(current), nil
	}

	if s.provider == nil {
		return nil, ErrProviderNotConfigured
	}

	legs := make([]trip.Leg, len(current.Legs))
	copy(legs, current.Legs)

	pc := Context{
		TripWindow:           Window{Start: req.StartTime, End: req.EndTime},
		AllowedModes:         req.TransportModes,
		WheelchairAccessible: req.WheelchairAccessible,
		NewPreferences: Preferences{
			Notes:     signals.Notes,
			BudgetUSD: signals.TripBudgetUSD,
		},
		WeatherRisks: risks,
		CurrentLegs:  legs,
	}

	result, err := s.provider.OptimizeItinerary(ctx, pc)
	if err != nil {
		return nil, err
	}

	result.Optimized.Legs = trip.NormalizeSequence(result.Optimized.Legs)
	s.logger.Info().
		Str("provider", s.provider.Name()).
		Int("changes", len(result.Changes)).
		Bool("weather_risk", anyBad).
		Msg("itinerary optimized")
	return result, nil
}

// SummarizeWeatherRisk compresses an overlay to per-leg risk rows and
// reports whether any endpoint is adverse. Nil overlay means no risk.
func SummarizeWeatherRisk(overlay *weather.Overlay) (bool, []LegRisk) {
	if overlay == nil {
		return false, nil
	}

	anyBad := false
	risks := make([]LegRisk, 0, len(overlay.LegWeather))
	for _, lw := range overlay.LegWeather {
		departBad := weather.IsAdverse(lw.DepartWeather)
		arriveBad := weather.IsAdverse(lw.ArriveWeather)
		anyBad = anyBad || departBad || arriveBad

		risk := LegRisk{
			Sequence:   lw.Sequence,
			DepartTime: lw.DepartTime,
			ArriveTime: lw.ArriveTime,
			DepartBad:  departBad,
			ArriveBad:  arriveBad,
		}
		if lw.DepartWeather != nil {
			risk.DepartCondition = lw.DepartWeather.Condition
		}
		if lw.ArriveWeather != nil {
			risk.ArriveCondition = lw.ArriveWeather.Condition
		}
		risks = append(risks, risk)
	}
	return anyBad, risks
}

// noOpResult returns the current itinerary untouched except for one
// appended assumption recording why nothing changed.
func noOpResult(current *trip.Itinerary) *OptimizationResult {
	optimized := *current
	optimized.Assumptions = append(append([]string{}, current.Assumptions...), "No new signals; kept as-is.")
	optimized.Legs = make([]trip.Leg, len(current.Legs))
	copy(optimized.Legs, current.Legs)

	return &OptimizationResult{
		Summary:     "No weather risks or new preferences. Itinerary unchanged.",
		Changes:     []ChangeItem{},
		Optimized:   optimized,
		Assumptions: optimized.Assumptions,
		Notes:       []string{},
	}
}
