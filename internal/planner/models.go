// Package planner orchestrates itinerary generation and conservative
// re-optimization through an external planning collaborator.
package planner

import (
	"errors"
	"time"

	"github.com/tripsense/tripsense/internal/trip"
	"github.com/tripsense/tripsense/internal/weather"
)

// Planner errors.
var (
	ErrProviderNotConfigured = errors.New("planning provider is not configured")
	ErrEmptyItinerary        = errors.New("planner returned an itinerary with no legs")
)

// OptimizationSignals carries the new information that may justify a
// re-plan: a budget, a weather overlay, free-form preference notes.
// All fields optional; an empty value means "no new signal".
type OptimizationSignals struct {
	TripBudgetUSD *float64         `json:"tripBudgetUSD,omitempty"`
	Weather       *weather.Overlay `json:"weather,omitempty"`
	Notes         []string         `json:"userNotes,omitempty"`
}

// ChangeItem is one diff the optimizer made against the current plan.
type ChangeItem struct {
	ChangeType             string    `json:"change_type"` // add, remove, extend, shorten, move, replace
	TargetSequence         *int      `json:"target_sequence,omitempty"`
	NewSequence            *int      `json:"new_sequence,omitempty"`
	Before                 *trip.Leg `json:"before,omitempty"`
	After                  *trip.Leg `json:"after,omitempty"`
	Reason                 string    `json:"reason"`
	ExpectedTimeDeltaMin   *int      `json:"expected_time_delta_min,omitempty"`
	ExpectedBudgetDeltaUSD *float64  `json:"expected_budget_delta_usd,omitempty"`
	RiskNotes              string    `json:"risk_notes,omitempty"`
}

// OptimizationResult is the optimizer's full answer: the diffs, the
// complete updated itinerary, and the assumptions behind both.
type OptimizationResult struct {
	Summary       string         `json:"summary"`
	Changes       []ChangeItem   `json:"changes"`
	Optimized     trip.Itinerary `json:"optimized"`
	Assumptions   []string       `json:"assumptions"`
	BudgetSummary string         `json:"budget_summary,omitempty"`
	Notes         []string       `json:"notes"`
}

// LegRisk is one compressed weather-risk row: just the flags and
// conditions the optimizer needs, never the raw samples.
type LegRisk struct {
	Sequence        int       `json:"sequence"`
	DepartTime      time.Time `json:"departTime"`
	ArriveTime      time.Time `json:"arriveTime"`
	DepartCondition string    `json:"departCondition,omitempty"`
	ArriveCondition string    `json:"arriveCondition,omitempty"`
	DepartBad       bool      `json:"departBad"`
	ArriveBad       bool      `json:"arriveBad"`
}

// Preferences holds the new constraints handed to the optimizer.
type Preferences struct {
	Notes     []string `json:"notes"`
	BudgetUSD *float64 `json:"budgetUSD,omitempty"`
}

// Window is the trip's local time window.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Context is the minimal optimizer input. Prior summaries and
// assumptions are deliberately absent so the collaborator cannot infer
// from them.
type Context struct {
	TripWindow           Window      `json:"trip_window"`
	AllowedModes         []string    `json:"allowedModes"`
	WheelchairAccessible bool        `json:"wheelchairAccessible"`
	NewPreferences       Preferences `json:"new_preferences"`
	WeatherRisks         []LegRisk   `json:"weather_risks"`
	CurrentLegs          []trip.Leg  `json:"current_legs"`
}
