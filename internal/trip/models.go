// Package trip contains the core trip domain: request validation, the derived
// trip window, itinerary models, and per-leg time resolution.
package trip

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Trip errors.
var (
	ErrStartTimeRequired = errors.New("trip start time is required")
	ErrInvalidStartTime  = errors.New("trip start time is not a recognized timestamp")
	ErrNoTransportModes  = errors.New("at least one transport mode is required")
)

// Supported transport modes.
const (
	ModeSubway   = "subway"
	ModeWalk     = "walk"
	ModeActivity = "activity" // dwell time at a location, produced by the planner
)

// UnsupportedModeError reports transport modes outside the allow-list.
type UnsupportedModeError struct {
	Modes []string
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("transport mode not supported: %s (allowed: %s, %s)",
		strings.Join(e.Modes, ", "), ModeSubway, ModeWalk)
}

// RawRequest is the wire-level trip request before validation.
// Times are timezone-naive local strings; duration is free-form text.
type RawRequest struct {
	StartLocation        string   `json:"startLocation"`
	EndLocation          string   `json:"endLocation,omitempty"`
	TransportModes       []string `json:"transportMode"`
	StartTime            string   `json:"startTime"`
	TripDuration         string   `json:"tripDuration,omitempty"`
	WheelchairAccessible bool     `json:"wheelchairAccessible"`
	Cuisines             string   `json:"cuisines,omitempty"`
	DietPreferences      string   `json:"dietPreferences,omitempty"`
	ActivityPreferences  string   `json:"activityPreferences,omitempty"`
	BudgetPreferences    string   `json:"budgetPreferences,omitempty"`
}

// Request is a validated trip request with its derived time window.
// StartTime and EndTime are set once by NewRequest and must not be
// modified afterwards; EndTime is always 1..24 hours after StartTime.
type Request struct {
	StartLocation        string    `json:"startLocation"`
	EndLocation          string    `json:"endLocation,omitempty"`
	TransportModes       []string  `json:"transportMode"`
	StartTime            time.Time `json:"startTime"`
	EndTime              time.Time `json:"endTime"`
	TripDuration         string    `json:"tripDuration,omitempty"`
	WheelchairAccessible bool      `json:"wheelchairAccessible"`
	Cuisines             string    `json:"cuisines,omitempty"`
	DietPreferences      string    `json:"dietPreferences,omitempty"`
	ActivityPreferences  string    `json:"activityPreferences,omitempty"`
	BudgetPreferences    string    `json:"budgetPreferences,omitempty"`
}

// Window returns the half-open trip window [start, end).
func (r *Request) Window() (start, end time.Time) {
	return r.StartTime, r.EndTime
}

// Leg is one travel or activity segment of an itinerary.
// Depart/arrive times are loosely formatted strings as produced by the
// planner (bare "HH:MM" or full ISO) and may be absent; resolving them
// into instants is the scheduler's job, not a stored invariant.
type Leg struct {
	Sequence           int      `json:"sequence"`
	Mode               string   `json:"mode"`
	DepartTime         string   `json:"departTime,omitempty"`
	ArriveTime         string   `json:"arriveTime,omitempty"`
	FromLocation       string   `json:"fromLocation"`
	ToLocation         string   `json:"toLocation"`
	EstDurationMin     *int     `json:"estDurationMin,omitempty"`
	AccessibilityNotes string   `json:"accessibilityNotes,omitempty"`
	CostEstimateUSD    *float64 `json:"costEstimateUSD,omitempty"`
	ChoiceReasoning    string   `json:"choiceReasoning,omitempty"`
}

// Itinerary is a planned sequence of legs. It is produced fresh per
// planning or optimization call. Overlay builders never mutate it;
// overlays are sidecar structures keyed by leg sequence.
type Itinerary struct {
	Summary             string   `json:"summary"`
	TotalEstDurationMin *int     `json:"totalEstDurationMin,omitempty"`
	TotalEstCostUSD     *float64 `json:"totalEstCostUSD,omitempty"`
	Assumptions         []string `json:"assumptions"`
	Legs                []Leg    `json:"legs"`
}

// NormalizeSequence rewrites leg sequence numbers to 1..N in list order.
// Idempotent. Applied to every externally produced itinerary so the
// contiguity invariant holds regardless of what the planner returned.
func NormalizeSequence(legs []Leg) []Leg {
	for i := range legs {
		legs[i].Sequence = i + 1
	}
	return legs
}
