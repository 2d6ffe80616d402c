package models

import (
	"github.com/google/uuid"

	"github.com/tripsense/tripsense/internal/planner"
	"github.com/tripsense/tripsense/internal/trip"
)

// PlanTripResponse is the body for POST /v1/trips:plan.
type PlanTripResponse struct {
	SnapshotID *uuid.UUID     `json:"snapshotId,omitempty"`
	Itinerary  trip.Itinerary `json:"itinerary"`
}

// OptimizeTripRequest is the body for POST /v1/trips:optimize. The raw
// trip is revalidated on every call; the itinerary is the current plan
// being revised.
type OptimizeTripRequest struct {
	Trip      trip.RawRequest             `json:"trip"`
	Itinerary trip.Itinerary              `json:"itinerary"`
	Signals   planner.OptimizationSignals `json:"signals"`
}

// OptimizeTripResponse is the body for POST /v1/trips:optimize.
type OptimizeTripResponse struct {
	SnapshotID *uuid.UUID                 `json:"snapshotId,omitempty"`
	Result     planner.OptimizationResult `json:"result"`
}

// OverlayRequest is the shared body for the overlay endpoints: the raw
// trip plus the itinerary the overlay annotates.
type OverlayRequest struct {
	Trip      trip.RawRequest `json:"trip"`
	Itinerary trip.Itinerary  `json:"itinerary"`
}
