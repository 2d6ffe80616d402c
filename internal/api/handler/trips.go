// Package handler provides HTTP handlers for the tripsense API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tripsense/tripsense/internal/api/models"
	"github.com/tripsense/tripsense/internal/api/response"
	"github.com/tripsense/tripsense/internal/planner"
	"github.com/tripsense/tripsense/internal/snapshot"
	"github.com/tripsense/tripsense/internal/trip"
)

// TripHandler handles planning and optimization endpoints.
type TripHandler struct {
	planner   *planner.Service
	snapshots snapshot.Repository
	logger    zerolog.Logger
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(plannerService *planner.Service, snapshots snapshot.Repository, logger zerolog.Logger) *TripHandler {
	return &TripHandler{
		planner:   plannerService,
		snapshots: snapshots,
		logger:    logger,
	}
}

// PlanTrip handles POST /v1/trips:plan.
func (h *TripHandler) PlanTrip(w http.ResponseWriter, r *http.Request) {
	var raw trip.RawRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	req, err := trip.NewRequest(raw)
	if err != nil {
		response.BadRequest(w, r, err.Error(), tripFieldErrors(err))
		return
	}

	itin, err := h.planner.Plan(r.Context(), req)
	if err != nil {
		if errors.Is(err, planner.ErrProviderNotConfigured) {
			response.ServiceUnavailable(w, r, "planning provider is not configured")
			return
		}
		h.logger.Error().Err(err).Msg("plan request failed")
		response.ServiceUnavailable(w, r, "planning provider unavailable")
		return
	}

	snapshotID := h.store(r, snapshot.New(snapshot.KindPlan, req, itin))
	response.JSON(w, r, http.StatusOK, models.PlanTripResponse{
		SnapshotID: snapshotID,
		Itinerary:  *itin,
	})
}

// OptimizeTrip handles POST /v1/trips:optimize.
func (h *TripHandler) OptimizeTrip(w http.ResponseWriter, r *http.Request) {
	var input models.OptimizeTripRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	req, err := trip.NewRequest(input.Trip)
	if err != nil {
		response.BadRequest(w, r, err.Error(), tripFieldErrors(err))
		return
	}
	if len(input.Itinerary.Legs) == 0 {
		response.BadRequest(w, r, "itinerary must contain at least one leg", []models.FieldError{
			{Field: "itinerary.legs", Message: "required"},
		})
		return
	}

	result, err := h.planner.Optimize(r.Context(), req, &input.Itinerary, input.Signals)
	if err != nil {
		if errors.Is(err, planner.ErrProviderNotConfigured) {
			response.ServiceUnavailable(w, r, "planning provider is not configured")
			return
		}
		h.logger.Error().Err(err).Msg("optimize request failed")
		response.ServiceUnavailable(w, r, "planning provider unavailable")
		return
	}

	snapshotID := h.store(r, snapshot.New(snapshot.KindOptimize, req, &result.Optimized))
	response.JSON(w, r, http.StatusOK, models.OptimizeTripResponse{
		SnapshotID: snapshotID,
		Result:     *result,
	})
}

// store persists a snapshot best-effort. Storage failures are logged
// but never fail the planning response.
func (h *TripHandler) store(r *http.Request, s *snapshot.Snapshot) *uuid.UUID {
	if h.snapshots == nil {
		return nil
	}
	if err := h.snapshots.SaveLast(r.Context(), s); err != nil {
		h.logger.Warn().Err(err).Msg("saving itinerary snapshot failed")
		return nil
	}
	return &s.ID
}

// tripFieldErrors maps request validation errors to field errors.
func tripFieldErrors(err error) []models.FieldError {
	var modeErr *trip.UnsupportedModeError
	switch {
	case errors.Is(err, trip.ErrStartTimeRequired):
		return []models.FieldError{{Field: "startTime", Message: "required", Code: "REQUIRED"}}
	case errors.Is(err, trip.ErrInvalidStartTime):
		return []models.FieldError{{Field: "startTime", Message: "not a recognized timestamp", Code: "INVALID"}}
	case errors.Is(err, trip.ErrNoTransportModes):
		return []models.FieldError{{Field: "transportMode", Message: "at least one mode required", Code: "REQUIRED"}}
	case errors.As(err, &modeErr):
		return []models.FieldError{{Field: "transportMode", Message: modeErr.Error(), Code: "UNSUPPORTED"}}
	}
	return nil
}
