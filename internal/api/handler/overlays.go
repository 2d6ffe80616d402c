package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tripsense/tripsense/internal/api/models"
	"github.com/tripsense/tripsense/internal/api/response"
	"github.com/tripsense/tripsense/internal/crime"
	"github.com/tripsense/tripsense/internal/trip"
	"github.com/tripsense/tripsense/internal/weather"
)

// OverlayHandler handles the weather and crime sidecar endpoints.
type OverlayHandler struct {
	weather *weather.Service
	crime   *crime.Service
}

// NewOverlayHandler creates a new OverlayHandler.
func NewOverlayHandler(weatherService *weather.Service, crimeService *crime.Service) *OverlayHandler {
	return &OverlayHandler{
		weather: weatherService,
		crime:   crimeService,
	}
}

// WeatherOverlay handles POST /v1/overlays/weather.
func (h *OverlayHandler) WeatherOverlay(w http.ResponseWriter, r *http.Request) {
	req, itin, ok := decodeOverlayRequest(w, r)
	if !ok {
		return
	}

	overlay := h.weather.BuildOverlay(r.Context(), req, itin)
	response.JSON(w, r, http.StatusOK, overlay)
}

// CrimeOverlay handles POST /v1/overlays/crime.
func (h *OverlayHandler) CrimeOverlay(w http.ResponseWriter, r *http.Request) {
	req, itin, ok := decodeOverlayRequest(w, r)
	if !ok {
		return
	}

	overlay := h.crime.BuildOverlay(r.Context(), req, itin)
	response.JSON(w, r, http.StatusOK, overlay)
}

// decodeOverlayRequest parses and validates the shared overlay body.
// Writes the error response itself when validation fails.
func decodeOverlayRequest(w http.ResponseWriter, r *http.Request) (*trip.Request, *trip.Itinerary, bool) {
	var input models.OverlayRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return nil, nil, false
	}

	req, err := trip.NewRequest(input.Trip)
	if err != nil {
		response.BadRequest(w, r, err.Error(), tripFieldErrors(err))
		return nil, nil, false
	}
	if len(input.Itinerary.Legs) == 0 {
		response.BadRequest(w, r, "itinerary must contain at least one leg", []models.FieldError{
			{Field: "itinerary.legs", Message: "required"},
		})
		return nil, nil, false
	}

	return req, &input.Itinerary, true
}
