package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tripsense/tripsense/internal/api/response"
	"github.com/tripsense/tripsense/internal/snapshot"
)

// ItineraryHandler serves the stored itinerary snapshot.
type ItineraryHandler struct {
	snapshots snapshot.Repository
	logger    zerolog.Logger
}

// NewItineraryHandler creates a new ItineraryHandler.
func NewItineraryHandler(snapshots snapshot.Repository, logger zerolog.Logger) *ItineraryHandler {
	return &ItineraryHandler{
		snapshots: snapshots,
		logger:    logger,
	}
}

// LastItinerary handles GET /v1/itinerary/last.
func (h *ItineraryHandler) LastItinerary(w http.ResponseWriter, r *http.Request) {
	s, err := h.snapshots.Last(r.Context())
	if err != nil {
		if errors.Is(err, snapshot.ErrNoSnapshot) {
			response.NotFound(w, r, "no itinerary snapshot stored")
			return
		}
		h.logger.Error().Err(err).Msg("reading itinerary snapshot failed")
		response.InternalError(w, r, "reading itinerary snapshot failed")
		return
	}

	response.JSON(w, r, http.StatusOK, s)
}
