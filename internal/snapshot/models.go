// Package snapshot persists the most recent itinerary so it can be
// replayed by downstream consumers without re-planning.
package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tripsense/tripsense/internal/trip"
)

// ErrNoSnapshot is returned when no itinerary has been stored yet.
var ErrNoSnapshot = errors.New("no itinerary snapshot stored")

// Snapshot kinds.
const (
	KindPlan     = "plan"
	KindOptimize = "optimize"
)

// Snapshot is one stored itinerary with the request that produced it.
type Snapshot struct {
	ID        uuid.UUID      `json:"id"`
	Kind      string         `json:"kind"`
	Request   trip.Request   `json:"request"`
	Itinerary trip.Itinerary `json:"itinerary"`
	CreatedAt time.Time      `json:"createdAt"`
}

// New builds a snapshot with a fresh ID and timestamp.
func New(kind string, req *trip.Request, itin *trip.Itinerary) *Snapshot {
	return &Snapshot{
		ID:        uuid.New(),
		Kind:      kind,
		Request:   *req,
		Itinerary: *itin,
		CreatedAt: time.Now().UTC(),
	}
}

// Repository stores the last itinerary. Only the most recent snapshot
// is retrievable; history retention is an implementation detail.
type Repository interface {
	// SaveLast stores a snapshot as the new latest.
	SaveLast(ctx context.Context, s *Snapshot) error

	// Last returns the most recent snapshot, or ErrNoSnapshot.
	Last(ctx context.Context) (*Snapshot, error)
}
