package snapshot_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripsense/tripsense/internal/snapshot"
	"github.com/tripsense/tripsense/internal/trip"
)

func snapshotFixture(t *testing.T, summary string) *snapshot.Snapshot {
	t.Helper()
	req, err := trip.NewRequest(trip.RawRequest{
		TransportModes: []string{"walk"},
		StartTime:      "2025-10-04T08:00",
		TripDuration:   "6",
	})
	require.NoError(t, err)

	itin := &trip.Itinerary{
		Summary: summary,
		Legs:    []trip.Leg{{Sequence: 1, FromLocation: "A", ToLocation: "B"}},
	}
	return snapshot.New(snapshot.KindPlan, req, itin)
}

func TestMemoryRepository_EmptyReturnsErrNoSnapshot(t *testing.T) {
	repo := snapshot.NewMemoryRepository()

	_, err := repo.Last(context.Background())
	assert.ErrorIs(t, err, snapshot.ErrNoSnapshot)
}

func TestMemoryRepository_SaveAndLast(t *testing.T) {
	repo := snapshot.NewMemoryRepository()
	s := snapshotFixture(t, "first")

	require.NoError(t, repo.SaveLast(context.Background(), s))

	got, err := repo.Last(context.Background())
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, "first", got.Itinerary.Summary)
	assert.Equal(t, snapshot.KindPlan, got.Kind)
}

func TestMemoryRepository_NewestWins(t *testing.T) {
	repo := snapshot.NewMemoryRepository()

	require.NoError(t, repo.SaveLast(context.Background(), snapshotFixture(t, "first")))
	second := snapshotFixture(t, "second")
	require.NoError(t, repo.SaveLast(context.Background(), second))

	got, err := repo.Last(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, "second", got.Itinerary.Summary)
}

func TestMemoryRepository_LastReturnsCopy(t *testing.T) {
	repo := snapshot.NewMemoryRepository()
	require.NoError(t, repo.SaveLast(context.Background(), snapshotFixture(t, "stable")))

	got, err := repo.Last(context.Background())
	require.NoError(t, err)
	got.Itinerary.Summary = "mutated"

	again, err := repo.Last(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stable", again.Itinerary.Summary)
}
