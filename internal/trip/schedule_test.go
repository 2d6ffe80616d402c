package trip_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripsense/tripsense/internal/trip"
)

func mustRequest(t *testing.T, start, duration string) *trip.Request {
	t.Helper()
	req, err := trip.NewRequest(trip.RawRequest{
		TransportModes: []string{"walk"},
		StartTime:      start,
		TripDuration:   duration,
	})
	require.NoError(t, err)
	return req
}

func TestResolveLegTimes_UniformSlots(t *testing.T) {
	req := mustRequest(t, "2025-10-04T08:00", "10")

	legs := []trip.Leg{
		{Sequence: 1, FromLocation: "A", ToLocation: "B"},
		{Sequence: 2, FromLocation: "B", ToLocation: "C"},
		{Sequence: 3, FromLocation: "C", ToLocation: "D"},
		{Sequence: 4, FromLocation: "D", ToLocation: "E"},
	}

	resolved := trip.ResolveLegTimes(req, legs)
	require.Len(t, resolved, 4)

	// Four contiguous 2.5-hour slots starting at 08:00.
	slot := 150 * time.Minute
	for i, sl := range resolved {
		wantDep := req.StartTime.Add(slot * time.Duration(i))
		assert.Equal(t, wantDep, sl.Depart, "leg %d depart", i+1)
		assert.Equal(t, wantDep.Add(slot), sl.Arrive, "leg %d arrive", i+1)
	}
	assert.Equal(t, req.EndTime, resolved[3].Arrive)
}

func TestResolveLegTimes_ExplicitTimesKept(t *testing.T) {
	req := mustRequest(t, "2025-10-04T08:00", "10")

	legs := []trip.Leg{
		{Sequence: 1, DepartTime: "2025-10-04T09:15", ArriveTime: "2025-10-04T10:45"},
	}

	resolved := trip.ResolveLegTimes(req, legs)
	require.Len(t, resolved, 1)
	assert.Equal(t, time.Date(2025, 10, 4, 9, 15, 0, 0, time.Local), resolved[0].Depart)
	assert.Equal(t, time.Date(2025, 10, 4, 10, 45, 0, 0, time.Local), resolved[0].Arrive)
}

func TestResolveLegTimes_ShortTokenAttachesToTripDate(t *testing.T) {
	req := mustRequest(t, "2025-10-04T08:00", "10")

	legs := []trip.Leg{
		{Sequence: 1, DepartTime: "09:30", ArriveTime: "11:00"},
	}

	resolved := trip.ResolveLegTimes(req, legs)
	require.Len(t, resolved, 1)
	assert.Equal(t, time.Date(2025, 10, 4, 9, 30, 0, 0, time.Local), resolved[0].Depart)
	assert.Equal(t, time.Date(2025, 10, 4, 11, 0, 0, 0, time.Local), resolved[0].Arrive)
}

func TestResolveLegTimes_PartialTimes(t *testing.T) {
	req := mustRequest(t, "2025-10-04T08:00", "8")
	slot := 4 * time.Hour // two legs

	t.Run("depart only extends by slot", func(t *testing.T) {
		legs := []trip.Leg{
			{Sequence: 1, DepartTime: "09:00"},
			{Sequence: 2, DepartTime: "14:00"},
		}
		resolved := trip.ResolveLegTimes(req, legs)
		require.Len(t, resolved, 2)
		assert.Equal(t, resolved[0].Depart.Add(slot), resolved[0].Arrive)
		// Second leg's slot would overrun the window; arrive is clamped.
		assert.Equal(t, req.EndTime, resolved[1].Arrive)
	})

	t.Run("arrive only backfills by slot", func(t *testing.T) {
		legs := []trip.Leg{
			{Sequence: 1, ArriveTime: "12:30"},
			{Sequence: 2, ArriveTime: "09:00"},
		}
		resolved := trip.ResolveLegTimes(req, legs)
		require.Len(t, resolved, 2)
		assert.Equal(t, resolved[0].Arrive.Add(-slot), resolved[0].Depart)
		// Backfill would precede the window; depart is clamped to start.
		assert.Equal(t, req.StartTime, resolved[1].Depart)
	})
}

func TestResolveLegTimes_MalformedTokensFallBack(t *testing.T) {
	req := mustRequest(t, "2025-10-04T08:00", "4")

	legs := []trip.Leg{
		{Sequence: 1, DepartTime: "soonish", ArriveTime: "later"},
	}

	resolved := trip.ResolveLegTimes(req, legs)
	require.Len(t, resolved, 1)
	assert.Equal(t, req.StartTime, resolved[0].Depart)
	assert.Equal(t, req.EndTime, resolved[0].Arrive)
}

func TestResolveLegTimes_MinimumInterval(t *testing.T) {
	req := mustRequest(t, "2025-10-04T08:00", "10")

	// Arrive equals depart after parsing; a 30-minute interval is forced.
	legs := []trip.Leg{
		{Sequence: 1, DepartTime: "12:00", ArriveTime: "12:00"},
		{Sequence: 2, DepartTime: "13:00", ArriveTime: "12:30"},
	}

	resolved := trip.ResolveLegTimes(req, legs)
	require.Len(t, resolved, 2)
	for i, sl := range resolved {
		assert.Equal(t, 30*time.Minute, sl.Arrive.Sub(sl.Depart), "leg %d", i+1)
	}
}

func TestResolveLegTimes_WindowInvariants(t *testing.T) {
	req := mustRequest(t, "2025-10-04T08:00", "6")

	legs := []trip.Leg{
		{Sequence: 1, DepartTime: "06:00", ArriveTime: "09:00"}, // departs before window
		{Sequence: 2, DepartTime: "09:00", ArriveTime: "23:00"}, // arrives after window
		{Sequence: 3},
	}

	resolved := trip.ResolveLegTimes(req, legs)
	require.Len(t, resolved, len(legs))
	for i, sl := range resolved {
		assert.False(t, sl.Depart.Before(req.StartTime), "leg %d depart before window", i+1)
		assert.False(t, sl.Arrive.After(req.EndTime), "leg %d arrive after window", i+1)
		assert.True(t, sl.Arrive.After(sl.Depart), "leg %d empty interval", i+1)
	}
}

func TestResolveLegTimes_EmptyItinerary(t *testing.T) {
	req := mustRequest(t, "2025-10-04T08:00", "6")
	assert.Nil(t, trip.ResolveLegTimes(req, nil))
}

func TestNormalizeSequence(t *testing.T) {
	legs := []trip.Leg{
		{Sequence: 7, Mode: trip.ModeWalk},
		{Sequence: 2, Mode: trip.ModeSubway},
		{Sequence: 2, Mode: trip.ModeActivity},
	}

	normalized := trip.NormalizeSequence(legs)
	for i, leg := range normalized {
		assert.Equal(t, i+1, leg.Sequence)
	}

	// Idempotent.
	again := trip.NormalizeSequence(normalized)
	assert.Equal(t, normalized, again)
}
