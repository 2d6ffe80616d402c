package trip_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripsense/tripsense/internal/trip"
)

func TestNewRequest_DerivesWindow(t *testing.T) {
	req, err := trip.NewRequest(trip.RawRequest{
		StartLocation:  "Times Square, New York, NY, USA",
		TransportModes: []string{"walk"},
		StartTime:      "2025-10-04T08:00",
		TripDuration:   "10",
	})
	require.NoError(t, err)

	start, end := req.Window()
	assert.Equal(t, time.Date(2025, 10, 4, 8, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2025, 10, 4, 18, 0, 0, 0, time.Local), end)
}

func TestNewRequest_DurationParsing(t *testing.T) {
	tests := []struct {
		name      string
		duration  string
		wantHours int
	}{
		{"bare number", "7", 7},
		{"hour suffix", "7h", 7},
		{"hours word", "7 hours", 7},
		{"fractional rounds", "7.5 hours", 8},
		{"one day caps at 24", "1 day", 24},
		{"multi day clamped", "2d", 24},
		{"zero clamped up", "0", 1},
		{"oversized clamped down", "99", 24},
		{"empty defaults to max", "", 24},
		{"unparseable defaults to max", "a while", 24},
		{"unknown unit defaults to max", "90 minutes", 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := trip.NewRequest(trip.RawRequest{
				TransportModes: []string{"walk"},
				StartTime:      "2025-10-04T08:00",
				TripDuration:   tt.duration,
			})
			require.NoError(t, err)
			assert.Equal(t, time.Duration(tt.wantHours)*time.Hour, req.EndTime.Sub(req.StartTime))
		})
	}
}

func TestNewRequest_WindowAlwaysWithinBounds(t *testing.T) {
	// The derived window must be 1..24h for any duration text.
	for _, duration := range []string{"", "0", "0.2", "1", "12", "24", "25", "3 days", "x"} {
		req, err := trip.NewRequest(trip.RawRequest{
			TransportModes: []string{"subway"},
			StartTime:      "2025-10-04T08:00",
			TripDuration:   duration,
		})
		require.NoError(t, err, "duration %q", duration)

		window := req.EndTime.Sub(req.StartTime)
		assert.GreaterOrEqual(t, window, time.Hour, "duration %q", duration)
		assert.LessOrEqual(t, window, 24*time.Hour, "duration %q", duration)
	}
}

func TestNewRequest_ModeValidation(t *testing.T) {
	t.Run("rejects unsupported modes and names them", func(t *testing.T) {
		_, err := trip.NewRequest(trip.RawRequest{
			TransportModes: []string{"walk", "taxi", "helicopter"},
			StartTime:      "2025-10-04T08:00",
		})
		require.Error(t, err)

		var modeErr *trip.UnsupportedModeError
		require.ErrorAs(t, err, &modeErr)
		assert.ElementsMatch(t, []string{"taxi", "helicopter"}, modeErr.Modes)
	})

	t.Run("accepts aliases", func(t *testing.T) {
		req, err := trip.NewRequest(trip.RawRequest{
			TransportModes: []string{"Subways", "walking"},
			StartTime:      "2025-10-04T08:00",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{trip.ModeSubway, trip.ModeWalk}, req.TransportModes)
	})

	t.Run("requires at least one mode", func(t *testing.T) {
		_, err := trip.NewRequest(trip.RawRequest{
			StartTime: "2025-10-04T08:00",
		})
		assert.ErrorIs(t, err, trip.ErrNoTransportModes)
	})
}

func TestNewRequest_StartTime(t *testing.T) {
	t.Run("required", func(t *testing.T) {
		_, err := trip.NewRequest(trip.RawRequest{
			TransportModes: []string{"walk"},
		})
		assert.ErrorIs(t, err, trip.ErrStartTimeRequired)
	})

	t.Run("malformed is fatal", func(t *testing.T) {
		_, err := trip.NewRequest(trip.RawRequest{
			TransportModes: []string{"walk"},
			StartTime:      "next tuesday",
		})
		assert.ErrorIs(t, err, trip.ErrInvalidStartTime)
	})

	t.Run("accepts seconds precision", func(t *testing.T) {
		req, err := trip.NewRequest(trip.RawRequest{
			TransportModes: []string{"walk"},
			StartTime:      "2025-10-04T08:00:30",
		})
		require.NoError(t, err)
		assert.Equal(t, 30, req.StartTime.Second())
	})
}
