package crime_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripsense/tripsense/internal/crime"
	"github.com/tripsense/tripsense/internal/geocode"
	"github.com/tripsense/tripsense/internal/trip"
)

type mockGeocoder struct {
	coords map[string]*geocode.Coordinate
}

func (m *mockGeocoder) Resolve(_ context.Context, place string) *geocode.Coordinate {
	return m.coords[place]
}

// scope identifies one concrete query by the radius and lookback that
// produced it, recovered from the filter geometry and date range.
type scope struct {
	radiusM int
	days    int
}

type mockDataset struct {
	mu       sync.Mutex
	counts   map[scope]int
	offenses []crime.OffenseCount
	countErr error
	queried  []scope
}

func newMockDataset() *mockDataset {
	return &mockDataset{counts: make(map[scope]int)}
}

func (m *mockDataset) Name() string { return "mock-dataset" }

func (m *mockDataset) scopeOf(f crime.Filter) scope {
	halfHeight := (f.BBox.MaxLat - f.BBox.MinLat) / 2
	radius := int(math.Round(halfHeight * 111320))
	days := int(math.Round(f.End.Sub(f.Start).Hours() / 24))
	return scope{radiusM: radius, days: days}
}

func (m *mockDataset) Count(_ context.Context, f crime.Filter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.scopeOf(f)
	m.queried = append(m.queried, s)
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.counts[s], nil
}

func (m *mockDataset) TopOffenses(_ context.Context, f crime.Filter, limit int) ([]crime.OffenseCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.offenses) > limit {
		return m.offenses[:limit], nil
	}
	return m.offenses, nil
}

func crimeFixture(t *testing.T) (*trip.Request, *trip.Itinerary) {
	t.Helper()
	req, err := trip.NewRequest(trip.RawRequest{
		TransportModes: []string{"walk"},
		StartTime:      "2025-10-04T08:00",
		TripDuration:   "10",
	})
	require.NoError(t, err)

	itin := &trip.Itinerary{
		Legs: []trip.Leg{
			{Sequence: 1, FromLocation: "Times Square, New York, NY, USA", ToLocation: "Bryant Park, New York, NY, USA"},
		},
	}
	return req, itin
}

func newCrimeService(dataset crime.Dataset, geocoder crime.Geocoder) *crime.Service {
	return crime.NewService(crime.ServiceConfig{
		Dataset:  dataset,
		Geocoder: geocoder,
		Logger:   zerolog.Nop(),
	})
}

func TestService_StatsForPlace_TightestScopeWins(t *testing.T) {
	dataset := newMockDataset()
	dataset.counts[scope{radiusM: 400, days: 45}] = 12
	dataset.offenses = []crime.OffenseCount{{Offense: "PETIT LARCENY", Count: 8}}

	geocoder := &mockGeocoder{coords: map[string]*geocode.Coordinate{
		"Times Square, New York, NY, USA": {Lat: 40.758, Lon: -73.9855},
	}}

	req, _ := crimeFixture(t)
	service := newCrimeService(dataset, geocoder)

	stats := service.StatsForPlace(context.Background(), "Times Square, New York, NY, USA", req.StartTime, req.EndTime)
	require.NotNil(t, stats.Count)
	assert.Equal(t, 12, *stats.Count)
	assert.Equal(t, 400, stats.RadiusM)
	assert.False(t, stats.Widened)
	assert.Equal(t, []crime.OffenseCount{{Offense: "PETIT LARCENY", Count: 8}}, stats.TopOffenses)

	// One probe was enough.
	assert.Len(t, dataset.queried, 1)
}

func TestService_StatsForPlace_WidensToFindSignal(t *testing.T) {
	// Only the widest radius at the widest window has data: every
	// narrower probe must run first, and the winner reports exactly the
	// scope that produced it.
	dataset := newMockDataset()
	dataset.counts[scope{radiusM: 1200, days: 365}] = 3

	geocoder := &mockGeocoder{coords: map[string]*geocode.Coordinate{
		"Quiet Corner": {Lat: 40.70, Lon: -73.90},
	}}

	req, _ := crimeFixture(t)
	service := newCrimeService(dataset, geocoder)

	stats := service.StatsForPlace(context.Background(), "Quiet Corner", req.StartTime, req.EndTime)
	require.NotNil(t, stats.Count)
	assert.Equal(t, 3, *stats.Count)
	assert.Equal(t, 1200, stats.RadiusM)
	assert.True(t, stats.Widened)
	assert.NotEmpty(t, stats.Note)

	end := req.EndTime.Format("2006-01-02")
	start := req.EndTime.AddDate(0, 0, -365).Format("2006-01-02")
	assert.Equal(t, start+".."+end, stats.Window)

	// All 9 combinations probed, windows widening before radii.
	require.Len(t, dataset.queried, 9)
	assert.Equal(t, scope{radiusM: 400, days: 45}, dataset.queried[0])
	assert.Equal(t, scope{radiusM: 1200, days: 45}, dataset.queried[2])
	assert.Equal(t, scope{radiusM: 400, days: 180}, dataset.queried[3])
	assert.Equal(t, scope{radiusM: 1200, days: 365}, dataset.queried[8])
}

func TestService_StatsForPlace_ExhaustedIsExplicitZero(t *testing.T) {
	dataset := newMockDataset()
	geocoder := &mockGeocoder{coords: map[string]*geocode.Coordinate{
		"Nowhere": {Lat: 40.70, Lon: -73.90},
	}}

	req, _ := crimeFixture(t)
	service := newCrimeService(dataset, geocoder)

	stats := service.StatsForPlace(context.Background(), "Nowhere", req.StartTime, req.EndTime)
	require.NotNil(t, stats.Count)
	assert.Equal(t, 0, *stats.Count)
	assert.Equal(t, 1200, stats.RadiusM)
	assert.True(t, stats.Widened)
	assert.NotEmpty(t, stats.Note)
	assert.Len(t, dataset.queried, 9)
}

func TestService_StatsForPlace_GeocodeFailure(t *testing.T) {
	dataset := newMockDataset()
	geocoder := &mockGeocoder{coords: map[string]*geocode.Coordinate{}}

	req, _ := crimeFixture(t)
	service := newCrimeService(dataset, geocoder)

	stats := service.StatsForPlace(context.Background(), "Unresolvable Pl", req.StartTime, req.EndTime)
	assert.Nil(t, stats.Count)
	assert.NotEmpty(t, stats.Note)

	// Unknown, not zero: no queries were issued.
	assert.Empty(t, dataset.queried)
}

func TestService_StatsForPlace_DatasetErrorsAreNoData(t *testing.T) {
	dataset := newMockDataset()
	dataset.countErr = errors.New("soda 503")
	geocoder := &mockGeocoder{coords: map[string]*geocode.Coordinate{
		"Times Square, New York, NY, USA": {Lat: 40.758, Lon: -73.9855},
	}}

	req, _ := crimeFixture(t)
	service := newCrimeService(dataset, geocoder)

	// Every probe fails: the search degrades to the exhausted zero.
	stats := service.StatsForPlace(context.Background(), "Times Square, New York, NY, USA", req.StartTime, req.EndTime)
	require.NotNil(t, stats.Count)
	assert.Equal(t, 0, *stats.Count)
	assert.Len(t, dataset.queried, 9)
}

func TestService_BuildOverlay(t *testing.T) {
	dataset := newMockDataset()
	dataset.counts[scope{radiusM: 400, days: 45}] = 7

	geocoder := &mockGeocoder{coords: map[string]*geocode.Coordinate{
		"Times Square, New York, NY, USA": {Lat: 40.758, Lon: -73.9855},
		"Bryant Park, New York, NY, USA":  {Lat: 40.7536, Lon: -73.9832},
	}}

	req, itin := crimeFixture(t)
	service := newCrimeService(dataset, geocoder)

	overlay := service.BuildOverlay(context.Background(), req, itin)
	require.Len(t, overlay.LegCrime, 1)

	lc := overlay.LegCrime[0]
	assert.Equal(t, 1, lc.Sequence)
	require.NotNil(t, lc.FromCrime)
	require.NotNil(t, lc.ToCrime)
	assert.Equal(t, 7, *lc.FromCrime.Count)
	assert.Equal(t, "mock-dataset", lc.FromCrime.Source)

	assert.Equal(t, []int{45, 180, 365}, overlay.Params.LookbackDays)
	assert.Equal(t, []int{400, 800, 1200}, overlay.Params.RadiusStepsM)
}

func TestService_BuildOverlay_SkipsEmptyEndpoints(t *testing.T) {
	dataset := newMockDataset()
	geocoder := &mockGeocoder{coords: map[string]*geocode.Coordinate{}}

	req, _ := crimeFixture(t)
	itin := &trip.Itinerary{
		Legs: []trip.Leg{{Sequence: 1, FromLocation: "", ToLocation: ""}},
	}

	service := newCrimeService(dataset, geocoder)
	overlay := service.BuildOverlay(context.Background(), req, itin)
	require.Len(t, overlay.LegCrime, 1)
	assert.Nil(t, overlay.LegCrime[0].FromCrime)
	assert.Nil(t, overlay.LegCrime[0].ToCrime)
}

func TestService_BuildOverlay_WindowAnchoredAtTripEnd(t *testing.T) {
	dataset := newMockDataset()
	dataset.counts[scope{radiusM: 400, days: 45}] = 1
	geocoder := &mockGeocoder{coords: map[string]*geocode.Coordinate{
		"Times Square, New York, NY, USA": {Lat: 40.758, Lon: -73.9855},
	}}

	req, _ := crimeFixture(t)
	service := newCrimeService(dataset, geocoder)

	stats := service.StatsForPlace(context.Background(), "Times Square, New York, NY, USA", req.StartTime, req.EndTime)
	wantStart := req.EndTime.AddDate(0, 0, -45).Format("2006-01-02")
	wantEnd := req.EndTime.Format("2006-01-02")
	assert.Equal(t, wantStart+".."+wantEnd, stats.Window)
}
