package crime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBoundingBoxAround(t *testing.T) {
	// 400m around Times Square. One latitude degree is ~111320m, so the
	// half-height is ~0.0036 degrees; longitude widens by 1/cos(lat).
	box := BoundingBoxAround(40.758, -73.9855, 400)

	assert.InDelta(t, 40.758-0.003593, box.MinLat, 1e-4)
	assert.InDelta(t, 40.758+0.003593, box.MaxLat, 1e-4)
	assert.Greater(t, box.MaxLon-box.MinLon, box.MaxLat-box.MinLat)
	assert.InDelta(t, -73.9855, (box.MinLon+box.MaxLon)/2, 1e-9)
}

func TestBoundingBoxAround_PolarFloor(t *testing.T) {
	// Near the pole the cosine is floored so the box stays finite.
	box := BoundingBoxAround(89.9, 0, 400)
	assert.Less(t, box.MaxLon-box.MinLon, 1.0)
}

func TestWindowLabel(t *testing.T) {
	start := time.Date(2025, 8, 20, 9, 30, 0, 0, time.UTC)
	end := time.Date(2025, 10, 4, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-08-20..2025-10-04", windowLabel(start, end))
}
