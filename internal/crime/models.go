// Package crime builds the per-leg crime overlay from a public incident
// dataset using an adaptive spatio-temporal search.
package crime

import (
	"fmt"
	"math"
	"time"
)

// metersPerDegreeLat approximates one degree of latitude.
const metersPerDegreeLat = 111320.0

// OffenseCount is one grouped offense-category row.
type OffenseCount struct {
	Offense string `json:"offense"`
	Count   int    `json:"count"`
}

// Stats summarizes incidents near one place. Count is nil when the
// place could not be geocoded (unknown, not zero); an explicit zero
// with the widest parameters means the search was exhausted.
type Stats struct {
	Count       *int           `json:"count"`
	Window      string         `json:"window"`
	RadiusM     int            `json:"radiusM"`
	TopOffenses []OffenseCount `json:"topOffenses"`
	Source      string         `json:"source"`
	Widened     bool           `json:"widened,omitempty"`
	Note        string         `json:"note,omitempty"`
}

// LegCrime carries the stats for one leg's endpoints. A nil side means
// that endpoint had no location string at all.
type LegCrime struct {
	Sequence     int    `json:"sequence"`
	FromLocation string `json:"fromLocation"`
	ToLocation   string `json:"toLocation"`
	FromCrime    *Stats `json:"fromCrime"`
	ToCrime      *Stats `json:"toCrime"`
}

// SearchParams records the widening schedule the overlay was built with.
type SearchParams struct {
	LookbackDays []int `json:"lookbackDays"`
	RadiusStepsM []int `json:"radiusStepsM"`
}

// Overlay is the crime sidecar for an itinerary. It augments but never
// mutates the itinerary it was built for.
type Overlay struct {
	LegCrime []LegCrime   `json:"legCrime"`
	Params   SearchParams `json:"params"`
}

// BoundingBox is a rectangular approximation of a circular search area.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// BoundingBoxAround returns the bounding box for a circle of radiusM
// meters around a point. Longitude degrees shrink by cos(lat); the
// cosine is floored to keep the box finite near the poles.
func BoundingBoxAround(lat, lon float64, radiusM int) BoundingBox {
	dLat := float64(radiusM) / metersPerDegreeLat
	dLon := float64(radiusM) / (metersPerDegreeLat * math.Max(0.1, math.Cos(lat*math.Pi/180)))
	return BoundingBox{
		MinLat: lat - dLat,
		MaxLat: lat + dLat,
		MinLon: lon - dLon,
		MaxLon: lon + dLon,
	}
}

// Filter is one concrete aggregate query: a bounding box plus an
// inclusive date range.
type Filter struct {
	BBox  BoundingBox
	Start time.Time
	End   time.Time
}

// windowLabel formats the date range the way it appears in Stats.
func windowLabel(start, end time.Time) string {
	return fmt.Sprintf("%s..%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}
