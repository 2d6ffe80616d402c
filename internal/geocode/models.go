// Package geocode resolves free-text place strings to coordinates.
package geocode

import "errors"

// Geocoding errors.
var (
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
	ErrNoMatch             = errors.New("no geocoding match for place")
)

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
