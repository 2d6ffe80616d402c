// Package weather builds the per-leg weather overlay and classifies
// adverse conditions.
package weather

import (
	"errors"
	"time"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrEmptyQuery          = errors.New("empty weather query")
)

// Sample is a single forecast sample at a point in time.
type Sample struct {
	Time        time.Time `json:"time"`
	TempC       float64   `json:"tempC"`
	Condition   string    `json:"condition"`
	HumidityPct float64   `json:"humidityPct"`
	WindMPS     float64   `json:"windMps"`
	Icon        string    `json:"icon"`
	Source      string    `json:"source"`
}

// LegWeather carries the forecast picked for one leg's endpoints.
// A nil sample means that side's place could not be resolved or the
// fetch failed; absence of data is "unknown", not "clear".
type LegWeather struct {
	Sequence      int       `json:"sequence"`
	FromLocation  string    `json:"fromLocation"`
	ToLocation    string    `json:"toLocation"`
	DepartTime    time.Time `json:"departTime"`
	ArriveTime    time.Time `json:"arriveTime"`
	DepartWeather *Sample   `json:"departWeather"`
	ArriveWeather *Sample   `json:"arriveWeather"`
}

// Overlay is the weather sidecar for an itinerary. It augments but
// never mutates the itinerary it was built for.
type Overlay struct {
	LegWeather []LegWeather `json:"legWeather"`
	Note       string       `json:"note,omitempty"`
}
