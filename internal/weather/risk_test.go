package weather_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripsense/tripsense/internal/weather"
)

func TestIsAdverse(t *testing.T) {
	tests := []struct {
		name   string
		sample *weather.Sample
		want   bool
	}{
		{"nil sample", nil, false},
		{"clear sky", &weather.Sample{Condition: "Clear Sky", Icon: "01d", WindMPS: 3}, false},
		{"light rain keyword", &weather.Sample{Condition: "Light Rain", Icon: "01d"}, true},
		{"snow keyword", &weather.Sample{Condition: "Heavy Snow"}, true},
		{"thunderstorm keyword", &weather.Sample{Condition: "Thunderstorm"}, true},
		{"drizzle keyword", &weather.Sample{Condition: "Drizzle"}, true},
		{"sleet keyword", &weather.Sample{Condition: "Sleet showers"}, true},
		{"hail keyword", &weather.Sample{Condition: "Hail"}, true},
		{"shower rain icon family", &weather.Sample{Condition: "Overcast", Icon: "09n"}, true},
		{"rain icon family", &weather.Sample{Condition: "Overcast", Icon: "10d"}, true},
		{"thunder icon family", &weather.Sample{Condition: "Overcast", Icon: "11d"}, true},
		{"snow icon family", &weather.Sample{Condition: "Overcast", Icon: "13n"}, true},
		{"clouds icon not adverse", &weather.Sample{Condition: "Overcast", Icon: "04d"}, false},
		{"wind at threshold", &weather.Sample{Condition: "Clear Sky", Icon: "01d", WindMPS: 12}, true},
		{"wind just below threshold", &weather.Sample{Condition: "Clear Sky", Icon: "01d", WindMPS: 11.9}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, weather.IsAdverse(tt.sample))
		})
	}
}

func TestIsAdverse_WindMonotonic(t *testing.T) {
	// Any sample at or above the wind threshold is adverse regardless
	// of its condition text.
	for _, wind := range []float64{12, 15, 20, 40} {
		sample := &weather.Sample{Condition: "Clear Sky", Icon: "01d", WindMPS: wind}
		assert.True(t, weather.IsAdverse(sample), "wind %.1f m/s", wind)
	}
}
