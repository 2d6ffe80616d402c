package weather_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripsense/tripsense/internal/weather"
)

func TestExtractCityQuery(t *testing.T) {
	tests := []struct {
		name  string
		place string
		want  string
	}{
		{
			"venue with state zip and country",
			"Times Square, New York, NY 10036, USA",
			"New York,US",
		},
		{
			"venue with state and country",
			"Queens Museum, Queens, NY, USA",
			"Queens,US",
		},
		{
			"bare city",
			"Brooklyn",
			"Brooklyn",
		},
		{
			"city and country only",
			"London, UK",
			"London,GB",
		},
		{
			"two tokens keeps first",
			"Harlem, New York",
			"New York",
		},
		{
			"no plausible city falls back to last token",
			"10036, USA",
			"USA,US",
		},
		{
			"empty",
			"",
			"",
		},
		{
			"neighborhood and borough",
			"Astoria, Queens, NY, USA",
			"Queens,US",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, weather.ExtractCityQuery(tt.place))
		})
	}
}
