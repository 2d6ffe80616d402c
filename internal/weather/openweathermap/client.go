// Package openweathermap provides a forecast client for the
// OpenWeatherMap 5-day/3-hour forecast API, queried by city name.
package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripsense/tripsense/internal/provider/resilience"
	"github.com/tripsense/tripsense/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "openweathermap"

	// DefaultBaseURL is the OpenWeatherMap API base URL.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// sourceTag marks samples as produced by a city-query lookup.
	sourceTag = "openweathermap:q"
)

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to OpenWeatherMap API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenWeatherMap forecast client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new OpenWeatherMap client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("openweathermap"))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// ForecastByQuery fetches the 5-day/3-hour forecast series for a coarse
// city query like "New York,US". No geocoding round-trip is involved;
// the provider resolves the query itself.
func (c *Client) ForecastByQuery(ctx context.Context, query string) ([]weather.Sample, error) {
	if strings.TrimSpace(query) == "" {
		return nil, weather.ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	reqURL := fmt.Sprintf("%s/forecast?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var owmResp forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&owmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return c.toSamples(&owmResp), nil
}

// toSamples converts the OpenWeatherMap response to domain samples.
func (c *Client) toSamples(resp *forecastResponse) []weather.Sample {
	samples := make([]weather.Sample, 0, len(resp.List))
	for _, block := range resp.List {
		sample := weather.Sample{
			Time:        time.Unix(block.Dt, 0),
			TempC:       block.Main.Temp,
			HumidityPct: block.Main.Humidity,
			WindMPS:     block.Wind.Speed,
			Source:      sourceTag,
		}
		if len(block.Weather) > 0 {
			sample.Condition = titleCase(block.Weather[0].Description)
			sample.Icon = block.Weather[0].Icon
		}
		samples = append(samples, sample)
	}
	return samples
}

// titleCase capitalizes each word of a provider description
// ("light rain" -> "Light Rain").
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// OpenWeatherMap API response structures.

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	} `json:"list"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
}
