// Package socrata provides a client for SODA (Socrata Open Data API)
// incident datasets, defaulting to the NYPD complaints dataset.
package socrata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tripsense/tripsense/internal/crime"
	"github.com/tripsense/tripsense/internal/provider/resilience"
)

const (
	// ProviderName identifies this dataset provider.
	ProviderName = "socrata"

	// DefaultBaseURL is the NYC Open Data SODA endpoint.
	DefaultBaseURL = "https://data.cityofnewyork.us/resource"

	// DefaultDatasetID is the NYPD complaint data (year to date) dataset.
	DefaultDatasetID = "5uac-w243"

	// sodaTimeLayout is the SODA floating timestamp format.
	sodaTimeLayout = "2006-01-02T15:04:05"
)

// ClientConfig holds configuration for the Socrata client.
type ClientConfig struct {
	// BaseURL is the SODA resource root. Default: DefaultBaseURL.
	BaseURL string

	// DatasetID is the four-by-four dataset identifier.
	// Default: DefaultDatasetID.
	DatasetID string

	// AppToken is the optional Socrata application token. Anonymous
	// requests work but are throttled more aggressively.
	AppToken string

	// HTTPClient is the resilient HTTP client to use.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client queries a SODA dataset for incident aggregates.
type Client struct {
	baseURL    string
	datasetID  string
	appToken   string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Socrata dataset client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.DatasetID == "" {
		cfg.DatasetID = DefaultDatasetID
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		datasetID:  cfg.DatasetID,
		appToken:   cfg.AppToken,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger.With().Str("provider", ProviderName).Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName + ":" + c.datasetID
}

// Count returns the number of incidents matching the filter.
func (c *Client) Count(ctx context.Context, f crime.Filter) (int, error) {
	params := url.Values{}
	params.Set("$select", "count(1)")
	params.Set("$where", whereClause(f))

	var rows []map[string]string
	if err := c.query(ctx, params, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	// SODA names the aggregate column count_1 for count(1).
	raw, ok := rows[0]["count_1"]
	if !ok {
		return 0, fmt.Errorf("count column missing in response")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing count %q: %w", raw, err)
	}
	return n, nil
}

// TopOffenses returns the most frequent offense categories matching the
// filter, descending by count. Null offense descriptions are bucketed
// under "Unknown".
func (c *Client) TopOffenses(ctx context.Context, f crime.Filter, limit int) ([]crime.OffenseCount, error) {
	params := url.Values{}
	params.Set("$select", "COALESCE(ofns_desc,'Unknown') as offense, count(1) as c")
	params.Set("$where", whereClause(f))
	params.Set("$group", "offense")
	params.Set("$order", "c DESC")
	params.Set("$limit", strconv.Itoa(limit))

	var rows []struct {
		Offense string `json:"offense"`
		C       string `json:"c"`
	}
	if err := c.query(ctx, params, &rows); err != nil {
		return nil, err
	}

	offenses := make([]crime.OffenseCount, 0, len(rows))
	for _, row := range rows {
		n, err := strconv.Atoi(row.C)
		if err != nil {
			return nil, fmt.Errorf("parsing offense count %q: %w", row.C, err)
		}
		offenses = append(offenses, crime.OffenseCount{Offense: row.Offense, Count: n})
	}
	return offenses, nil
}

func (c *Client) query(ctx context.Context, params url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s/%s.json?%s", c.baseURL, c.datasetID, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.appToken != "" {
		req.Header.Set("X-App-Token", c.appToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// whereClause builds the SoQL predicate for a filter: coordinates inside
// the bounding box, non-null, within the inclusive date range.
func whereClause(f crime.Filter) string {
	return fmt.Sprintf(
		"latitude IS NOT NULL AND longitude IS NOT NULL"+
			" AND latitude between %s and %s"+
			" AND longitude between %s and %s"+
			" AND cmplnt_fr_dt between '%s' and '%s'",
		formatCoord(f.BBox.MinLat), formatCoord(f.BBox.MaxLat),
		formatCoord(f.BBox.MinLon), formatCoord(f.BBox.MaxLon),
		f.Start.Format(sodaTimeLayout), f.End.Format(sodaTimeLayout),
	)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
