// Package jcdecaux provides a client for the JCDecaux self-service bike API.
package jcdecaux

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bikepulse/bikepulse/internal/provider/resilience"
	"github.com/bikepulse/bikepulse/internal/station"
)

const (
	// DefaultBaseURL is the base URL for the JCDecaux API.
	DefaultBaseURL = "https://api.jcdecaux.com"

	// ProviderName identifies this provider.
	ProviderName = "jcdecaux"
)

// Predefined errors classifying a failed fetch cycle. Both are non-fatal to
// the ingestion loop: the cycle is skipped and the next one proceeds.
var (
	// ErrFetch covers network errors, timeouts and non-2xx responses.
	ErrFetch = errors.New("station status fetch failed")

	// ErrParse covers responses that are not a well-formed station array.
	ErrParse = errors.New("station status payload malformed")
)

// ClientConfig holds configuration for the JCDecaux client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// Contract selects the city contract, e.g. "dublin".
	Contract string

	// APIKey authenticates with the JCDecaux API.
	APIKey string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client without retries is created: a failed
	// cycle is a gap in the series, never re-fetched within the cycle.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 20s).
	Timeout time.Duration

	// Registry, when set, receives the feed health signal: the default
	// resilient client is registered under ProviderName and every fetch
	// outcome is recorded.
	Registry *resilience.Registry
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a JCDecaux station status client.
type Client struct {
	baseURL    string
	contract   string
	apiKey     string
	httpClient HTTPDoer
	registry   *resilience.Registry
}

// NewClient creates a new JCDecaux client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 20 * time.Second
		}
		resilient := resilience.NewClient(resilience.ClientConfig{
			Name:       ProviderName,
			Timeout:    timeout,
			MaxRetries: resilience.NoRetries,
		})
		if cfg.Registry != nil {
			cfg.Registry.Register(ProviderName, resilient)
		}
		httpClient = resilient
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		contract:   cfg.Contract,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		registry:   cfg.Registry,
	}
}

// API response types (from the JCDecaux VLS API).

type stationStatus struct {
	Number              int64         `json:"number"`
	ContractName        string        `json:"contract_name"`
	Name                string        `json:"name"`
	Address             string        `json:"address"`
	Position            *positionData `json:"position"`
	BikeStands          *int64        `json:"bike_stands"`
	AvailableBikeStands *int64        `json:"available_bike_stands"`
	AvailableBikes      *int64        `json:"available_bikes"`
	Status              *string       `json:"status"`
	LastUpdate          *int64        `json:"last_update"` // epoch millis
}

type positionData struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// StationStatus is one decoded per-station status record. Availability fields
// are nil when the source omitted them; absence is unknown, not an error.
type StationStatus struct {
	Station             station.Station
	BikeStands          *int64
	AvailableBikeStands *int64
	AvailableBikes      *int64
	Status              *string
	LastUpdate          *time.Time
}

// FetchStations performs one GET against the station status endpoint and
// returns the verbatim response body alongside the decoded records. The raw
// body is what the poller archives, so it is returned untransformed even when
// decoding succeeds only partially.
func (c *Client) FetchStations(ctx context.Context) ([]byte, []*StationStatus, error) {
	raw, statuses, err := c.fetchStations(ctx)
	if c.registry != nil {
		if err != nil {
			c.registry.RecordFailure(ProviderName, err)
		} else {
			c.registry.RecordSuccess(ProviderName)
		}
	}
	return raw, statuses, err
}

func (c *Client) fetchStations(ctx context.Context) ([]byte, []*StationStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statusURL(), http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: create request: %w", ErrFetch, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}

	var decoded []stationStatus
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	statuses := make([]*StationStatus, 0, len(decoded))
	for i := range decoded {
		statuses = append(statuses, toStationStatus(&decoded[i]))
	}

	return raw, statuses, nil
}

// statusURL builds the station status endpoint URL.
func (c *Client) statusURL() string {
	params := url.Values{}
	params.Set("contract", c.contract)
	params.Set("apiKey", c.apiKey)
	return c.baseURL + "/vls/v1/stations?" + params.Encode()
}

// toStationStatus converts an API record to the domain representation.
func toStationStatus(s *stationStatus) *StationStatus {
	status := &StationStatus{
		Station: station.Station{
			ID:           s.Number,
			ContractName: s.ContractName,
			Name:         s.Name,
			Address:      s.Address,
		},
		BikeStands:          s.BikeStands,
		AvailableBikeStands: s.AvailableBikeStands,
		AvailableBikes:      s.AvailableBikes,
		Status:              s.Status,
	}

	if s.Position != nil {
		status.Station.Lat = s.Position.Lat
		status.Station.Lng = s.Position.Lng
	}
	if s.LastUpdate != nil {
		t := time.UnixMilli(*s.LastUpdate).UTC()
		status.LastUpdate = &t
	}

	return status
}
