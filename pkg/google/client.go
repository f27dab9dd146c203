// Package google is a minimal client for the Google Places nearby search
// endpoints: the legacy Maps web service and Places API (New).
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL       = "https://places.googleapis.com/v1"
	defaultLegacyBaseURL = "https://maps.googleapis.com/maps/api/place"
	defaultGeocodeURL    = "https://maps.googleapis.com/maps/api/geocode"
)

// Client performs Google Places nearby searches.
type Client interface {
	// NearbySearch fetches one page of the legacy Nearby Search endpoint.
	NearbySearch(ctx context.Context, req LegacyNearbyRequest) (*LegacyNearbyResponse, error)
	// SearchNearby calls the Places API (New) searchNearby method.
	SearchNearby(ctx context.Context, req SearchNearbyRequest) (*SearchNearbyResponse, error)
	// Geocode resolves a free-form address to its best matching location.
	Geocode(ctx context.Context, address string) (*GeocodeResult, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the Places API (New) base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithLegacyBaseURL overrides the legacy Places web service base URL.
func WithLegacyBaseURL(url string) Option {
	return func(c *httpClient) {
		c.legacyBaseURL = url
	}
}

// WithGeocodeBaseURL overrides the Geocoding API base URL.
func WithGeocodeBaseURL(url string) Option {
	return func(c *httpClient) {
		c.geocodeBaseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey         string
	baseURL        string
	legacyBaseURL  string
	geocodeBaseURL string
	http           *http.Client
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:         apiKey,
		baseURL:        defaultBaseURL,
		legacyBaseURL:  defaultLegacyBaseURL,
		geocodeBaseURL: defaultGeocodeURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) NearbySearch(ctx context.Context, req LegacyNearbyRequest) (*LegacyNearbyResponse, error) {
	params := url.Values{
		"location": {formatLocation(req.Location)},
		"radius":   {formatFloat(req.Radius)},
		"key":      {c.apiKey},
	}
	if req.Type != "" {
		params.Set("type", req.Type)
	}
	if req.Language != "" {
		params.Set("language", req.Language)
	}
	if req.PageToken != "" {
		params.Set("pagetoken", req.PageToken)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.legacyBaseURL+"/nearbysearch/json?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "google: create legacy request")
	}

	respBody, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var result LegacyNearbyResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "google: unmarshal legacy response")
	}

	switch result.Status {
	case StatusOK, StatusZeroResults:
		return &result, nil
	default:
		return nil, &StatusError{Status: result.Status, Message: result.ErrorMessage}
	}
}

func (c *httpClient) SearchNearby(ctx context.Context, req SearchNearbyRequest) (*SearchNearbyResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "google: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchNearby", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "google: create request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", FieldMask(req.Fields))

	respBody, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var result SearchNearbyResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "google: unmarshal response")
	}

	return &result, nil
}

// do sends req and returns the body of a 200 response.
func (c *httpClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "google: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "google: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}
