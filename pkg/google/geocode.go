package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoGeocodeMatch is returned when the Geocoding API finds nothing for an address.
var ErrNoGeocodeMatch = eris.New("google: no geocode match")

// GeocodeResult is the best match for a geocoded address.
type GeocodeResult struct {
	FormattedAddress string
	PlaceID          string
	Location         LatLng
	// Quality is "rooftop", "range", "centroid" or "approximate".
	Quality string
}

type geocodeResponse struct {
	Results []struct {
		Geometry struct {
			Location     LegacyLatLng `json:"location"`
			LocationType string       `json:"location_type"`
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
		PlaceID          string `json:"place_id"`
	} `json:"results"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (c *httpClient) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, eris.New("google: address is required")
	}

	params := url.Values{
		"address": {address},
		"key":     {c.apiKey},
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.geocodeBaseURL+"/json?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "google: create geocode request")
	}

	respBody, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var resp geocodeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, eris.Wrap(err, "google: unmarshal geocode response")
	}

	switch resp.Status {
	case StatusOK:
	case StatusZeroResults:
		return nil, eris.Wrapf(ErrNoGeocodeMatch, "%q", address)
	default:
		return nil, &StatusError{Status: resp.Status, Message: resp.ErrorMessage}
	}
	if len(resp.Results) == 0 {
		return nil, eris.Wrapf(ErrNoGeocodeMatch, "%q", address)
	}

	r := resp.Results[0]
	return &GeocodeResult{
		FormattedAddress: r.FormattedAddress,
		PlaceID:          r.PlaceID,
		Location:         LatLng{Latitude: r.Geometry.Location.Lat, Longitude: r.Geometry.Location.Lng},
		Quality:          locationQuality(r.Geometry.LocationType),
	}, nil
}

// locationQuality maps Google's location_type to a coarse quality label.
func locationQuality(locType string) string {
	switch strings.ToUpper(locType) {
	case "ROOFTOP":
		return "rooftop"
	case "RANGE_INTERPOLATED":
		return "range"
	case "GEOMETRIC_CENTER":
		return "centroid"
	default:
		return "approximate"
	}
}
