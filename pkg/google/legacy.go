package google

import (
	"encoding/json"
	"strconv"
)

// LegacyNearbyRequest is one page request against the legacy Nearby Search.
// When PageToken is set the provider ignores the other parameters.
type LegacyNearbyRequest struct {
	Location  LatLng
	Radius    float64
	Type      string
	Language  string
	PageToken string
}

// LegacyNearbyResponse is one page of legacy Nearby Search results.
type LegacyNearbyResponse struct {
	Results       []LegacyPlace `json:"results"`
	NextPageToken string        `json:"next_page_token,omitempty"`
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message,omitempty"`
}

// LegacyPlace is a legacy Nearby Search result. Fields the client does not
// model are preserved and written back out by MarshalJSON.
type LegacyPlace struct {
	PlaceID          string          `json:"place_id,omitempty"`
	Name             string          `json:"name,omitempty"`
	BusinessStatus   string          `json:"business_status,omitempty"`
	Rating           *float64        `json:"rating,omitempty"`
	UserRatingsTotal *int            `json:"user_ratings_total,omitempty"`
	Vicinity         string          `json:"vicinity,omitempty"`
	FormattedAddress string          `json:"formatted_address,omitempty"`
	Types            []string        `json:"types,omitempty"`
	PriceLevel       *int            `json:"price_level,omitempty"`
	Geometry         *LegacyGeometry `json:"geometry,omitempty"`

	raw json.RawMessage
}

// LegacyGeometry holds the legacy result location.
type LegacyGeometry struct {
	Location LegacyLatLng `json:"location"`
}

// LegacyLatLng is the legacy lat/lng pair.
type LegacyLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UnmarshalJSON decodes the modelled fields and keeps the original document.
func (p *LegacyPlace) UnmarshalJSON(data []byte) error {
	type plain LegacyPlace
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = LegacyPlace(v)
	p.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the document the place was decoded from, if any.
func (p LegacyPlace) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	type plain LegacyPlace
	return json.Marshal(plain(p))
}

func formatLocation(l LatLng) string {
	return formatFloat(l.Latitude) + "," + formatFloat(l.Longitude)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
