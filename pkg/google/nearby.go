package google

import "encoding/json"

// MaxResultCount is the most results searchNearby returns for one request.
const MaxResultCount = 20

// LatLng is a Places API (New) coordinate.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Circle restricts a search to a disc of Radius meters.
type Circle struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"`
}

// LocationRestriction wraps the search circle.
type LocationRestriction struct {
	Circle Circle `json:"circle"`
}

// SearchNearbyRequest is the searchNearby request body. Fields selects the
// response fields and is sent as the field mask header.
type SearchNearbyRequest struct {
	IncludedTypes        []string            `json:"includedTypes,omitempty"`
	ExcludedPrimaryTypes []string            `json:"excludedPrimaryTypes,omitempty"`
	MaxResultCount       int                 `json:"maxResultCount,omitempty"`
	LocationRestriction  LocationRestriction `json:"locationRestriction"`
	LanguageCode         string              `json:"languageCode,omitempty"`
	Fields               []string            `json:"-"`
}

// SearchNearbyResponse is the searchNearby response body.
type SearchNearbyResponse struct {
	Places []Place `json:"places"`
}

// DisplayName holds the place's display name.
type DisplayName struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// Place is a Places API (New) result. Only the requested fields are set.
// Fields the client does not model are preserved and written back out by
// MarshalJSON.
type Place struct {
	ID               string       `json:"id,omitempty"`
	Name             string       `json:"name,omitempty"`
	DisplayName      *DisplayName `json:"displayName,omitempty"`
	Types            []string     `json:"types,omitempty"`
	PrimaryType      string       `json:"primaryType,omitempty"`
	FormattedAddress string       `json:"formattedAddress,omitempty"`
	Location         *LatLng      `json:"location,omitempty"`
	Rating           *float64     `json:"rating,omitempty"`
	UserRatingCount  *int         `json:"userRatingCount,omitempty"`
	BusinessStatus   string       `json:"businessStatus,omitempty"`
	WebsiteURI       string       `json:"websiteUri,omitempty"`
	GoogleMapsURI    string       `json:"googleMapsUri,omitempty"`
	PriceLevel       string       `json:"priceLevel,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON decodes the modelled fields and keeps the original document.
func (p *Place) UnmarshalJSON(data []byte) error {
	type plain Place
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Place(v)
	p.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the document the place was decoded from, if any.
func (p Place) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	type plain Place
	return json.Marshal(plain(p))
}
