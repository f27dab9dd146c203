package discovery

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/placesweep/internal/geo"
	"github.com/sells-group/placesweep/pkg/google"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in       string
		want     Status
		inactive bool
	}{
		{"OPERATIONAL", StatusOperational, false},
		{"CLOSED_TEMPORARILY", StatusClosedTemporarily, true},
		{"CLOSED_PERMANENTLY", StatusClosedPermanently, true},
		{"", StatusUnknown, false},
		{"SOMETHING_NEW", StatusUnknown, false},
	}
	for _, tt := range tests {
		got := ParseStatus(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.inactive, got.Inactive(), tt.in)
	}
	assert.Equal(t, "CLOSED_TEMPORARILY", StatusClosedTemporarily.String())
	assert.Equal(t, "UNKNOWN", StatusUnknown.String())
}

func TestLegacyPlace(t *testing.T) {
	var raw google.LegacyPlace
	require.NoError(t, json.Unmarshal([]byte(`{
		"place_id": "abc",
		"name": "Cafe",
		"business_status": "CLOSED_TEMPORARILY",
		"rating": 4.3,
		"user_ratings_total": 12,
		"vicinity": "1 Main St",
		"types": ["cafe", "food"],
		"geometry": {"location": {"lat": 1.5, "lng": 2.5}},
		"icon": "https://example.com/icon.png"
	}`), &raw))

	var p Place = LegacyPlace{Place: raw}
	assert.Equal(t, "abc", p.ID())
	assert.Equal(t, StatusClosedTemporarily, p.Status())
	score, ok := p.Score()
	assert.True(t, ok)
	assert.InDelta(t, 4.3, score, 1e-9)

	d := p.(Describer).Details()
	assert.Equal(t, "Cafe", d.Name)
	assert.Equal(t, "1 Main St", d.Address)
	assert.Equal(t, "cafe", d.PrimaryType)
	assert.True(t, d.HasLocation)
	assert.Equal(t, geo.Coordinate{Latitude: 1.5, Longitude: 2.5}, d.Location)
	require.NotNil(t, d.RatingCount)
	assert.Equal(t, 12, *d.RatingCount)

	out, err := json.Marshal(p.(Payloader).Payload())
	require.NoError(t, err)
	assert.Contains(t, string(out), `"icon"`)
}

func TestLegacyPlace_Unrated(t *testing.T) {
	p := LegacyPlace{Place: google.LegacyPlace{PlaceID: "x", FormattedAddress: "2 Side St"}}
	_, ok := p.Score()
	assert.False(t, ok)
	assert.Equal(t, StatusUnknown, p.Status())
	assert.Equal(t, "2 Side St", p.Details().Address)
	assert.False(t, p.Details().HasLocation)
}

func TestLegacyPlace_PrefersFormattedAddress(t *testing.T) {
	p := LegacyPlace{Place: google.LegacyPlace{
		PlaceID:          "x",
		Vicinity:         "1 Main St",
		FormattedAddress: "1 Main St, Springfield, IL 62701, USA",
	}}
	assert.Equal(t, "1 Main St, Springfield, IL 62701, USA", p.Details().Address)
}

func TestAPIPlace(t *testing.T) {
	p := APIPlace{Place: google.Place{
		ID:               "places/xyz",
		DisplayName:      &google.DisplayName{Text: "Diner"},
		FormattedAddress: "3 Elm St",
		Location:         &google.LatLng{Latitude: 3, Longitude: 4},
		Rating:           ptr(4.9),
		BusinessStatus:   "OPERATIONAL",
		PrimaryType:      "diner",
	}}

	assert.Equal(t, "places/xyz", p.ID())
	assert.Equal(t, StatusOperational, p.Status())
	score, ok := p.Score()
	assert.True(t, ok)
	assert.InDelta(t, 4.9, score, 1e-9)

	d := p.Details()
	assert.Equal(t, "Diner", d.Name)
	assert.Equal(t, "3 Elm St", d.Address)
	assert.Equal(t, "diner", d.PrimaryType)
	assert.Equal(t, geo.Coordinate{Latitude: 3, Longitude: 4}, d.Location)
	assert.IsType(t, google.Place{}, p.Payload())
}
