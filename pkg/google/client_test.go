package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNearbySearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/nearbysearch/json", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "48.84995,2.288463", q.Get("location"))
		assert.Equal(t, "500", q.Get("radius"))
		assert.Equal(t, "restaurant", q.Get("type"))
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Empty(t, q.Get("pagetoken"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"next_page_token": "token-2",
			"results": [{
				"place_id": "p1",
				"name": "Le Bistro",
				"business_status": "OPERATIONAL",
				"rating": 4.5,
				"user_ratings_total": 320,
				"types": ["restaurant", "food"],
				"geometry": {"location": {"lat": 48.85, "lng": 2.29}},
				"icon": "https://example.com/icon.png"
			}]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithLegacyBaseURL(srv.URL))
	resp, err := client.NearbySearch(context.Background(), LegacyNearbyRequest{
		Location: LatLng{Latitude: 48.84995, Longitude: 2.288463},
		Radius:   500,
		Type:     "restaurant",
	})

	require.NoError(t, err)
	assert.Equal(t, "token-2", resp.NextPageToken)
	require.Len(t, resp.Results, 1)

	p := resp.Results[0]
	assert.Equal(t, "p1", p.PlaceID)
	assert.Equal(t, "Le Bistro", p.Name)
	require.NotNil(t, p.Rating)
	assert.InDelta(t, 4.5, *p.Rating, 0.001)
	require.NotNil(t, p.Geometry)
	assert.InDelta(t, 2.29, p.Geometry.Location.Lng, 0.0001)

	// Unmodelled fields survive re-encoding.
	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"icon"`)
}

func TestNearbySearch_PageToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token-2", r.URL.Query().Get("pagetoken"))
		_, _ = w.Write([]byte(`{"status": "OK", "results": [{"place_id": "p2"}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithLegacyBaseURL(srv.URL))
	resp, err := client.NearbySearch(context.Background(), LegacyNearbyRequest{PageToken: "token-2", Radius: 500})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Empty(t, resp.NextPageToken)
}

func TestNearbySearch_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithLegacyBaseURL(srv.URL))
	resp, err := client.NearbySearch(context.Background(), LegacyNearbyRequest{Radius: 500})

	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestNearbySearch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OVER_QUERY_LIMIT", "error_message": "quota", "results": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithLegacyBaseURL(srv.URL))
	resp, err := client.NearbySearch(context.Background(), LegacyNearbyRequest{Radius: 500})

	assert.Nil(t, resp)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StatusOverQueryLimit, se.Status)
	assert.True(t, se.Temporary())
	assert.Contains(t, err.Error(), "quota")
}

func TestNearbySearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithLegacyBaseURL(srv.URL))
	_, err := client.NearbySearch(context.Background(), LegacyNearbyRequest{Radius: 500})

	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadGateway, he.StatusCode)
	assert.Contains(t, err.Error(), "502")
}

func TestSearchNearby_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/places:searchNearby", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Equal(t, "places.displayName,places.id,places.rating", r.Header.Get("X-Goog-FieldMask"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []any{"restaurant"}, body["includedTypes"])
		assert.Equal(t, []any{"bar", "park"}, body["excludedPrimaryTypes"])
		assert.InDelta(t, 20, body["maxResultCount"], 0)
		assert.NotContains(t, body, "Fields")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SearchNearbyResponse{
			Places: []Place{
				{ID: "np1", DisplayName: &DisplayName{Text: "New Place 1", LanguageCode: "en"}, Rating: ptr(4.8)},
				{ID: "np2", DisplayName: &DisplayName{Text: "New Place 2", LanguageCode: "en"}, Rating: ptr(4.2)},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.SearchNearby(context.Background(), SearchNearbyRequest{
		IncludedTypes:        []string{"restaurant"},
		ExcludedPrimaryTypes: []string{"bar", "park"},
		MaxResultCount:       MaxResultCount,
		LocationRestriction: LocationRestriction{
			Circle: Circle{Center: LatLng{Latitude: 10, Longitude: 10}, Radius: 500},
		},
		Fields: []string{"id", "displayName", "rating"},
	})

	require.NoError(t, err)
	require.Len(t, resp.Places, 2)
	assert.Equal(t, "np1", resp.Places[0].ID)
	require.NotNil(t, resp.Places[0].Rating)
	assert.InDelta(t, 4.8, *resp.Places[0].Rating, 0.001)
}

func TestSearchNearby_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limit exceeded"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.SearchNearby(context.Background(), SearchNearbyRequest{})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "429")
}

func TestSearchNearby_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.SearchNearby(ctx, SearchNearbyRequest{})

	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestFieldMask(t *testing.T) {
	assert.Equal(t, "places.id,places.rating", FieldMask([]string{"rating", "places.id", "id", " "}))
	assert.Contains(t, FieldMask(nil), "places.businessStatus")
}

func TestSKUForFields(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   SKU
	}{
		{name: "pro only", fields: []string{"id", "displayName", "location"}, want: SKUNearbyPro},
		{name: "rating is enterprise", fields: []string{"id", "rating"}, want: SKUNearbyEnterprise},
		{name: "atmosphere wins", fields: []string{"rating", "places.servesWine"}, want: SKUNearbyEnterpriseAtmosphere},
		{name: "empty", fields: nil, want: SKUNearbyPro},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SKUForFields(tt.fields))
		})
	}
	assert.Equal(t, "nearby_enterprise", SKUNearbyEnterprise.String())
}
