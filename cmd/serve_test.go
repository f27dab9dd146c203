//go:build !integration

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom/encoding/geojson"
)

func TestBuildRouter_HealthEndpoint(t *testing.T) {
	r := buildRouter(4000, 500)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestBuildRouter_Tiles(t *testing.T) {
	r := buildRouter(4000, 500)

	req := httptest.NewRequest(http.MethodGet, "/tiles?lat=10&lon=10&radius=1000&sub_radius=500", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/geo+json", rr.Header().Get("Content-Type"))

	var fc geojson.FeatureCollection
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fc))
	assert.Greater(t, len(fc.Features), 1)
	assert.Equal(t, 500.0, fc.Features[0].Properties["radius_m"])
}

func TestBuildRouter_TilesSingle(t *testing.T) {
	r := buildRouter(500, 500)

	req := httptest.NewRequest(http.MethodGet, "/tiles?lat=10&lon=10", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var fc geojson.FeatureCollection
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fc))
	require.Len(t, fc.Features, 1)
	assert.Equal(t, []float64{10, 10}, fc.Features[0].Geometry.FlatCoords())
}

func TestBuildRouter_TilesBadRequest(t *testing.T) {
	r := buildRouter(4000, 500)

	for _, target := range []string{
		"/tiles",
		"/tiles?lat=10",
		"/tiles?lat=10&lon=10&radius=abc",
		"/tiles?lat=10&lon=10&sub_radius=0",
	} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
	}
}

func TestBuildRouter_TilesRejectsUnboundedAreas(t *testing.T) {
	r := buildRouter(4000, 500)

	for _, target := range []string{
		"/tiles?lat=0&lon=0&radius=5000&sub_radius=1",
		"/tiles?lat=0&lon=0&radius=NaN",
		"/tiles?lat=0&lon=0&sub_radius=NaN",
		"/tiles?lat=0&lon=0&radius=Inf",
		"/tiles?lat=NaN&lon=0",
		"/tiles?lat=0&lon=400",
	} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
		assert.Contains(t, rr.Body.String(), "error", target)
	}
}

func TestBuildRouter_Metrics(t *testing.T) {
	r := buildRouter(4000, 500)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestBuildRouter_CORS(t *testing.T) {
	r := buildRouter(4000, 500)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestBuildRouter_NotFound(t *testing.T) {
	rr := httptest.NewRecorder()
	buildRouter(4000, 500).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
