package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"github.com/twpayne/go-geom/encoding/geojson"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/placesweep/internal/discovery"
	"github.com/sells-group/placesweep/pkg/google"
)

func ptr[T any](v T) *T { return &v }

func samplePlaces(t *testing.T) []discovery.Place {
	t.Helper()
	var legacy google.LegacyPlace
	require.NoError(t, json.Unmarshal([]byte(`{
		"place_id": "legacy-1",
		"name": "Taqueria",
		"vicinity": "1 Main St",
		"rating": 4.6,
		"user_ratings_total": 210,
		"business_status": "OPERATIONAL",
		"geometry": {"location": {"lat": 37.5, "lng": -122.25}},
		"icon": "https://example.com/i.png"
	}`), &legacy))

	return []discovery.Place{
		discovery.LegacyPlace{Place: legacy},
		discovery.APIPlace{Place: google.Place{
			ID:               "api-1",
			DisplayName:      &google.DisplayName{Text: "Noodle Bar"},
			FormattedAddress: "2 Elm St, Town",
			BusinessStatus:   "OPERATIONAL",
		}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatJSON},
		{"CSV", FormatCSV},
		{" xlsx ", FormatXLSX},
		{"geojson", FormatGeoJSON},
		{"yml", FormatYAML},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFormat("parquet")
	assert.Error(t, err)
}

func TestToFile_DefaultPath(t *testing.T) {
	assert.Equal(t, "places_output.json", ToFile(FormatJSON, "").Path())
	assert.Equal(t, "places_output.csv", ToFile(FormatCSV, "").Path())
	assert.Equal(t, "out/x.csv", ToFile(FormatCSV, "out/x.csv").Path())
}

func TestDisposition_DeliverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "places.json")
	d := ToFile(FormatJSON, path)

	require.NoError(t, d.Deliver(context.Background(), samplePlaces(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "legacy-1", got[0]["place_id"])
	assert.Equal(t, "https://example.com/i.png", got[0]["icon"])
	assert.Equal(t, "api-1", got[1]["id"])
}

func TestDisposition_DeliverCallback(t *testing.T) {
	var calls int
	var received []discovery.Place
	d := ToCallback(func(_ context.Context, places []discovery.Place) error {
		calls++
		received = places
		return nil
	})

	places := samplePlaces(t)
	require.NoError(t, d.Deliver(context.Background(), places))
	assert.Equal(t, 1, calls)
	assert.Equal(t, places, received)
	assert.Empty(t, d.Path())
}

func TestDisposition_CallbackError(t *testing.T) {
	d := ToCallback(func(context.Context, []discovery.Place) error { return errors.New("nope") })
	assert.EqualError(t, d.Deliver(context.Background(), nil), "nope")
}

func TestDisposition_Unset(t *testing.T) {
	assert.Error(t, Disposition{}.Deliver(context.Background(), nil))
	assert.Error(t, ToCallback(nil).Deliver(context.Background(), nil))
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, samplePlaces(t)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "address", "rating", "user_ratings_total", "place_id", "lat", "lng"}, rows[0])
	assert.Equal(t, []string{"Taqueria", "1 Main St", "4.6", "210", "legacy-1", "37.5", "-122.25"}, rows[1])
	assert.Equal(t, []string{"Noodle Bar", "2 Elm St, Town", "", "", "api-1", "", ""}, rows[2])
}

func TestWrite_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, samplePlaces(t)))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	sheet := f.Sheets[0]
	assert.Equal(t, "Places", sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "name", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Taqueria", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "legacy-1", sheet.Rows[1].Cells[4].String())
	rating, err := sheet.Rows[1].Cells[2].Float()
	require.NoError(t, err)
	assert.InDelta(t, 4.6, rating, 1e-9)
}

func TestWrite_GeoJSONSkipsUnlocated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatGeoJSON, samplePlaces(t)))

	var fc geojson.FeatureCollection
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fc))
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "legacy-1", fc.Features[0].Properties["place_id"])
	assert.Equal(t, []float64{-122.25, 37.5}, fc.Features[0].Geometry.FlatCoords())
	assert.Equal(t, "OPERATIONAL", fc.Features[0].Properties["status"])
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, samplePlaces(t)))

	var docs []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, "legacy-1", docs[0]["place_id"])
	assert.Equal(t, "https://example.com/i.png", docs[0]["icon"])
	assert.Equal(t, "Noodle Bar", docs[1]["displayName"].(map[string]any)["text"])
}

func TestWrite_UnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, Format("pdf"), nil))
}

func TestWrite_EmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRow_RatingCount(t *testing.T) {
	p := discovery.APIPlace{Place: google.Place{ID: "x", Rating: ptr(3.0), UserRatingCount: ptr(7)}}
	assert.Equal(t, []string{"", "", "3", "7", "x", "", ""}, Row(p))
}
