package geo

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Point converts c to a go-geom point in lon/lat order with SRID 4326.
func Point(c Coordinate) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{c.Longitude, c.Latitude}).SetSRID(4326)
}

// TilesGeoJSON encodes tiles as a FeatureCollection of points. Each feature
// carries its position in the sweep order and the sub-circle radius.
func TilesGeoJSON(tiles []Coordinate, subRadius float64) ([]byte, error) {
	fc := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(tiles)),
	}
	for i, t := range tiles {
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: Point(t),
			Properties: map[string]interface{}{
				"index":    i,
				"radius_m": subRadius,
			},
		})
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return nil, eris.Wrap(err, "geo: encode tiles geojson")
	}
	return data, nil
}
