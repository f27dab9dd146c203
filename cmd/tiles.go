package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/placesweep/internal/discovery"
	"github.com/sells-group/placesweep/internal/geo"
)

var (
	tilesLat       float64
	tilesLon       float64
	tilesRadius    float64
	tilesSubRadius float64
	tilesFormat    string
)

var tilesCmd = &cobra.Command{
	Use:   "tiles",
	Short: "Print the tile centers a search would query, without calling the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("tiles"); err != nil {
			return err
		}
		radius, subRadius := cfg.Search.Radius, cfg.Search.SubRadius
		if cmd.Flags().Changed("radius") {
			radius = tilesRadius
		}
		if cmd.Flags().Changed("sub-radius") {
			subRadius = tilesSubRadius
		}

		data, err := renderTiles(geo.SearchArea{
			Center:    geo.Coordinate{Latitude: tilesLat, Longitude: tilesLon},
			Radius:    radius,
			SubRadius: subRadius,
		}, tilesFormat)
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	},
}

// renderTiles tiles area and encodes the centers as a JSON array or a
// GeoJSON FeatureCollection.
func renderTiles(area geo.SearchArea, format string) ([]byte, error) {
	if !(area.Radius > 0) {
		return nil, discovery.ErrInvalidRadius
	}
	if !(area.SubRadius > 0) {
		return nil, discovery.ErrInvalidSubRadius
	}
	if err := area.Validate(); err != nil {
		return nil, err
	}

	tiles := geo.Tiles(area)
	zap.L().Debug("tiled area",
		zap.Float64("radius_m", area.Radius),
		zap.Float64("sub_radius_m", area.SubRadius),
		zap.Int("tiles", len(tiles)),
	)

	switch format {
	case "", "json":
		data, err := json.MarshalIndent(tiles, "", "  ")
		if err != nil {
			return nil, eris.Wrap(err, "encode tiles")
		}
		return data, nil
	case "geojson":
		return geo.TilesGeoJSON(tiles, area.SubRadius)
	default:
		return nil, eris.Errorf("unknown tiles format %q", format)
	}
}

func init() {
	f := tilesCmd.Flags()
	f.Float64Var(&tilesLat, "lat", 0, "center latitude")
	f.Float64Var(&tilesLon, "lon", 0, "center longitude")
	f.Float64Var(&tilesRadius, "radius", discovery.DefaultRadius, "search radius in meters")
	f.Float64Var(&tilesSubRadius, "sub-radius", discovery.DefaultSubRadius, "per-tile radius in meters")
	f.StringVar(&tilesFormat, "format", "json", "output format: json or geojson")
	_ = tilesCmd.MarkFlagRequired("lat")
	_ = tilesCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(tilesCmd)
}
