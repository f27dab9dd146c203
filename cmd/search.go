package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/placesweep/internal/config"
	"github.com/sells-group/placesweep/internal/discovery"
	"github.com/sells-group/placesweep/internal/export"
	"github.com/sells-group/placesweep/internal/geo"
	"github.com/sells-group/placesweep/internal/metrics"
	"github.com/sells-group/placesweep/pkg/google"
)

var (
	searchLat           float64
	searchLon           float64
	searchAddress       string
	searchRadius        float64
	searchSubRadius     float64
	searchType          string
	searchMinScore      float64
	searchLimit         int
	searchAllowInactive bool
	searchFields        []string
	searchExcludeTypes  []string
	searchLanguage      string
	searchAPI           string
	searchAPIKey        string
	searchFormat        string
	searchOut           string
	searchSeed          uint64
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Sweep a circular area and write the matching places",
	Example: `  placesweep search --lat 37.7749 --lon -122.4194
  placesweep search --lat 40.7128 --lon -74.006 --radius 2000 --type cafe --limit 100 --format csv
  placesweep search --address "Union Square, San Francisco" --api new --format geojson`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applySearchFlags(cmd, cfg)
		if err := cfg.Validate("search"); err != nil {
			return err
		}

		format, err := export.ParseFormat(cfg.Output.Format)
		if err != nil {
			return err
		}
		sink := export.ToFile(format, cfg.Output.Path)

		client := newClient(cfg)
		center, err := resolveCenter(ctx, cmd, client)
		if err != nil {
			return err
		}

		runCfg, err := buildRunConfig(cmd, cfg, center, sink)
		if err != nil {
			return err
		}

		fetcher := newFetcher(cfg, client, runCfg.API())

		if cfg.Metrics.Addr != "" {
			shutdown := serveMetrics(cfg.Metrics.Addr)
			defer shutdown()
		}

		res, err := discovery.Search(ctx, runCfg, fetcher,
			discovery.WithSweepConfig(discovery.SweepConfig{
				BatchDelay:    cfg.Sweep.BatchDelay(),
				CooldownEvery: cfg.Sweep.CooldownEvery,
				Cooldown:      cfg.Sweep.Cooldown(),
			}),
			discovery.WithRates(cfg.Pricing),
		)
		if err != nil {
			zap.L().Error("search failed", zap.Error(err))
			return err
		}

		zap.L().Info("places written",
			zap.String("path", sink.Path()),
			zap.Int("places", len(res.Places)),
		)
		return printReport(cmd, res.Report)
	},
}

// applySearchFlags copies explicitly set flags over the loaded config.
func applySearchFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("api-key") {
		c.Places.APIKey = searchAPIKey
	}
	if flags.Changed("api") {
		c.Places.API = searchAPI
	}
	if flags.Changed("language") {
		c.Places.Language = searchLanguage
	}
	if flags.Changed("radius") {
		c.Search.Radius = searchRadius
	}
	if flags.Changed("sub-radius") {
		c.Search.SubRadius = searchSubRadius
	}
	if flags.Changed("type") {
		c.Search.Type = searchType
	}
	if flags.Changed("min-score") {
		c.Search.MinScore = searchMinScore
	}
	if flags.Changed("limit") {
		c.Search.Limit = searchLimit
	}
	if flags.Changed("allow-inactive") {
		c.Search.AllowInactive = searchAllowInactive
	}
	if flags.Changed("fields") {
		c.Search.Fields = searchFields
	}
	if flags.Changed("exclude-types") {
		c.Search.ExcludedTypes = searchExcludeTypes
	}
	if flags.Changed("format") {
		c.Output.Format = searchFormat
	}
	if flags.Changed("out") {
		c.Output.Path = searchOut
	}
}

// resolveCenter returns the search center from --lat/--lon, or geocodes
// --address when given.
func resolveCenter(ctx context.Context, cmd *cobra.Command, client google.Client) (geo.Coordinate, error) {
	flags := cmd.Flags()
	if flags.Changed("address") {
		res, err := client.Geocode(ctx, searchAddress)
		if err != nil {
			return geo.Coordinate{}, eris.Wrap(err, "geocode address")
		}
		zap.L().Info("geocoded search center",
			zap.String("address", res.FormattedAddress),
			zap.String("quality", res.Quality),
			zap.Float64("lat", res.Location.Latitude),
			zap.Float64("lon", res.Location.Longitude),
		)
		return geo.Coordinate{Latitude: res.Location.Latitude, Longitude: res.Location.Longitude}, nil
	}
	if !flags.Changed("lat") || !flags.Changed("lon") {
		return geo.Coordinate{}, eris.New("either --address or both --lat and --lon are required")
	}
	return geo.Coordinate{Latitude: searchLat, Longitude: searchLon}, nil
}

// buildRunConfig turns the merged config into an immutable run config.
func buildRunConfig(cmd *cobra.Command, c *config.Config, center geo.Coordinate, sink discovery.Sink) (discovery.RunConfig, error) {
	api, err := discovery.ParseAPI(c.Places.API)
	if err != nil {
		return discovery.RunConfig{}, err
	}

	opts := []discovery.Option{
		discovery.WithAPIKey(c.Places.APIKey),
		discovery.WithAPI(api),
		discovery.WithSink(sink),
		discovery.WithRadius(c.Search.Radius),
		discovery.WithSubRadius(c.Search.SubRadius),
		discovery.WithPlaceType(c.Search.Type),
		discovery.WithMinScore(c.Search.MinScore),
		discovery.WithLimit(c.Search.Limit),
		discovery.WithAllowInactive(c.Search.AllowInactive),
		discovery.WithFields(c.Search.Fields...),
		discovery.WithExcludedTypes(c.Search.ExcludedTypes...),
		discovery.WithLanguage(c.Places.Language),
	}
	if cmd.Flags().Changed("seed") {
		opts = append(opts, discovery.WithShuffleSeed(searchSeed))
	}

	return discovery.NewRunConfig(center, opts...)
}

func newClient(c *config.Config) google.Client {
	return google.NewClient(c.Places.APIKey,
		google.WithBaseURL(c.Places.BaseURL),
		google.WithLegacyBaseURL(c.Places.LegacyBaseURL),
		google.WithGeocodeBaseURL(c.Places.GeocodeBaseURL),
		google.WithHTTPClient(&http.Client{Timeout: c.Places.Timeout()}),
	)
}

// newFetcher builds the tile fetcher for api. The circuit breaker is only
// installed when places.circuit_failure_threshold is set.
func newFetcher(c *config.Config, client google.Client, api discovery.API) discovery.TileFetcher {
	opts := discovery.FetcherOptions{
		RateLimit:      c.Places.RateLimit,
		MaxPages:       c.Places.MaxPages,
		PageTokenDelay: c.Places.PageTokenDelay(),
	}
	if c.Places.CircuitFailureThreshold > 0 {
		opts.Breaker = discovery.NewBreaker(api, c.Places.CircuitFailureThreshold, c.Places.CircuitReset())
	}
	return discovery.NewFetcher(client, api, opts)
}

// serveMetrics exposes /metrics on addr for the duration of a search.
func serveMetrics(addr string) func() {
	srv := &http.Server{
		Addr:              addr,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zap.L().Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Warn("metrics server failed", zap.Error(err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func printReport(cmd *cobra.Command, rep discovery.Report) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return eris.Wrap(err, "encode report")
	}
	return enc.Close()
}

func init() {
	f := searchCmd.Flags()
	f.Float64Var(&searchLat, "lat", 0, "center latitude")
	f.Float64Var(&searchLon, "lon", 0, "center longitude")
	f.StringVar(&searchAddress, "address", "", "geocode this address as the center instead of --lat/--lon")
	f.Float64Var(&searchRadius, "radius", discovery.DefaultRadius, "search radius in meters")
	f.Float64Var(&searchSubRadius, "sub-radius", discovery.DefaultSubRadius, "per-tile radius in meters")
	f.StringVar(&searchType, "type", discovery.DefaultPlaceType, "place type")
	f.Float64Var(&searchMinScore, "min-score", discovery.DefaultMinScore, "minimum rating")
	f.IntVar(&searchLimit, "limit", 0, "maximum places to return (0 = no limit)")
	f.BoolVar(&searchAllowInactive, "allow-inactive", false, "keep temporarily and permanently closed places")
	f.StringSliceVar(&searchFields, "fields", nil, "response fields for the new API")
	f.StringSliceVar(&searchExcludeTypes, "exclude-types", nil, "primary types to drop")
	f.StringVar(&searchLanguage, "language", "", "result language (BCP 47)")
	f.StringVar(&searchAPI, "api", "legacy", "places API: legacy or new")
	f.StringVar(&searchAPIKey, "api-key", "", "Google Places API key (default from config)")
	f.StringVar(&searchFormat, "format", "json", "output format: json, csv, xlsx, geojson, yaml")
	f.StringVar(&searchOut, "out", "", "output path (default places_output.<format>)")
	f.Uint64Var(&searchSeed, "seed", 0, "shuffle seed for limit-pruned tile selection")
	searchCmd.MarkFlagsMutuallyExclusive("address", "lat")
	searchCmd.MarkFlagsMutuallyExclusive("address", "lon")
	rootCmd.AddCommand(searchCmd)
}
