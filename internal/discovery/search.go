package discovery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/placesweep/internal/cost"
	"github.com/sells-group/placesweep/internal/geo"
	"github.com/sells-group/placesweep/internal/metrics"
)

// Report summarizes one run.
type Report struct {
	RunID            string        `json:"run_id" yaml:"run_id"`
	API              API           `json:"api" yaml:"api"`
	TilesGenerated   int           `json:"tiles_generated" yaml:"tiles_generated"`
	TilesPlanned     int           `json:"tiles_planned" yaml:"tiles_planned"`
	TilesSwept       int           `json:"tiles_swept" yaml:"tiles_swept"`
	TilesFailed      int           `json:"tiles_failed" yaml:"tiles_failed"`
	TilesSkipped     int           `json:"tiles_skipped" yaml:"tiles_skipped"`
	RecordsYielded   int           `json:"records_yielded" yaml:"records_yielded"`
	UniquePlaces     int           `json:"unique_places" yaml:"unique_places"`
	Delivered        int           `json:"delivered" yaml:"delivered"`
	Yields           []int         `json:"yields" yaml:"yields"`
	Failures         []TileFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
	Requests         int           `json:"requests" yaml:"requests"`
	SKU              string        `json:"sku" yaml:"sku"`
	EstimatedCostUSD float64       `json:"estimated_cost_usd" yaml:"estimated_cost_usd"`
	CostUSD          float64       `json:"cost_usd" yaml:"cost_usd"`
	Duration         time.Duration `json:"duration" yaml:"duration"`
}

// Result is the outcome of Search.
type Result struct {
	Places []Place
	Report Report
}

type requestCounter interface {
	Requests() int
}

type pager interface {
	PagesPerTile() int
}

// SearchOption configures Search.
type SearchOption func(*searchOptions)

type searchOptions struct {
	sweep    SweepConfig
	rates    cost.Rates
	sweepOpt []SweeperOption
}

// WithSweepConfig overrides the sweep pacing.
func WithSweepConfig(cfg SweepConfig) SearchOption {
	return func(o *searchOptions) { o.sweep = cfg }
}

// WithRates overrides the pricing used for the cost report.
func WithRates(r cost.Rates) SearchOption {
	return func(o *searchOptions) { o.rates = r }
}

// WithSweeperOptions passes options through to the Sweeper.
func WithSweeperOptions(opts ...SweeperOption) SearchOption {
	return func(o *searchOptions) { o.sweepOpt = append(o.sweepOpt, opts...) }
}

// Search runs a complete sweep: tile the area, prune the tiles against the
// limit, fetch every tile, filter the merged set, and hand it to the sink.
// Tile failures only show up in the report. The returned error is either a
// configuration error or the sink's delivery error.
func Search(ctx context.Context, cfg RunConfig, fetcher TileFetcher, opts ...SearchOption) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, eris.New("discovery: fetcher is required")
	}

	o := searchOptions{sweep: DefaultSweepConfig(), rates: cost.DefaultRates()}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID), zap.String("api", string(cfg.API())))

	tiles := geo.Tiles(cfg.Area())
	planned := PlanTiles(tiles, cfg.Limit(), TileYield(cfg.API()), newRand(cfg))

	pages := 1
	if p, ok := fetcher.(pager); ok {
		pages = p.PagesPerTile()
	}
	calc := cost.NewCalculator(o.rates)
	sku := cfg.SKU()
	estimate := calc.Estimate(sku, len(planned), pages)

	log.Info("starting sweep",
		zap.Float64("lat", cfg.Center().Latitude),
		zap.Float64("lon", cfg.Center().Longitude),
		zap.Float64("radius_m", cfg.Radius()),
		zap.Float64("sub_radius_m", cfg.SubRadius()),
		zap.Int("tiles_generated", len(tiles)),
		zap.Int("tiles_planned", len(planned)),
		zap.String("sku", sku.String()),
		zap.Float64("estimated_cost_usd", estimate),
	)

	var before int
	counter, counted := fetcher.(requestCounter)
	if counted {
		before = counter.Requests()
	}

	agg := NewAggregator()
	sweeper := NewSweeper(fetcher, o.sweep, append([]SweeperOption{WithLogger(log)}, o.sweepOpt...)...)
	rep := sweeper.Run(ctx, planned, cfg, agg)

	places := agg.Finalize(cfg.Filter())

	rep.RunID = runID
	rep.API = cfg.API()
	rep.TilesGenerated = len(tiles)
	rep.UniquePlaces = agg.Len()
	rep.SKU = sku.String()
	rep.EstimatedCostUSD = estimate
	if counted {
		rep.Requests = counter.Requests() - before
	}
	rep.CostUSD = calc.Requests(sku, rep.Requests)

	if err := cfg.Sink().Deliver(ctx, places); err != nil {
		rep.Duration = time.Since(start)
		return &Result{Places: places, Report: rep}, eris.Wrap(err, "discovery: deliver results")
	}
	rep.Delivered = len(places)
	rep.Duration = time.Since(start)
	metrics.RecordsTotal.WithLabelValues("delivered").Add(float64(len(places)))

	log.Info("sweep complete",
		zap.Int("tiles_swept", rep.TilesSwept),
		zap.Int("tiles_failed", rep.TilesFailed),
		zap.Int("records_yielded", rep.RecordsYielded),
		zap.Int("unique_places", rep.UniquePlaces),
		zap.Int("delivered", rep.Delivered),
		zap.Int("requests", rep.Requests),
		zap.Float64("cost_usd", rep.CostUSD),
		zap.Duration("duration", rep.Duration),
	)

	return &Result{Places: places, Report: rep}, nil
}
