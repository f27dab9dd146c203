package discovery

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/sells-group/placesweep/internal/geo"
	"github.com/sells-group/placesweep/internal/metrics"
)

// Sweep pacing defaults.
const (
	DefaultBatchDelay    = 200 * time.Millisecond
	DefaultCooldownEvery = 20
	DefaultCooldown      = 2 * time.Second
	progressEvery        = 10
)

// SweepConfig paces a sweep.
type SweepConfig struct {
	// BatchDelay is slept between consecutive tiles.
	BatchDelay time.Duration
	// CooldownEvery inserts Cooldown after that many tiles. Zero disables it.
	CooldownEvery int
	// Cooldown is the extra pause taken every CooldownEvery tiles.
	Cooldown time.Duration
}

// DefaultSweepConfig returns the default pacing.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		BatchDelay:    DefaultBatchDelay,
		CooldownEvery: DefaultCooldownEvery,
		Cooldown:      DefaultCooldown,
	}
}

// TileFailure records a tile whose fetch ended with an error.
type TileFailure struct {
	Tile    geo.Coordinate `json:"tile" yaml:"tile"`
	Records int            `json:"records" yaml:"records"`
	Reason  string         `json:"reason" yaml:"reason"`
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithSleep replaces the context-aware sleep used for pacing.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) SweeperOption {
	return func(s *Sweeper) { s.sleep = fn }
}

// WithLogger sets the sweep logger. Defaults to zap.L().
func WithLogger(l *zap.Logger) SweeperOption {
	return func(s *Sweeper) { s.log = l }
}

// WithGate shares gate between sweepers. The gate is held for each tile
// fetch, so sweepers sharing a weight-1 gate never have two provider
// requests in flight between them, even across concurrent Search calls.
func WithGate(gate *semaphore.Weighted) SweeperOption {
	return func(s *Sweeper) { s.gate = gate }
}

// Sweeper visits tiles one at a time. A fetch failure never stops the
// sweep and is never retried; the tile contributes what it collected.
//
// Each Sweeper owns a weight-1 gate unless WithGate supplies one. Search
// builds a fresh Sweeper per call, so concurrent Search calls only
// serialize against each other when they pass a shared gate.
type Sweeper struct {
	fetcher TileFetcher
	cfg     SweepConfig
	gate    *semaphore.Weighted
	sleep   func(ctx context.Context, d time.Duration) error
	log     *zap.Logger
}

// NewSweeper creates a Sweeper around fetcher.
func NewSweeper(fetcher TileFetcher, cfg SweepConfig, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		fetcher: fetcher,
		cfg:     cfg,
		gate:    semaphore.NewWeighted(1),
		sleep:   sleepCtx,
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = zap.L()
	}
	return s
}

// Run fetches every tile in order and adds the records to agg. It stops
// early only when ctx is done; skipped tiles are counted in the report.
func (s *Sweeper) Run(ctx context.Context, tiles []geo.Coordinate, cfg RunConfig, agg *Aggregator) Report {
	log := s.log.With(zap.String("component", "sweep"))
	rep := Report{
		TilesPlanned: len(tiles),
		Yields:       make([]int, 0, len(tiles)),
	}

	for i, tile := range tiles {
		if ctx.Err() != nil {
			break
		}
		if err := s.gate.Acquire(ctx, 1); err != nil {
			break
		}
		records, err := s.fetcher.FetchTile(ctx, tile, cfg)
		s.gate.Release(1)

		rep.TilesSwept++
		rep.Yields = append(rep.Yields, len(records))
		rep.RecordsYielded += len(records)
		agg.Add(records...)

		switch {
		case err == nil:
			metrics.TilesTotal.WithLabelValues("ok").Inc()
		case len(records) > 0:
			metrics.TilesTotal.WithLabelValues("partial").Inc()
		default:
			metrics.TilesTotal.WithLabelValues("failed").Inc()
		}
		if err != nil {
			rep.TilesFailed++
			rep.Failures = append(rep.Failures, TileFailure{Tile: tile, Records: len(records), Reason: err.Error()})
			log.Warn("tile fetch failed",
				zap.Int("tile", i),
				zap.Float64("lat", tile.Latitude),
				zap.Float64("lon", tile.Longitude),
				zap.Int("records", len(records)),
				zap.Error(err),
			)
		}

		if (i+1)%progressEvery == 0 {
			log.Info("progress",
				zap.Int("tiles_swept", i+1),
				zap.Int("total_tiles", len(tiles)),
				zap.Int("unique_places", agg.Len()),
			)
		}

		if i == len(tiles)-1 {
			break
		}
		_ = s.sleep(ctx, s.cfg.BatchDelay)
		if s.cfg.CooldownEvery > 0 && (i+1)%s.cfg.CooldownEvery == 0 {
			log.Debug("cooldown", zap.Int("tiles_swept", i+1), zap.Duration("pause", s.cfg.Cooldown))
			_ = s.sleep(ctx, s.cfg.Cooldown)
		}
	}

	rep.TilesSkipped = len(tiles) - rep.TilesSwept
	if rep.TilesSkipped > 0 {
		metrics.TilesTotal.WithLabelValues("skipped").Add(float64(rep.TilesSkipped))
		log.Warn("sweep cancelled", zap.Int("tiles_skipped", rep.TilesSkipped), zap.Error(ctx.Err()))
	}
	return rep
}
