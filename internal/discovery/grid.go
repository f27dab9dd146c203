package discovery

import (
	"math/rand/v2"
	"slices"

	"github.com/sells-group/placesweep/internal/geo"
	"github.com/sells-group/placesweep/pkg/google"
)

// Expected records per tile when a tile is exhausted.
const (
	LegacyTileYield = 60
	APITileYield    = google.MaxResultCount
)

// TileYield returns the most records one tile can produce for api.
func TileYield(api API) int {
	if api == APINew {
		return APITileYield
	}
	return LegacyTileYield
}

// MaxTiles returns how many tiles are needed to satisfy limit at
// perTileYield records each. Zero means unbounded.
func MaxTiles(limit, perTileYield int) int {
	if limit <= 0 || perTileYield <= 0 {
		return 0
	}
	return (limit + perTileYield - 1) / perTileYield
}

// PlanTiles prunes tiles when a limit makes a full sweep unnecessary: it
// shuffles a copy and keeps the first MaxTiles of it. The input is never
// modified. A nil rng uses a randomly seeded source.
func PlanTiles(tiles []geo.Coordinate, limit, perTileYield int, rng *rand.Rand) []geo.Coordinate {
	out := slices.Clone(tiles)
	maxTiles := MaxTiles(limit, perTileYield)
	if maxTiles == 0 || len(out) <= maxTiles {
		return out
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // tile order is not security sensitive
	}
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out[:maxTiles]
}

// newRand returns the tile shuffle source for cfg.
func newRand(cfg RunConfig) *rand.Rand {
	seed, ok := cfg.ShuffleSeed()
	if !ok {
		return nil
	}
	return rand.New(rand.NewPCG(seed, seed)) //nolint:gosec // deterministic by request
}
