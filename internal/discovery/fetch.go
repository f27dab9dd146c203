package discovery

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/placesweep/internal/geo"
	"github.com/sells-group/placesweep/internal/metrics"
	"github.com/sells-group/placesweep/internal/resilience"
	"github.com/sells-group/placesweep/pkg/google"
)

const (
	// DefaultMaxPages limits legacy pagination per tile.
	DefaultMaxPages = 3
	// DefaultPageTokenDelay is how long a continuation token takes to
	// become valid.
	DefaultPageTokenDelay = 2 * time.Second
	// DefaultRateLimit is the request rate in requests per second.
	DefaultRateLimit = 10.0
)

// TileFetcher returns every place the provider reports for one tile. The
// returned slice holds whatever was collected, even when err is non-nil;
// err only explains why collection stopped early.
type TileFetcher interface {
	FetchTile(ctx context.Context, tile geo.Coordinate, cfg RunConfig) ([]Place, error)
}

// FetcherOptions configures the provider fetchers.
type FetcherOptions struct {
	// RateLimit is requests per second. Default 10.
	RateLimit float64
	// MaxPages bounds legacy pagination per tile. Default 3.
	MaxPages int
	// PageTokenDelay is waited before each continuation page. Default 2s.
	PageTokenDelay time.Duration
	// Breaker optionally guards provider calls. Nil sends every request
	// to the provider; an open breaker makes tiles fail without a request.
	Breaker *resilience.CircuitBreaker
	// Sleep replaces the context-aware sleep, for tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (o FetcherOptions) withDefaults() FetcherOptions {
	if o.RateLimit <= 0 {
		o.RateLimit = DefaultRateLimit
	}
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
	if o.PageTokenDelay <= 0 {
		o.PageTokenDelay = DefaultPageTokenDelay
	}
	if o.Sleep == nil {
		o.Sleep = sleepCtx
	}
	return o
}

// NewBreaker returns a circuit breaker for api that reports its state to
// the circuit gauge. Zero values select the resilience defaults.
func NewBreaker(api API, failureThreshold int, resetTimeout time.Duration) *resilience.CircuitBreaker {
	cfg := resilience.DefaultCircuitBreakerConfig()
	if failureThreshold > 0 {
		cfg.FailureThreshold = failureThreshold
	}
	if resetTimeout > 0 {
		cfg.ResetTimeout = resetTimeout
	}
	cfg.OnStateChange = func(from, to resilience.CircuitState) {
		metrics.CircuitState.WithLabelValues(string(api)).Set(float64(to))
		zap.L().Warn("places circuit state changed",
			zap.String("api", string(api)),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
	}
	return resilience.NewCircuitBreaker(cfg)
}

// NewFetcher returns the fetcher for api.
func NewFetcher(client google.Client, api API, opts FetcherOptions) TileFetcher {
	if api == APINew {
		return NewAPIFetcher(client, opts)
	}
	return NewLegacyFetcher(client, opts)
}

// LegacyFetcher pages through the legacy Nearby Search for each tile.
type LegacyFetcher struct {
	client   google.Client
	limiter  *rate.Limiter
	opts     FetcherOptions
	requests atomic.Int64
}

// NewLegacyFetcher creates a LegacyFetcher.
func NewLegacyFetcher(client google.Client, opts FetcherOptions) *LegacyFetcher {
	opts = opts.withDefaults()
	return &LegacyFetcher{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		opts:    opts,
	}
}

// Requests returns how many provider requests were issued.
func (f *LegacyFetcher) Requests() int { return int(f.requests.Load()) }

// PagesPerTile returns the pagination bound.
func (f *LegacyFetcher) PagesPerTile() int { return f.opts.MaxPages }

// FetchTile fetches up to MaxPages pages for tile. Excluded primary types
// are dropped here since the legacy endpoint cannot filter them.
func (f *LegacyFetcher) FetchTile(ctx context.Context, tile geo.Coordinate, cfg RunConfig) ([]Place, error) {
	var (
		places    []Place
		pageToken string
		excluded  = cfg.ExcludedTypes()
	)

	for page := 0; page < f.opts.MaxPages; page++ {
		if pageToken != "" {
			if err := f.opts.Sleep(ctx, f.opts.PageTokenDelay); err != nil {
				return places, eris.Wrap(err, "discovery: page token wait")
			}
		}
		if err := f.limiter.Wait(ctx); err != nil {
			return places, eris.Wrap(err, "discovery: rate limit wait")
		}

		req := google.LegacyNearbyRequest{
			Location:  google.LatLng{Latitude: tile.Latitude, Longitude: tile.Longitude},
			Radius:    cfg.SubRadius(),
			Type:      cfg.PlaceType(),
			Language:  cfg.Language(),
			PageToken: pageToken,
		}
		resp, err := observe(ctx, f.opts.Breaker, APILegacy, &f.requests, func(ctx context.Context) (*google.LegacyNearbyResponse, error) {
			return f.client.NearbySearch(ctx, req)
		})
		if err != nil {
			return places, eris.Wrapf(err, "discovery: nearby search page %d", page+1)
		}

		dropped := 0
		for _, r := range resp.Results {
			if len(r.Types) > 0 && slices.Contains(excluded, r.Types[0]) {
				dropped++
				continue
			}
			places = append(places, LegacyPlace{Place: r})
		}
		metrics.RecordsTotal.WithLabelValues("fetched").Add(float64(len(resp.Results) - dropped))
		metrics.RecordsTotal.WithLabelValues("dropped_excluded").Add(float64(dropped))

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return places, nil
}

// APIFetcher issues one searchNearby request per tile.
type APIFetcher struct {
	client   google.Client
	limiter  *rate.Limiter
	opts     FetcherOptions
	requests atomic.Int64
}

// NewAPIFetcher creates an APIFetcher.
func NewAPIFetcher(client google.Client, opts FetcherOptions) *APIFetcher {
	opts = opts.withDefaults()
	return &APIFetcher{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		opts:    opts,
	}
}

// Requests returns how many provider requests were issued.
func (f *APIFetcher) Requests() int { return int(f.requests.Load()) }

// PagesPerTile is always one; searchNearby has no continuation.
func (f *APIFetcher) PagesPerTile() int { return 1 }

// FetchTile fetches the single searchNearby page for tile.
func (f *APIFetcher) FetchTile(ctx context.Context, tile geo.Coordinate, cfg RunConfig) ([]Place, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "discovery: rate limit wait")
	}

	req := google.SearchNearbyRequest{
		ExcludedPrimaryTypes: cfg.ExcludedTypes(),
		MaxResultCount:       google.MaxResultCount,
		LocationRestriction: google.LocationRestriction{
			Circle: google.Circle{
				Center: google.LatLng{Latitude: tile.Latitude, Longitude: tile.Longitude},
				Radius: cfg.SubRadius(),
			},
		},
		LanguageCode: cfg.Language(),
		Fields:       cfg.RequestFields(),
	}
	if t := cfg.PlaceType(); t != "" {
		req.IncludedTypes = []string{t}
	}

	resp, err := observe(ctx, f.opts.Breaker, APINew, &f.requests, func(ctx context.Context) (*google.SearchNearbyResponse, error) {
		return f.client.SearchNearby(ctx, req)
	})
	if err != nil {
		return nil, eris.Wrap(err, "discovery: search nearby")
	}

	places := make([]Place, 0, len(resp.Places))
	for _, p := range resp.Places {
		places = append(places, APIPlace{Place: p})
	}
	metrics.RecordsTotal.WithLabelValues("fetched").Add(float64(len(places)))
	return places, nil
}

// observe runs one provider call, through the breaker when one is set, and
// records it. Calls rejected by an open circuit are not counted as requests.
func observe[T any](ctx context.Context, cb *resilience.CircuitBreaker, api API, counter *atomic.Int64, fn func(ctx context.Context) (T, error)) (T, error) {
	start := time.Now()
	call := func(ctx context.Context) (T, error) {
		counter.Add(1)
		return fn(ctx)
	}
	var (
		v   T
		err error
	)
	if cb == nil {
		v, err = call(ctx)
	} else {
		v, err = resilience.Call(ctx, cb, call)
	}
	class := resilience.Classify(err)
	metrics.RequestsTotal.WithLabelValues(string(api), class).Inc()
	if class != "circuit_open" {
		metrics.RequestDuration.WithLabelValues(string(api)).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		zap.L().Debug("places request failed",
			zap.String("api", string(api)),
			zap.String("class", class),
			zap.Error(err),
		)
	}
	return v, err
}

// sleepCtx waits d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
