package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/sells-group/placesweep/internal/geo"
)

type testPlace struct {
	id     string
	score  *float64
	status Status
	tag    string
}

func (p testPlace) ID() string { return p.id }

func (p testPlace) Score() (float64, bool) {
	if p.score == nil {
		return 0, false
	}
	return *p.score, true
}

func (p testPlace) Status() Status { return p.status }

func rated(id string, score float64, status Status) testPlace {
	return testPlace{id: id, score: &score, status: status}
}

func ptr[T any](v T) *T { return &v }

// stubFetcher returns a fixed record set per tile and records the calls.
type stubFetcher struct {
	mu       sync.Mutex
	calls    []geo.Coordinate
	records  func(call int, tile geo.Coordinate) ([]Place, error)
	inFlight int
	maxSeen  int
}

func (f *stubFetcher) FetchTile(_ context.Context, tile geo.Coordinate, _ RunConfig) ([]Place, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	call := len(f.calls)
	f.calls = append(f.calls, tile)
	f.mu.Unlock()

	var (
		out []Place
		err error
	)
	if f.records != nil {
		out, err = f.records(call, tile)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	return out, err
}

func (f *stubFetcher) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *stubFetcher) callCount() int { return f.Requests() }

// recordingSink captures every delivery.
type recordingSink struct {
	deliveries [][]Place
	err        error
}

func (s *recordingSink) Deliver(_ context.Context, places []Place) error {
	s.deliveries = append(s.deliveries, places)
	return s.err
}

// sleepRecorder replaces the pacing sleep and records requested durations.
type sleepRecorder struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.sleeps = append(r.sleeps, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *sleepRecorder) count(d time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sleeps {
		if s == d {
			n++
		}
	}
	return n
}

func tileGrid(n int) []geo.Coordinate {
	tiles := make([]geo.Coordinate, n)
	for i := range tiles {
		tiles[i] = geo.Coordinate{Latitude: float64(i), Longitude: float64(-i)}
	}
	return tiles
}

func mustConfig(opts ...Option) RunConfig {
	base := []Option{WithAPIKey("test-key"), WithSink(&recordingSink{})}
	cfg, err := NewRunConfig(geo.Coordinate{Latitude: 10, Longitude: 10}, append(base, opts...)...)
	if err != nil {
		panic(err)
	}
	return cfg
}
