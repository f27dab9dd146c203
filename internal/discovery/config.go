package discovery

import (
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"

	"github.com/sells-group/placesweep/internal/geo"
	"github.com/sells-group/placesweep/pkg/google"
)

// Run defaults.
const (
	DefaultRadius    = 4000.0
	DefaultSubRadius = 500.0
	DefaultPlaceType = "restaurant"
	DefaultMinScore  = 4.1
)

// Configuration errors. They are returned synchronously by NewRunConfig and
// Search, before any request is made.
var (
	ErrMissingCredential = eris.New("discovery: api key is required")
	ErrMissingSink       = eris.New("discovery: output sink is required")
	ErrInvalidRadius     = eris.New("discovery: radius must be positive")
	ErrInvalidSubRadius  = eris.New("discovery: sub-radius must be positive")
	ErrInvalidLimit      = eris.New("discovery: limit must not be negative")
	ErrInvalidAPI        = eris.New("discovery: unknown api variant")
)

// API selects which Places endpoint a run uses.
type API string

const (
	// APILegacy is the paginated legacy Nearby Search.
	APILegacy API = "legacy"
	// APINew is Places API (New) searchNearby.
	APINew API = "new"
)

// ParseAPI validates an API name. The empty string selects APILegacy.
func ParseAPI(s string) (API, error) {
	switch API(strings.ToLower(strings.TrimSpace(s))) {
	case "", APILegacy:
		return APILegacy, nil
	case APINew:
		return APINew, nil
	default:
		return "", eris.Wrapf(ErrInvalidAPI, "%q", s)
	}
}

// RunConfig is the immutable parameter set of one run. Build it with
// NewRunConfig; all state is read through getters.
type RunConfig struct {
	center        geo.Coordinate
	radius        float64
	subRadius     float64
	placeType     string
	minScore      float64
	limit         int
	allowInactive bool
	fields        []string
	excludedTypes []string
	language      string
	apiKey        string
	api           API
	sink          Sink
	seed          uint64
	seeded        bool
}

// Option sets one RunConfig parameter.
type Option func(*RunConfig)

// WithRadius sets the search radius in meters.
func WithRadius(m float64) Option {
	return func(c *RunConfig) { c.radius = m }
}

// WithSubRadius sets the per-tile search radius in meters.
func WithSubRadius(m float64) Option {
	return func(c *RunConfig) { c.subRadius = m }
}

// WithPlaceType sets the category filter sent to the provider.
func WithPlaceType(t string) Option {
	return func(c *RunConfig) { c.placeType = t }
}

// WithMinScore sets the minimum rating a place needs to be kept.
func WithMinScore(s float64) Option {
	return func(c *RunConfig) { c.minScore = s }
}

// WithLimit caps the number of places returned. Zero means no cap.
func WithLimit(n int) Option {
	return func(c *RunConfig) { c.limit = n }
}

// WithAllowInactive keeps temporarily and permanently closed places.
func WithAllowInactive(allow bool) Option {
	return func(c *RunConfig) { c.allowInactive = allow }
}

// WithFields selects the response fields for providers that support
// partial responses.
func WithFields(fields ...string) Option {
	return func(c *RunConfig) { c.fields = slices.Clone(fields) }
}

// WithExcludedTypes drops places whose primary type is listed.
func WithExcludedTypes(types ...string) Option {
	return func(c *RunConfig) { c.excludedTypes = slices.Clone(types) }
}

// WithLanguage sets the result language as a BCP 47 tag.
func WithLanguage(tag string) Option {
	return func(c *RunConfig) { c.language = tag }
}

// WithAPIKey sets the provider credential.
func WithAPIKey(key string) Option {
	return func(c *RunConfig) { c.apiKey = key }
}

// WithAPI selects the provider endpoint.
func WithAPI(api API) Option {
	return func(c *RunConfig) { c.api = api }
}

// WithSink sets where the final result set is delivered.
func WithSink(s Sink) Option {
	return func(c *RunConfig) { c.sink = s }
}

// WithShuffleSeed makes tile selection deterministic when a limit prunes
// the tile list.
func WithShuffleSeed(seed uint64) Option {
	return func(c *RunConfig) {
		c.seed = seed
		c.seeded = true
	}
}

// NewRunConfig applies opts over the defaults and validates the result.
func NewRunConfig(center geo.Coordinate, opts ...Option) (RunConfig, error) {
	c := RunConfig{
		center:    center,
		radius:    DefaultRadius,
		subRadius: DefaultSubRadius,
		placeType: DefaultPlaceType,
		minScore:  DefaultMinScore,
		api:       APILegacy,
	}
	for _, o := range opts {
		o(&c)
	}
	if c.language != "" {
		tag, err := language.Parse(c.language)
		if err != nil {
			return RunConfig{}, eris.Wrapf(err, "discovery: invalid language %q", c.language)
		}
		c.language = tag.String()
	}
	if err := c.validate(); err != nil {
		return RunConfig{}, err
	}
	return c, nil
}

func (c RunConfig) validate() error {
	if c.apiKey == "" {
		return ErrMissingCredential
	}
	if c.sink == nil {
		return ErrMissingSink
	}
	if !(c.radius > 0) {
		return ErrInvalidRadius
	}
	if !(c.subRadius > 0) {
		return ErrInvalidSubRadius
	}
	if err := c.Area().Validate(); err != nil {
		return eris.Wrap(err, "discovery: search area")
	}
	if c.limit < 0 {
		return ErrInvalidLimit
	}
	if c.api != APILegacy && c.api != APINew {
		return eris.Wrapf(ErrInvalidAPI, "%q", c.api)
	}
	return nil
}

// Center returns the search center.
func (c RunConfig) Center() geo.Coordinate { return c.center }

// Area returns the search area handed to the tiler.
func (c RunConfig) Area() geo.SearchArea {
	return geo.SearchArea{Center: c.center, Radius: c.radius, SubRadius: c.subRadius}
}

// Radius returns the search radius in meters.
func (c RunConfig) Radius() float64 { return c.radius }

// SubRadius returns the per-tile radius in meters.
func (c RunConfig) SubRadius() float64 { return c.subRadius }

// PlaceType returns the category filter.
func (c RunConfig) PlaceType() string { return c.placeType }

// MinScore returns the minimum rating.
func (c RunConfig) MinScore() float64 { return c.minScore }

// Limit returns the result cap, zero for none.
func (c RunConfig) Limit() int { return c.limit }

// AllowInactive reports whether closed places are kept.
func (c RunConfig) AllowInactive() bool { return c.allowInactive }

// Fields returns a copy of the requested response fields.
func (c RunConfig) Fields() []string { return slices.Clone(c.fields) }

// ExcludedTypes returns a copy of the excluded primary types.
func (c RunConfig) ExcludedTypes() []string { return slices.Clone(c.excludedTypes) }

// Language returns the canonical language tag, or "".
func (c RunConfig) Language() string { return c.language }

// APIKey returns the provider credential.
func (c RunConfig) APIKey() string { return c.apiKey }

// API returns the provider endpoint.
func (c RunConfig) API() API { return c.api }

// Sink returns the output sink.
func (c RunConfig) Sink() Sink { return c.sink }

// ShuffleSeed returns the tile shuffle seed and whether one was set.
func (c RunConfig) ShuffleSeed() (uint64, bool) { return c.seed, c.seeded }

// Filter returns the finalization options of the run.
func (c RunConfig) Filter() FilterOpts {
	return FilterOpts{MinScore: c.minScore, AllowInactive: c.allowInactive, Limit: c.limit}
}

// RequestFields is the field selection sent to searchNearby: the
// configured fields, or the defaults, plus whatever the filters need.
func (c RunConfig) RequestFields() []string {
	fields := c.Fields()
	if len(fields) == 0 {
		fields = slices.Clone(google.DefaultFields)
	}
	fields = appendMissing(fields, "id", "businessStatus")
	if c.minScore > 0 {
		fields = appendMissing(fields, "rating")
	}
	return fields
}

// SKU returns the billing tier the run's requests are charged at.
func (c RunConfig) SKU() google.SKU {
	if c.api == APILegacy {
		return google.SKULegacyNearby
	}
	return google.SKUForFields(c.RequestFields())
}

func appendMissing(fields []string, want ...string) []string {
	for _, w := range want {
		if !slices.Contains(fields, w) && !slices.Contains(fields, "places."+w) {
			fields = append(fields, w)
		}
	}
	return fields
}
