package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/placesweep/internal/cost"
)

// Config holds the full application configuration.
type Config struct {
	Places  PlacesConfig  `yaml:"places" mapstructure:"places"`
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Sweep   SweepConfig   `yaml:"sweep" mapstructure:"sweep"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Pricing cost.Rates    `yaml:"pricing" mapstructure:"pricing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// PlacesConfig configures the Google Places client.
type PlacesConfig struct {
	APIKey                  string  `yaml:"api_key" mapstructure:"api_key"`
	API                     string  `yaml:"api" mapstructure:"api"`
	BaseURL                 string  `yaml:"base_url" mapstructure:"base_url"`
	LegacyBaseURL           string  `yaml:"legacy_base_url" mapstructure:"legacy_base_url"`
	GeocodeBaseURL          string  `yaml:"geocode_base_url" mapstructure:"geocode_base_url"`
	RateLimit               float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs             int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxPages                int     `yaml:"max_pages" mapstructure:"max_pages"`
	PageTokenDelayMS        int     `yaml:"page_token_delay_ms" mapstructure:"page_token_delay_ms"`
	CircuitFailureThreshold int     `yaml:"circuit_failure_threshold" mapstructure:"circuit_failure_threshold"`
	CircuitResetSecs        int     `yaml:"circuit_reset_secs" mapstructure:"circuit_reset_secs"`
	Language                string  `yaml:"language" mapstructure:"language"`
}

// Timeout returns the HTTP client timeout.
func (c PlacesConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// PageTokenDelay returns the continuation token wait.
func (c PlacesConfig) PageTokenDelay() time.Duration {
	return time.Duration(c.PageTokenDelayMS) * time.Millisecond
}

// CircuitReset returns how long an open circuit waits before a probe.
func (c PlacesConfig) CircuitReset() time.Duration {
	return time.Duration(c.CircuitResetSecs) * time.Second
}

// SearchConfig holds the default search parameters. Command flags
// override them.
type SearchConfig struct {
	Radius        float64  `yaml:"radius" mapstructure:"radius"`
	SubRadius     float64  `yaml:"sub_radius" mapstructure:"sub_radius"`
	Type          string   `yaml:"type" mapstructure:"type"`
	MinScore      float64  `yaml:"min_score" mapstructure:"min_score"`
	Limit         int      `yaml:"limit" mapstructure:"limit"`
	AllowInactive bool     `yaml:"allow_inactive" mapstructure:"allow_inactive"`
	Fields        []string `yaml:"fields" mapstructure:"fields"`
	ExcludedTypes []string `yaml:"excluded_types" mapstructure:"excluded_types"`
}

// SweepConfig paces the tile sweep.
type SweepConfig struct {
	BatchDelayMS  int `yaml:"batch_delay_ms" mapstructure:"batch_delay_ms"`
	CooldownEvery int `yaml:"cooldown_every" mapstructure:"cooldown_every"`
	CooldownMS    int `yaml:"cooldown_ms" mapstructure:"cooldown_ms"`
}

// BatchDelay returns the pause between tiles.
func (c SweepConfig) BatchDelay() time.Duration {
	return time.Duration(c.BatchDelayMS) * time.Millisecond
}

// Cooldown returns the periodic extra pause.
func (c SweepConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownMS) * time.Millisecond
}

// OutputConfig selects the default result destination.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// MetricsConfig configures the Prometheus endpoint served during a search.
type MetricsConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the fields required by the given command mode.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "search":
		if c.Places.APIKey == "" {
			errs = append(errs, "places.api_key is required")
		}
		if c.Places.API != "" && c.Places.API != "legacy" && c.Places.API != "new" {
			errs = append(errs, fmt.Sprintf("places.api must be legacy or new, got %q", c.Places.API))
		}
		if c.Places.RateLimit <= 0 {
			errs = append(errs, "places.rate_limit must be > 0")
		}
		if c.Places.MaxPages < 1 || c.Places.MaxPages > 3 {
			errs = append(errs, "places.max_pages must be between 1 and 3")
		}
		if c.Search.Radius <= 0 || c.Search.SubRadius <= 0 {
			errs = append(errs, "search.radius and search.sub_radius must be > 0")
		}
		if c.Search.Limit < 0 {
			errs = append(errs, "search.limit must be >= 0")
		}
		if c.Sweep.BatchDelayMS < 0 || c.Sweep.CooldownMS < 0 || c.Sweep.CooldownEvery < 0 {
			errs = append(errs, "sweep values must be >= 0")
		}
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "tiles":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("placesweep")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PLACESWEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("places.api_key", "")
	v.SetDefault("places.api", "legacy")
	v.SetDefault("places.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("places.legacy_base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("places.geocode_base_url", "https://maps.googleapis.com/maps/api/geocode")
	v.SetDefault("places.rate_limit", 10.0)
	v.SetDefault("places.timeout_secs", 10)
	v.SetDefault("places.max_pages", 3)
	v.SetDefault("places.page_token_delay_ms", 2000)
	v.SetDefault("places.circuit_failure_threshold", 0)
	v.SetDefault("places.circuit_reset_secs", 30)
	v.SetDefault("places.language", "")
	v.SetDefault("search.radius", 4000.0)
	v.SetDefault("search.sub_radius", 500.0)
	v.SetDefault("search.type", "restaurant")
	v.SetDefault("search.min_score", 4.1)
	v.SetDefault("search.limit", 0)
	v.SetDefault("search.allow_inactive", false)
	v.SetDefault("search.fields", []string{})
	v.SetDefault("search.excluded_types", []string{})
	v.SetDefault("sweep.batch_delay_ms", 200)
	v.SetDefault("sweep.cooldown_every", 20)
	v.SetDefault("sweep.cooldown_ms", 2000)
	v.SetDefault("output.format", "json")
	v.SetDefault("output.path", "")
	v.SetDefault("pricing.legacy_nearby", 32.00)
	v.SetDefault("pricing.nearby_pro", 32.00)
	v.SetDefault("pricing.nearby_enterprise", 35.00)
	v.SetDefault("pricing.nearby_enterprise_atmosphere", 40.00)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
