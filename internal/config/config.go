// Package config loads isstracker settings from an optional YAML file and
// ISSTRACKER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vigneswari-developer/isstracker/internal/clock"
	"github.com/vigneswari-developer/isstracker/internal/geocode"
	"github.com/vigneswari-developer/isstracker/internal/iss"
	"github.com/vigneswari-developer/isstracker/internal/n2yo"
)

const EnvPrefix = "ISSTRACKER"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Time      TimeConfig      `mapstructure:"time"`
	Passes    PassesConfig    `mapstructure:"passes"`
	Services  ServicesConfig  `mapstructure:"services"`
	Collision CollisionConfig `mapstructure:"collision"`
	Quota     QuotaConfig     `mapstructure:"quota"`
	Stream    StreamConfig    `mapstructure:"stream"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	TrustProxy   bool          `mapstructure:"trust_proxy"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`

	MaxLookupsPerIP int `mapstructure:"max_lookups_per_ip"`
	MaxLookups      int `mapstructure:"max_lookups"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TimeConfig struct {
	Zone string `mapstructure:"zone"` // IANA name; empty for the system zone
}

type PassesConfig struct {
	LiveEnabled  bool          `mapstructure:"live_enabled"`
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	SatelliteID  int           `mapstructure:"satellite_id"`
	Count        int           `mapstructure:"count"`
	MinElevation float64       `mapstructure:"min_elevation"`
	ObserverAlt  float64       `mapstructure:"observer_alt"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Seed         *uint64       `mapstructure:"seed"`
}

type ServicesConfig struct {
	NominatimURL      string        `mapstructure:"nominatim_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	GeocodeTimeout    time.Duration `mapstructure:"geocode_timeout"`
	ISSPositionURL    string        `mapstructure:"iss_position_url"`
	ISSTimeout        time.Duration `mapstructure:"iss_timeout"`
	AstronautsURL     string        `mapstructure:"astronauts_url"`
	AstronautsTimeout time.Duration `mapstructure:"astronauts_timeout"`
}

type CollisionConfig struct {
	WindowDays  int    `mapstructure:"window_days"`
	CatalogFile string `mapstructure:"catalog_file"`
}

type QuotaConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Limit    int64         `mapstructure:"limit"`
	Window   time.Duration `mapstructure:"window"`
	RedisURL string        `mapstructure:"redis_url"`
}

// StreamConfig controls the live position stream. Enabled=false drops the
// route entirely.
type StreamConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	Keepalive time.Duration `mapstructure:"keepalive"`
	MaxPerIP  int           `mapstructure:"max_per_ip"`
	MaxTotal  int           `mapstructure:"max_total"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.max_lookups_per_ip", 4)
	v.SetDefault("server.max_lookups", 100)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("time.zone", "")

	v.SetDefault("passes.live_enabled", true)
	v.SetDefault("passes.api_key", "")
	v.SetDefault("passes.base_url", n2yo.DefaultBaseURL)
	v.SetDefault("passes.satellite_id", n2yo.ISSNoradID)
	v.SetDefault("passes.count", 5)
	v.SetDefault("passes.min_elevation", 10.0)
	v.SetDefault("passes.observer_alt", 0.0)
	v.SetDefault("passes.timeout", "10s")

	v.SetDefault("services.nominatim_url", geocode.DefaultBaseURL)
	v.SetDefault("services.user_agent", geocode.DefaultUserAgent)
	v.SetDefault("services.geocode_timeout", "10s")
	v.SetDefault("services.iss_position_url", iss.DefaultPositionURL)
	v.SetDefault("services.iss_timeout", "8s")
	v.SetDefault("services.astronauts_url", iss.DefaultRosterURL)
	v.SetDefault("services.astronauts_timeout", "6s")

	v.SetDefault("collision.window_days", 3)
	v.SetDefault("collision.catalog_file", "")

	v.SetDefault("quota.enabled", false)
	v.SetDefault("quota.limit", 100)
	v.SetDefault("quota.window", "1h")
	v.SetDefault("quota.redis_url", "")

	v.SetDefault("stream.enabled", true)
	v.SetDefault("stream.interval", "5s")
	v.SetDefault("stream.keepalive", "30s")
	v.SetDefault("stream.max_per_ip", 2)
	v.SetDefault("stream.max_total", 50)
}

// Load reads configuration. An empty path searches ./isstracker.yaml and
// /etc/isstracker/isstracker.yaml; a missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("isstracker")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/isstracker")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// No default, so AutomaticEnv alone would not surface it to Unmarshal.
	_ = v.BindEnv("passes.seed")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Passes.Count < 1 || c.Passes.Count > 10 {
		errs = append(errs, fmt.Errorf("passes.count must be 1-10, got %d", c.Passes.Count))
	}
	if c.Collision.WindowDays < 0 {
		errs = append(errs, fmt.Errorf("collision.window_days must not be negative, got %d", c.Collision.WindowDays))
	}

	timeouts := map[string]time.Duration{
		"passes.timeout":              c.Passes.Timeout,
		"services.geocode_timeout":    c.Services.GeocodeTimeout,
		"services.iss_timeout":        c.Services.ISSTimeout,
		"services.astronauts_timeout": c.Services.AstronautsTimeout,
		"server.read_timeout":         c.Server.ReadTimeout,
		"server.write_timeout":        c.Server.WriteTimeout,
	}
	for _, name := range slices.Sorted(maps.Keys(timeouts)) {
		if timeouts[name] <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}

	if c.Server.MaxLookupsPerIP > 0 && c.Server.MaxLookups < c.Server.MaxLookupsPerIP {
		errs = append(errs, fmt.Errorf("server.max_lookups (%d) must be at least server.max_lookups_per_ip (%d)",
			c.Server.MaxLookups, c.Server.MaxLookupsPerIP))
	}
	if c.Stream.Enabled {
		if c.Stream.Interval < time.Second {
			errs = append(errs, fmt.Errorf("stream.interval must be at least 1s, got %s", c.Stream.Interval))
		}
		if c.Stream.MaxPerIP < 1 || c.Stream.MaxTotal < c.Stream.MaxPerIP {
			errs = append(errs, fmt.Errorf("stream.max_per_ip must be positive and not above stream.max_total"))
		}
	}
	if c.Quota.Enabled && c.Quota.Window <= 0 {
		errs = append(errs, errors.New("quota.window must be positive"))
	}
	if _, err := clock.LoadLocation(c.Time.Zone); err != nil {
		errs = append(errs, fmt.Errorf("time.zone: %w", err))
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
