// Package config loads the service configuration.
//
// Order: defaults -> YAML file -> EPSILON_* environment variables.
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/aretw0/epsilon/pkg/locale"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "epsilon.yaml"

// Config is the full service configuration.
type Config struct {
	Epsilon    float64          `mapstructure:"epsilon" yaml:"epsilon"`
	Interval   time.Duration    `mapstructure:"interval" yaml:"interval"`
	Loop       bool             `mapstructure:"loop" yaml:"loop"`
	// Seed makes decision draws reproducible. Zero draws from the process generator.
	Seed       uint64           `mapstructure:"seed" yaml:"seed"`
	HTTP       HTTPConfig       `mapstructure:"http" yaml:"http"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Locale     LocaleConfig     `mapstructure:"locale" yaml:"locale"`
	Region     RegionConfig     `mapstructure:"region" yaml:"region"`
	Redis      RedisConfig      `mapstructure:"redis" yaml:"redis"`
	Preference PreferenceConfig `mapstructure:"preference" yaml:"preference"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

type LocaleConfig struct {
	// Default is used when no preference exists and detection fails.
	Default string `mapstructure:"default" yaml:"default"`
	// Dir is an optional loam repository of override documents.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

type RegionConfig struct {
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Disabled bool          `mapstructure:"disabled" yaml:"disabled"`
}

// RedisConfig enables the Redis preference store when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"`
}

type PreferenceConfig struct {
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
	// Secret, when set, pseudonymizes client ids and encrypts stored languages.
	Secret string `mapstructure:"secret" yaml:"secret"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Epsilon:  0.4,
		Interval: 2500 * time.Millisecond,
		HTTP:     HTTPConfig{Addr: ":8080"},
		Log:      LogConfig{Level: "info"},
		Locale:   LocaleConfig{Default: locale.Default},
		Region: RegionConfig{
			Endpoint: "https://ipwho.is/",
			Timeout:  3 * time.Second,
		},
		Redis:      RedisConfig{Prefix: "epsilon:locale:"},
		Preference: PreferenceConfig{TTL: 30 * 24 * time.Hour},
	}
}

// envKeys maps environment variables to configuration paths.
var envKeys = map[string]string{
	"EPSILON_EPSILON":           "epsilon",
	"EPSILON_INTERVAL":          "interval",
	"EPSILON_LOOP":              "loop",
	"EPSILON_SEED":              "seed",
	"EPSILON_HTTP_ADDR":         "http.addr",
	"EPSILON_LOG_LEVEL":         "log.level",
	"EPSILON_LOCALE_DEFAULT":    "locale.default",
	"EPSILON_LOCALE_DIR":        "locale.dir",
	"EPSILON_REGION_ENDPOINT":   "region.endpoint",
	"EPSILON_REGION_TIMEOUT":    "region.timeout",
	"EPSILON_REGION_DISABLED":   "region.disabled",
	"EPSILON_REDIS_ADDR":        "redis.addr",
	"EPSILON_REDIS_PASSWORD":    "redis.password",
	"EPSILON_REDIS_DB":          "redis.db",
	"EPSILON_REDIS_PREFIX":      "redis.prefix",
	"EPSILON_PREFERENCE_TTL":    "preference.ttl",
	"EPSILON_PREFERENCE_SECRET": "preference.secret",
}

// Load reads path (or DefaultFile when path is empty and the file exists)
// and applies environment overrides from the process environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is like Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Config, error) {
	raw := map[string]any{}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	for env, key := range envKeys {
		if v, ok := lookup(env); ok && v != "" {
			setPath(raw, key, v)
		}
	}

	cfg := Default()
	if err := Decode(raw, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode overlays a generic map onto cfg.
func Decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return fmt.Errorf("config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Epsilon <= 0 || c.Epsilon >= 1 {
		return fmt.Errorf("%w: got %v", domain.ErrInvalidEpsilon, c.Epsilon)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", c.Interval)
	}
	lang, err := locale.Parse(c.Locale.Default)
	if err != nil {
		return fmt.Errorf("locale.default: %w", err)
	}
	c.Locale.Default = lang
	if c.Region.Timeout < 0 {
		return fmt.Errorf("region.timeout must be non-negative, got %v", c.Region.Timeout)
	}
	if c.Preference.TTL < 0 {
		return fmt.Errorf("preference.ttl must be non-negative, got %v", c.Preference.TTL)
	}
	return nil
}

func setPath(m map[string]any, path, value string) {
	parts := strings.Split(path, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}
