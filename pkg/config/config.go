// Package config loads canopy settings from a YAML file and the environment.
//
// Viper reads the file and overlays CANOPY_* variables, one per
// mapstructure key of Config (browser.no_results is CANOPY_BROWSER_NO_RESULTS).
// The merged settings are decoded over Default with weak typing, so values
// coming from the environment ("12", "true", "30s") land in typed fields.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CANOPY_"

// Config is the full set of runtime settings.
type Config struct {
	// Tree is the path of the category tree file used by the memory provider.
	Tree string `mapstructure:"tree" yaml:"tree"`

	// Seed makes a run reproducible. Nil means a random seed.
	Seed *uint64 `mapstructure:"seed" yaml:"seed,omitempty"`

	// Reports is the directory of the file report store, used when Redis is off.
	Reports string `mapstructure:"reports" yaml:"reports"`

	Limits  domain.Limits `mapstructure:"limits" yaml:"limits"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Redis   RedisConfig   `mapstructure:"redis" yaml:"redis"`
	HTTP    HTTPConfig    `mapstructure:"http" yaml:"http"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
}

// LogConfig selects level and handler format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// RedisConfig enables the Redis report store and session locker when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// SessionConfig guards a provider session with a distributed lock.
type SessionConfig struct {
	ID      string        `mapstructure:"id" yaml:"id"`
	LockTTL time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
}

// BrowserConfig drives a live storefront through a headless browser.
type BrowserConfig struct {
	URL       string        `mapstructure:"url" yaml:"url"`
	Headless  bool          `mapstructure:"headless" yaml:"headless"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Children  string        `mapstructure:"children" yaml:"children"`
	Items     string        `mapstructure:"items" yaml:"items"`
	NoResults string        `mapstructure:"no_results" yaml:"no_results"`
	Dismiss   string        `mapstructure:"dismiss" yaml:"dismiss"`
	Up        string        `mapstructure:"up" yaml:"up"`
	Install   bool          `mapstructure:"install" yaml:"install"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Limits:  domain.DefaultLimits(),
		Reports: ".canopy/reports",
		Log:     LogConfig{Level: "info", Format: "text"},
		Redis:   RedisConfig{Prefix: "canopy:report:", TTL: 24 * time.Hour},
		HTTP:    HTTPConfig{Addr: ":8080"},
		Session: SessionConfig{
			LockTTL: 5 * time.Minute,
		},
		Browser: BrowserConfig{
			Headless: true,
			Timeout:  15 * time.Second,
		},
	}
}

// Load reads path (if not empty), applies environment overrides and validates
// the result. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	return decode(v)
}

// Decode builds a Config from a generic map layered over Default and the
// environment.
func Decode(raw map[string]interface{}) (*Config, error) {
	v := newViper()
	if err := v.MergeConfigMap(raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	// JSON files are valid YAML, and paths without an extension are allowed.
	v.SetConfigType("yaml")
	v.SetEnvPrefix(strings.TrimSuffix(EnvPrefix, "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only answers for keys viper already knows about.
	for _, key := range keys(reflect.TypeOf(Config{}), "") {
		_ = v.BindEnv(key, EnvName(key))
	}
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := Default()
	err := v.UnmarshalExact(cfg, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc()))
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.Limits = cfg.Limits.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// keys lists the dotted mapstructure keys of every leaf field of t.
func keys(t reflect.Type, prefix string) []string {
	var out []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := strings.Split(f.Tag.Get("mapstructure"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + tag
		if f.Type.Kind() == reflect.Struct {
			out = append(out, keys(f.Type, key+".")...)
			continue
		}
		out = append(out, key)
	}
	return out
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if err := c.Limits.Validate(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid config: log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Session.ID != "" && !c.Redis.Enabled() {
		return errors.New("invalid config: session.id requires redis.addr")
	}
	if c.Browser.URL != "" && (c.Browser.Children == "" || c.Browser.Items == "") {
		return errors.New("invalid config: browser.children and browser.items selectors are required with browser.url")
	}
	return nil
}
