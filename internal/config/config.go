package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables. A double underscore
// separates nesting levels: MALLWEB_PREFS__BACKEND sets prefs.backend.
const EnvPrefix = "MALLWEB_"

const (
	defaultConfigFile = "config.yaml"
	defaultAddr       = ":8080"
)

// ErrInvalid wraps validation failures.
var ErrInvalid = errors.New("config: invalid")

// Config captures all runtime configuration organised by concern.
type Config struct {
	Env      string `koanf:"env" validate:"oneof=dev prod test"`
	LogLevel string `koanf:"log_level"`

	Server    ServerConfig    `koanf:"server"`
	Session   SessionConfig   `koanf:"session"`
	I18n      I18nConfig      `koanf:"i18n"`
	Directory DirectoryConfig `koanf:"directory"`
	Prefs     PrefsConfig     `koanf:"prefs"`
	Analytics AnalyticsConfig `koanf:"analytics"`
}

// ServerConfig configures the HTTP listener and on-disk assets.
type ServerConfig struct {
	Addr         string        `koanf:"addr" validate:"required"`
	TemplatesDir string        `koanf:"templates_dir" validate:"required"`
	PublicDir    string        `koanf:"public_dir" validate:"required"`
	ContentDir   string        `koanf:"content_dir" validate:"required"`
	BaseURL      string        `koanf:"base_url" validate:"omitempty,url"`
	DevMode      bool          `koanf:"dev_mode"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"gt=0"`
}

// SessionConfig holds cookie signing material.
type SessionConfig struct {
	HashKey  string `koanf:"hash_key" validate:"omitempty,min=32"`
	BlockKey string `koanf:"block_key" validate:"omitempty,len=16|len=24|len=32"`
	Secure   bool   `koanf:"secure"`
}

// I18nConfig selects the locales offered by the language switcher.
type I18nConfig struct {
	Fallback  string   `koanf:"fallback" validate:"required"`
	Supported []string `koanf:"supported" validate:"min=1,dive,required"`
}

// DirectoryConfig tunes the store directory state owner.
type DirectoryConfig struct {
	FetchDelay    time.Duration `koanf:"fetch_delay" validate:"gte=0"`
	IdleTTL       time.Duration `koanf:"idle_ttl" validate:"gt=0"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"gt=0"`
}

// PrefsConfig selects the durable preference storage backend.
type PrefsConfig struct {
	Backend     string        `koanf:"backend" validate:"oneof=memory sqlite redis"`
	SQLitePath  string        `koanf:"sqlite_path" validate:"required_if=Backend sqlite"`
	RedisURL    string        `koanf:"redis_url" validate:"required_if=Backend redis"`
	RedisPrefix string        `koanf:"redis_prefix"`
	TTL         time.Duration `koanf:"ttl" validate:"gte=0"`
}

// AnalyticsConfig holds client instrumentation identifiers surfaced to templates.
type AnalyticsConfig struct {
	GA4MeasurementID string `koanf:"ga4_measurement_id"`
	GTMContainerID   string `koanf:"gtm_container_id"`
	Debug            bool   `koanf:"debug"`
}

func defaults() map[string]any {
	return map[string]any{
		"env":                      "dev",
		"log_level":                "info",
		"server.addr":              defaultAddr,
		"server.templates_dir":     "templates",
		"server.public_dir":        "public",
		"server.content_dir":       "content",
		"server.read_timeout":      "15s",
		"server.write_timeout":     "15s",
		"server.idle_timeout":      "60s",
		"i18n.fallback":            "ru",
		"i18n.supported":           []string{"ru", "en", "kk"},
		"directory.fetch_delay":    "800ms",
		"directory.idle_ttl":       "30m",
		"directory.sweep_interval": "1m",
		"prefs.backend":            "memory",
		"prefs.sqlite_path":        "mallweb.db",
		"prefs.redis_prefix":       "mallweb:",
	}
}

// Load layers defaults, an optional YAML file, a .env file and the process
// environment (highest priority), then validates the result. An empty path
// reads config.yaml when it exists.
func Load(path string) (Config, error) {
	var cfg Config
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return cfg, fmt.Errorf("config: load defaults: %w", err)
	}

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = defaultConfigFile
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if envFile, err := godotenv.Read(".env"); err == nil {
		m := make(map[string]any, len(envFile))
		for key, value := range envFile {
			if strings.HasPrefix(key, EnvPrefix) {
				m[envKey(key)] = value
			}
		}
		if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
			return cfg, fmt.Errorf("config: load .env: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("config: read .env: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return cfg, fmt.Errorf("config: load env: %w", err)
	}

	// Cloud Run style PORT applies when no address was configured explicitly.
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" && k.String("server.addr") == defaultAddr {
		if err := k.Set("server.addr", ":"+port); err != nil {
			return cfg, fmt.Errorf("config: apply PORT: %w", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks struct constraints.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !contains(c.I18n.Supported, c.I18n.Fallback) {
		return fmt.Errorf("%w: fallback locale %q is not supported", ErrInvalid, c.I18n.Fallback)
	}
	return nil
}

// IsProd reports whether the service runs in production mode.
func (c Config) IsProd() bool { return c.Env == "prod" }

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
