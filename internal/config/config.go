// Package config loads civic settings from struct defaults, an optional YAML
// file and CIVIC_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/alexanderramin/civic/internal/catalog"
	"github.com/alexanderramin/civic/internal/domain"
	"github.com/alexanderramin/civic/internal/preference"
	"github.com/alexanderramin/civic/internal/recommend"
	"github.com/alexanderramin/civic/internal/service"
)

const (
	// EnvPrefix marks environment variables read by Load.
	EnvPrefix = "CIVIC_"
	// PathEnvVar names the config file when no explicit path is given.
	PathEnvVar = "CIVIC_CONFIG"
	// DefaultPath is used when it exists and nothing else names a file.
	DefaultPath = "civic.yaml"

	BackendSQLite = "sqlite"
	BackendHTTP   = "http"
)

// Config is the full process configuration.
type Config struct {
	UserID      string             `koanf:"user_id" validate:"required,max=64"`
	DB          DBConfig           `koanf:"db"`
	Catalog     CatalogConfig      `koanf:"catalog"`
	Engine      EngineSettings     `koanf:"engine"`
	Preferences PreferenceSettings `koanf:"preferences"`
	Server      ServerConfig       `koanf:"server"`
	Log         LogConfig          `koanf:"log"`
}

type DBConfig struct {
	// Path defaults to ~/.civic/civic.db.
	Path string `koanf:"path"`
}

// CatalogConfig selects where candidate actions come from.
type CatalogConfig struct {
	Backend         string        `koanf:"backend" validate:"oneof=sqlite http"`
	BaseURL         string        `koanf:"base_url" validate:"omitempty,url"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxRetries      int           `koanf:"max_retries" validate:"min=0,max=5"`
	BreakerFailures uint32        `koanf:"breaker_failures" validate:"min=1"`
	BreakerCooldown time.Duration `koanf:"breaker_cooldown" validate:"gt=0"`
	LogCalls        bool          `koanf:"log_calls"`
}

type EngineSettings struct {
	MinResults      int           `koanf:"min_results" validate:"min=2"`
	MaxResults      int           `koanf:"max_results" validate:"gtefield=MinResults"`
	PoolLimit       int           `koanf:"pool_limit" validate:"min=1,max=200"`
	CatalogTimeout  time.Duration `koanf:"catalog_timeout" validate:"gt=0"`
	FeedbackTimeout time.Duration `koanf:"feedback_timeout" validate:"gt=0"`
	Variety         bool          `koanf:"variety"`
	VarietySeed     uint64        `koanf:"variety_seed"`
}

type PreferenceSettings struct {
	FlushDelay   time.Duration `koanf:"flush_delay" validate:"gt=0"`
	RetryDelay   time.Duration `koanf:"retry_delay" validate:"gt=0"`
	FlushTimeout time.Duration `koanf:"flush_timeout" validate:"gt=0"`
	ListCap      int           `koanf:"list_cap" validate:"min=1,max=100"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	RateLimit       int           `koanf:"rate_limit" validate:"min=0"`
	RateWindow      time.Duration `koanf:"rate_window" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		UserID: "local",
		Catalog: CatalogConfig{
			Backend:         BackendSQLite,
			BaseURL:         catalog.DefaultHTTPConfig().BaseURL,
			Timeout:         5 * time.Second,
			MaxRetries:      1,
			BreakerFailures: 5,
			BreakerCooldown: 30 * time.Second,
		},
		Engine: EngineSettings{
			MinResults:      recommend.DefaultMinResults,
			MaxResults:      recommend.DefaultMaxResults,
			PoolLimit:       service.DefaultPoolLimit,
			CatalogTimeout:  service.DefaultCatalogTimeout,
			FeedbackTimeout: service.DefaultFeedbackTimeout,
		},
		Preferences: PreferenceSettings{
			FlushDelay:   preference.DefaultFlushDelay,
			RetryDelay:   preference.DefaultRetryDelay,
			FlushTimeout: preference.DefaultFlushTimeout,
			ListCap:      domain.DefaultPreferenceListCap,
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       120,
			RateWindow:      time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

var sections = []string{"db", "catalog", "engine", "preferences", "server", "log"}

var sliceKeys = []string{"server.cors_origins"}

// Load builds the configuration. path overrides CIVIC_CONFIG and civic.yaml.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path = findFile(path); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}
	if err := splitSlices(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.DB.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DB.Path = filepath.Join(home, ".civic", "civic.db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s: failed %q check", fe.Namespace(), fe.Tag())
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	if c.Catalog.Backend == BackendHTTP && c.Catalog.BaseURL == "" {
		return errors.New("catalog.base_url is required for the http backend")
	}
	return nil
}

func findFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// envKey maps CIVIC_ENGINE_MIN_RESULTS to engine.min_results. CIVIC_DB is
// shorthand for db.path.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	switch key {
	case "config":
		return ""
	case "db":
		return "db.path"
	}
	for _, s := range sections {
		if rest, ok := strings.CutPrefix(key, s+"_"); ok {
			return s + "." + rest
		}
	}
	return key
}

func splitSlices(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		s, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	}
	return nil
}

// EngineConfig converts the engine section.
func (c *Config) EngineConfig() service.EngineConfig {
	return service.EngineConfig{
		MinResults:      c.Engine.MinResults,
		MaxResults:      c.Engine.MaxResults,
		PoolLimit:       c.Engine.PoolLimit,
		CatalogTimeout:  c.Engine.CatalogTimeout,
		FeedbackTimeout: c.Engine.FeedbackTimeout,
		Variety:         c.Engine.Variety,
		VarietySeed:     c.Engine.VarietySeed,
	}
}

// HTTPConfig converts the catalog section for the HTTP backend.
func (c *Config) HTTPConfig() catalog.HTTPConfig {
	return catalog.HTTPConfig{
		BaseURL:         c.Catalog.BaseURL,
		Timeout:         c.Catalog.Timeout,
		MaxRetries:      c.Catalog.MaxRetries,
		BreakerFailures: c.Catalog.BreakerFailures,
		BreakerCooldown: c.Catalog.BreakerCooldown,
	}
}

// FlusherConfig converts the preferences section.
func (c *Config) FlusherConfig() preference.FlusherConfig {
	return preference.FlusherConfig{
		Delay:      c.Preferences.FlushDelay,
		RetryDelay: c.Preferences.RetryDelay,
		Timeout:    c.Preferences.FlushTimeout,
	}
}

// NewLogger builds the process logger described by the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
