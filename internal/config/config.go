package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Fetch     FetchConfig
	Decrypt   DecryptConfig
	Sites     SitesConfig
	Jobs      JobsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds inbound rate limiting configuration. The global
// budget caps the whole process; the per-IP budget keeps one client from
// consuming it alone.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	GlobalRPS         int  `envconfig:"RATE_LIMIT_GLOBAL_RPS" default:"1000"`
	GlobalBurst       int  `envconfig:"RATE_LIMIT_GLOBAL_BURST" default:"2000"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// FetchConfig holds outbound HTTP client configuration.
type FetchConfig struct {
	Timeout      time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	Retries      int           `envconfig:"FETCH_RETRIES" default:"3"`
	UserAgent    string        `envconfig:"FETCH_UA" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"`
	GlobalRPS    float64       `envconfig:"FETCH_GLOBAL_RPS" default:"0"`
	PerSiteRPS   float64       `envconfig:"FETCH_SITE_RPS" default:"2"`
	PerSiteBurst int           `envconfig:"FETCH_SITE_BURST" default:"4"`
}

// DecryptConfig holds unlock bridge configuration. The deadline default
// matches the vendor schemes' observed 5000ms budget; override only for
// testing.
type DecryptConfig struct {
	Deadline     time.Duration `envconfig:"DECRYPT_DEADLINE" default:"5s"`
	MaxStackSize int           `envconfig:"DECRYPT_MAX_STACK" default:"4096"`

	// ModulePath points at the vendor unlocking module on disk. Empty
	// leaves encrypted sites unregistered; the module is never
	// embedded.
	ModulePath string `envconfig:"DECRYPT_MODULE" default:""`
}

// SitesConfig holds capability registry configuration.
type SitesConfig struct {
	// OverlayDir points at a directory of capability records that
	// extend or replace the builtin table. Empty disables the overlay.
	OverlayDir string `envconfig:"SITES_DIR" default:""`
}

// JobsConfig holds book fetch worker pool configuration.
type JobsConfig struct {
	Workers int `envconfig:"JOB_WORKERS" default:"4"`
	Buffer  int `envconfig:"JOB_BUFFER" default:"64"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			GlobalRPS:         1000,
			GlobalBurst:       2000,
			Enabled:           true,
		},
		Fetch: FetchConfig{
			Timeout:      30 * time.Second,
			Retries:      3,
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
			GlobalRPS:    0,
			PerSiteRPS:   2,
			PerSiteBurst: 4,
		},
		Decrypt: DecryptConfig{
			Deadline:     5 * time.Second,
			MaxStackSize: 4096,
			ModulePath:   "",
		},
		Sites: SitesConfig{
			OverlayDir: "",
		},
		Jobs: JobsConfig{
			Workers: 4,
			Buffer:  64,
		},
	}
}
