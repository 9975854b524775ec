package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultUserAgent is sent by both retrieval stages.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Render    RenderConfig    `yaml:"render"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
	Stats     StatsConfig     `yaml:"stats"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"` // default: "0.0.0.0"
	Port int    `yaml:"port"` // default: 8082
	Mode string `yaml:"mode"` // gin mode; default: "release"

	// DevMode exposes popular URLs on the statistics endpoint.
	DevMode bool `yaml:"dev_mode"`
}

// FetchConfig controls the static fetch stage.
type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout"`       // default: 15s
	MaxRedirects int           `yaml:"max_redirects"` // default: 5
	UserAgent    string        `yaml:"user_agent"`

	// Fingerprint dials TLS with a Chrome ClientHello instead of Go's.
	Fingerprint bool `yaml:"fingerprint"` // default: true

	MaxBodyBytes int64 `yaml:"max_body_bytes"` // default: 10 MiB
}

// RenderConfig controls the headless browser fallback stage.
type RenderConfig struct {
	Enabled           bool          `yaml:"enabled"`  // default: true
	Headless          bool          `yaml:"headless"` // default: true
	NoSandbox         bool          `yaml:"no_sandbox"`
	BrowserBin        string        `yaml:"browser_bin"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"` // default: 10s
	IdleWindow        time.Duration `yaml:"idle_window"`        // default: 500ms
	Stealth           bool          `yaml:"stealth"`            // default: true
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"` // default: 2
	Burst             int     `yaml:"burst"`               // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // default: "info"
	Format string `yaml:"format"` // "json" or "text"; default: "json"
}

// StatsConfig controls where statistics are persisted.
type StatsConfig struct {
	DataDir string `yaml:"data_dir"` // default: "./data"
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8082,
			Mode: "release",
		},
		Fetch: FetchConfig{
			Timeout:      15 * time.Second,
			MaxRedirects: 5,
			UserAgent:    DefaultUserAgent,
			Fingerprint:  true,
			MaxBodyBytes: 10 << 20,
		},
		Render: RenderConfig{
			Enabled:           true,
			Headless:          true,
			NavigationTimeout: 10 * time.Second,
			IdleWindow:        500 * time.Millisecond,
			Stealth:           true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Stats: StatsConfig{
			DataDir: "./data",
		},
	}
}

// Load builds the configuration from defaults, .env files, an optional YAML
// file named by SEO_CONFIG_FILE and finally SEO_* environment variables.
func Load() (*Config, error) {
	loadEnvFiles()

	cfg := Default()
	if path := os.Getenv("SEO_CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// loadEnvFiles tries .env.development first (for local development), then .env.
func loadEnvFiles() {
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			slog.Debug("no .env file found, using environment variables")
		}
	}
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = envOr("SEO_HOST", c.Server.Host)
	c.Server.Port = envIntOr("SEO_PORT", envIntOr("PORT", c.Server.Port))
	c.Server.Mode = envOr("SEO_MODE", envOr("GIN_MODE", c.Server.Mode))
	c.Server.DevMode = envBoolOr("SEO_DEV_MODE", envBoolOr("DEV_MODE", c.Server.DevMode))

	c.Fetch.Timeout = envDurationOr("SEO_FETCH_TIMEOUT", c.Fetch.Timeout)
	c.Fetch.MaxRedirects = envIntOr("SEO_MAX_REDIRECTS", c.Fetch.MaxRedirects)
	c.Fetch.UserAgent = envOr("SEO_USER_AGENT", c.Fetch.UserAgent)
	c.Fetch.Fingerprint = envBoolOr("SEO_TLS_FINGERPRINT", c.Fetch.Fingerprint)

	c.Render.Enabled = envBoolOr("SEO_RENDER", c.Render.Enabled)
	c.Render.Headless = envBoolOr("SEO_HEADLESS", c.Render.Headless)
	c.Render.NoSandbox = envBoolOr("SEO_NO_SANDBOX", c.Render.NoSandbox)
	c.Render.BrowserBin = envOr("SEO_BROWSER_BIN", c.Render.BrowserBin)
	c.Render.NavigationTimeout = envDurationOr("SEO_NAV_TIMEOUT", c.Render.NavigationTimeout)
	c.Render.Stealth = envBoolOr("SEO_STEALTH", c.Render.Stealth)

	c.RateLimit.RequestsPerSecond = envFloatOr("SEO_RATE_RPS", c.RateLimit.RequestsPerSecond)
	c.RateLimit.Burst = envIntOr("SEO_RATE_BURST", c.RateLimit.Burst)

	c.Log.Level = envOr("SEO_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("SEO_LOG_FORMAT", c.Log.Format)

	c.Stats.DataDir = envOr("SEO_DATA_DIR", c.Stats.DataDir)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
