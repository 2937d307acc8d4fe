package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	JSONLog  bool   `yaml:"json_log"`

	// HTTP
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	UserAgent   string        `yaml:"user_agent"`
	Proxies     []string      `yaml:"proxies"`
	Headers     []string      `yaml:"headers"`

	// Rate Limiting
	StaticRateLimitRPS    float64 `yaml:"static_rate_limit_rps"`
	StaticRateLimitBurst  int     `yaml:"static_rate_limit_burst"`
	DynamicRateLimitRPS   float64 `yaml:"dynamic_rate_limit_rps"`
	DynamicRateLimitBurst int     `yaml:"dynamic_rate_limit_burst"`

	// Retry policy for API sources
	Retry RetryConfig `yaml:"retry"`

	// Browser
	BrowserHeadless bool          `yaml:"browser_headless"`
	ChromePath      string        `yaml:"chrome_path"`
	ImplicitWait    time.Duration `yaml:"implicit_wait"`
	ListingSettle   time.Duration `yaml:"listing_settle"`
	DetailSettle    time.Duration `yaml:"detail_settle"`
	PageLoadTimeout time.Duration `yaml:"page_load_timeout"`

	// Crawl
	DefaultCount  int           `yaml:"default_count"`
	MaxCount      int           `yaml:"max_count"`
	MaxPages      int           `yaml:"max_pages"`
	StreamTimeout time.Duration `yaml:"stream_timeout"`
	MLHSeason     string        `yaml:"mlh_season"`

	// Images
	ImageWorkers int           `yaml:"image_workers"`
	ImageTimeout time.Duration `yaml:"image_timeout"`

	// Metrics textfile written after each command, empty disables it
	MetricsFile string `yaml:"metrics_file"`
}

// RetryConfig mirrors retry.Config in file form
type RetryConfig struct {
	MaxRetries     int           `yaml:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	Multiplier     float64       `yaml:"multiplier"`
}

// Default returns a Config populated with the package defaults
func Default() *Config {
	return &Config{
		LogLevel:              DefaultLogLevel,
		JSONLog:               DefaultJSONLog,
		HTTPTimeout:           DefaultHTTPTimeout,
		UserAgent:             DefaultUserAgent,
		StaticRateLimitRPS:    DefaultStaticRateLimitRPS,
		StaticRateLimitBurst:  DefaultStaticRateLimitBurst,
		DynamicRateLimitRPS:   DefaultDynamicRateLimitRPS,
		DynamicRateLimitBurst: DefaultDynamicRateLimitBurst,
		Retry: RetryConfig{
			MaxRetries:     DefaultRetryMax,
			InitialBackoff: DefaultRetryInitial,
			MaxBackoff:     DefaultRetryMaxDelay,
			Multiplier:     DefaultRetryMultiplier,
		},
		BrowserHeadless: DefaultBrowserHeadless,
		ImplicitWait:    DefaultImplicitWait,
		ListingSettle:   DefaultListingSettle,
		DetailSettle:    DefaultDetailSettle,
		PageLoadTimeout: DefaultPageLoadTimeout,
		DefaultCount:    DefaultCount,
		MaxCount:        DefaultMaxCount,
		MaxPages:        DefaultMaxPages,
		StreamTimeout:   DefaultStreamTimeout,
		MLHSeason:       DefaultMLHSeason,
		ImageWorkers:    DefaultImageWorkers,
		ImageTimeout:    DefaultImageTimeout,
	}
}

// Load builds a Config by combining defaults, an optional config file, environment variables, and CLI flags.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			if err := LoadFile(cfg, f.Value.String()); err != nil {
				return nil, err
			}
		}
	}

	applyEnv(cfg)

	if cmd != nil {
		applyFlags(cmd, cfg)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current values.
func LoadFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HACKSCOUT_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("HACKSCOUT_PROXY"); v != "" {
		cfg.Proxies = splitList(v)
	}
	if v := os.Getenv("HACKSCOUT_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("HACKSCOUT_HEADERS"); v != "" {
		cfg.Headers = append(cfg.Headers, strings.Split(v, ";")...)
	}
}

func applyFlags(cmd *cobra.Command, cfg *Config) {
	if f := cmd.Flags().Lookup("user-agent"); f != nil {
		if s := f.Value.String(); s != "" {
			cfg.UserAgent = s
		}
	}
	if f := cmd.Flags().Lookup("proxy"); f != nil {
		if s := f.Value.String(); s != "" {
			cfg.Proxies = splitList(s)
		}
	}
	if f := cmd.Flags().Lookup("timeout"); f != nil && f.Changed {
		if d, err := time.ParseDuration(f.Value.String()); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if f := cmd.Flags().Lookup("max-pages"); f != nil && f.Changed {
		var n int
		if _, err := fmt.Sscanf(f.Value.String(), "%d", &n); err == nil {
			cfg.MaxPages = n
		}
	}
	if f := cmd.Flags().Lookup("metrics-file"); f != nil {
		if s := f.Value.String(); s != "" {
			cfg.MetricsFile = s
		}
	}
	if f := cmd.Flags().Lookup("headful"); f != nil && f.Value.String() == "true" {
		cfg.BrowserHeadless = false
	}
	if f := cmd.Flags().Lookup("json"); f != nil {
		if f.Value.String() == "true" {
			cfg.JSONLog = true
		}
	}
	if f := cmd.Flags().Lookup("verbose"); f != nil {
		if f.Value.String() == "true" {
			cfg.LogLevel = "debug"
		}
	}
	if f := cmd.Flags().Lookup("quiet"); f != nil {
		if f.Value.String() == "true" {
			cfg.LogLevel = "error"
		}
	}
}

// ClampCount bounds a requested result count to [1, MaxCount].
// Non-positive requests fall back to DefaultCount.
func (c *Config) ClampCount(n int) int {
	if n <= 0 {
		n = c.DefaultCount
	}
	if n > c.MaxCount {
		n = c.MaxCount
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
