// internal/config/config.go

// Package config loads and validates the pipeline configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leadgrep/leadgrep/internal/browser"
	"github.com/leadgrep/leadgrep/internal/proxy"
)

// Config is the full configuration surface consumed by the pipeline.
type Config struct {
	UseRenderedFetch  bool `yaml:"use_rendered_fetch" json:"use_rendered_fetch"`
	UseProxyRotation  bool `yaml:"use_proxy_rotation" json:"use_proxy_rotation"`
	ScrapeSocialLinks bool `yaml:"scrape_social_links" json:"scrape_social_links"`

	MaxInternalPages     int `yaml:"max_internal_pages" json:"max_internal_pages"`
	MaxCrawlDepth        int `yaml:"max_crawl_depth" json:"max_crawl_depth"`
	MaxSocialPerPlatform int `yaml:"max_social_per_platform" json:"max_social_per_platform"`

	RequestTimeoutSeconds    int     `yaml:"request_timeout_seconds" json:"request_timeout_seconds"`
	InterRequestDelaySeconds float64 `yaml:"inter_request_delay_seconds" json:"inter_request_delay_seconds"`
	MaxRetries               int     `yaml:"max_retries" json:"max_retries"`
	RetryBaseSeconds         float64 `yaml:"retry_base_seconds" json:"retry_base_seconds"`

	OutputFormat string `yaml:"output_format" json:"output_format"`
	OutputDir    string `yaml:"output_dir" json:"output_dir"`
	SQLitePath   string `yaml:"sqlite_path,omitempty" json:"sqlite_path,omitempty"`

	Proxy   proxy.Config    `yaml:"proxy" json:"proxy"`
	Browser *browser.Config `yaml:"browser,omitempty" json:"browser,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		ScrapeSocialLinks:        true,
		MaxInternalPages:         5,
		MaxCrawlDepth:            1,
		MaxSocialPerPlatform:     3,
		RequestTimeoutSeconds:    30,
		InterRequestDelaySeconds: 1.0,
		MaxRetries:               3,
		RetryBaseSeconds:         1.0,
		OutputFormat:             "excel",
		OutputDir:                "output",
		Proxy: proxy.Config{
			Strategy:   string(proxy.StrategyRoundRobin),
			MaxProxies: 50,
		},
	}
}

// LoadFromFile reads a YAML configuration file, applies defaults, and
// validates the result.
func LoadFromFile(filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read configuration file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses YAML configuration bytes.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse YAML configuration: %w", err)
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.RequestTimeoutSeconds == 0 {
		cfg.RequestTimeoutSeconds = 30
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBaseSeconds == 0 {
		cfg.RetryBaseSeconds = 1.0
	}
	if cfg.MaxCrawlDepth == 0 {
		cfg.MaxCrawlDepth = 1
	}
	if cfg.MaxSocialPerPlatform == 0 {
		cfg.MaxSocialPerPlatform = 3
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "excel"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}
	if cfg.Proxy.MaxProxies == 0 {
		cfg.Proxy.MaxProxies = 50
	}
	if cfg.UseRenderedFetch && cfg.Browser == nil {
		cfg.Browser = browser.DefaultConfig()
	}
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive, got %d", c.RequestTimeoutSeconds)
	}
	if c.InterRequestDelaySeconds < 0 {
		return fmt.Errorf("inter_request_delay_seconds cannot be negative, got %g", c.InterRequestDelaySeconds)
	}
	if c.MaxInternalPages < 0 {
		return fmt.Errorf("max_internal_pages cannot be negative, got %d", c.MaxInternalPages)
	}
	if c.MaxCrawlDepth < 0 {
		return fmt.Errorf("max_crawl_depth cannot be negative, got %d", c.MaxCrawlDepth)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative, got %d", c.MaxRetries)
	}
	switch c.OutputFormat {
	case "csv", "excel", "both":
	default:
		return fmt.Errorf("output_format must be csv, excel, or both, got %q", c.OutputFormat)
	}
	if _, ok := proxy.ParseStrategy(c.Proxy.Strategy); !ok {
		return fmt.Errorf("unknown proxy strategy %q", c.Proxy.Strategy)
	}
	return nil
}

// RequestTimeout returns the per-request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// RetryBase returns the backoff base delay.
func (c *Config) RetryBase() time.Duration {
	return time.Duration(c.RetryBaseSeconds * float64(time.Second))
}

// MainDelay is the politeness delay after a completed main-URL fetch.
func (c *Config) MainDelay() time.Duration {
	return time.Duration(c.InterRequestDelaySeconds * float64(time.Second))
}

// InternalDelay is the shorter politeness delay after an internal-page
// fetch.
func (c *Config) InternalDelay() time.Duration {
	return c.MainDelay() / 2
}

// SocialDelay is the politeness delay between social-profile fetches.
func (c *Config) SocialDelay() time.Duration {
	return 2 * c.MainDelay()
}
