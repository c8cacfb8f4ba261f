package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Scraping ScrapingConfig `yaml:"scraping"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

type AppConfig struct {
	Name  string `yaml:"name"`
	Env   string `yaml:"env"`
	Debug bool   `yaml:"debug"`
	Port  int    `yaml:"port"`
}

type ScrapingConfig struct {
	Daft DaftConfig `yaml:"daft"`
}

type DaftConfig struct {
	BaseURL   string          `yaml:"base_url"`
	Engine    string          `yaml:"engine"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
	UserAgent string          `yaml:"user_agent"`
	// MaxPages caps what a caller may ask for in one search.
	MaxPages int `yaml:"max_pages"`
}

// RateLimitConfig holds the mandatory pause before each request kind.
type RateLimitConfig struct {
	SearchDelay time.Duration `yaml:"search_delay"`
	DetailDelay time.Duration `yaml:"detail_delay"`
}

type TimeoutConfig struct {
	Search time.Duration `yaml:"search"`
	Detail time.Duration `yaml:"detail"`
}

type AnalysisConfig struct {
	// TaxonomyPath points at a taxonomy YAML file; empty means built-in.
	TaxonomyPath string `yaml:"taxonomy_path"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name: "daft-analyzer",
			Env:  "development",
			Port: 8080,
		},
		Scraping: ScrapingConfig{
			Daft: DaftConfig{
				BaseURL: "https://www.daft.ie",
				Engine:  "colly",
				RateLimit: RateLimitConfig{
					SearchDelay: 2 * time.Second,
					DetailDelay: time.Second,
				},
				Timeouts: TimeoutConfig{
					Search: 30 * time.Second,
					Detail: 20 * time.Second,
				},
				MaxPages: 10,
			},
		},
	}
}

// LoadConfig reads <dir>/app.yaml and <dir>/scraping.yaml on top of the
// defaults, then applies .env and environment overrides. Missing files are
// skipped.
func LoadConfig(dir string) (*Config, error) {
	cfg := Default()

	// Carrega arquivo YAML base
	if err := readYAML(filepath.Join(dir, "app.yaml"), cfg); err != nil {
		return nil, err
	}
	// a relative taxonomy path in the file is relative to the file's directory
	if p := cfg.Analysis.TaxonomyPath; p != "" && !filepath.IsAbs(p) {
		cfg.Analysis.TaxonomyPath = filepath.Join(dir, p)
	}

	// Carrega configurações específicas de scraping
	if err := readYAML(filepath.Join(dir, "scraping.yaml"), &cfg.Scraping); err != nil {
		return nil, err
	}

	// .env is optional; real environment variables win over it
	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("APP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("APP_PORT: %w", err)
		}
		c.App.Port = port
	}
	if v := os.Getenv("APP_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("APP_DEBUG: %w", err)
		}
		c.App.Debug = debug
	}
	if v := os.Getenv("DAFT_BASE_URL"); v != "" {
		c.Scraping.Daft.BaseURL = v
	}
	if v := os.Getenv("DAFT_ENGINE"); v != "" {
		c.Scraping.Daft.Engine = v
	}
	if v := os.Getenv("DAFT_USER_AGENT"); v != "" {
		c.Scraping.Daft.UserAgent = v
	}
	if v := os.Getenv("TAXONOMY_PATH"); v != "" {
		c.Analysis.TaxonomyPath = v
	}
	return nil
}

func (c *Config) Validate() error {
	d := c.Scraping.Daft

	u, err := url.Parse(d.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("scraping.daft.base_url must be an absolute http(s) URL, got %q", d.BaseURL)
	}
	if d.Engine != "colly" && d.Engine != "http" {
		return fmt.Errorf("scraping.daft.engine must be colly or http, got %q", d.Engine)
	}
	if d.RateLimit.SearchDelay < 0 || d.RateLimit.DetailDelay < 0 {
		return fmt.Errorf("scraping.daft.rate_limit delays must not be negative")
	}
	if d.Timeouts.Search <= 0 || d.Timeouts.Detail <= 0 {
		return fmt.Errorf("scraping.daft.timeouts must be positive")
	}
	if d.MaxPages < 1 {
		return fmt.Errorf("scraping.daft.max_pages must be at least 1")
	}
	if c.App.Port < 1 || c.App.Port > 65535 {
		return fmt.Errorf("app.port out of range: %d", c.App.Port)
	}
	return nil
}
