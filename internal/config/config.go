// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	DB       int           `yaml:"db"`
	Password string        `yaml:"-"` // Loaded from environment
	SlotTTL  time.Duration `yaml:"slot_ttl"`
}

// Enabled reports whether a Redis address was configured. Without one the
// site fetches live slots for every card.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type AvailabilityConfig struct {
	StagingBase    string        `yaml:"staging_base"`
	ProductionBase string        `yaml:"production_base"`
	Timeout        time.Duration `yaml:"timeout"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		StaticDir   string `yaml:"static_dir"`
		HtmxSrc     string `yaml:"htmx_src"`
		TrustProxy  bool   `yaml:"trust_proxy"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`

	Redis RedisConfig `yaml:"redis"`

	Availability AvailabilityConfig `yaml:"availability"`

	Catalog struct {
		File        string `yaml:"file"`
		RefreshCron string `yaml:"refresh_cron"`
		RefreshDays int    `yaml:"refresh_days"`
	} `yaml:"catalog"`

	RateLimit struct {
		ClicksPerMinute int `yaml:"clicks_per_minute"`
	} `yaml:"rate_limit"`

	Features struct {
		EnableMetrics bool `yaml:"enable_metrics"`
		EnableRefresh bool `yaml:"enable_refresh"`
		EnableDebug   bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes yaml configuration, applies defaults and environment
// overrides, and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.applyDefaults()

	// Load sensitive values from environment
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.StaticDir == "" {
		c.App.StaticDir = "build/bin/static"
	}
	if c.Availability.StagingBase == "" {
		c.Availability.StagingBase = "https://dev-moh-f3a4edb2.vaxx.nz"
	}
	if c.Availability.ProductionBase == "" {
		c.Availability.ProductionBase = "https://moh.vaxx.nz"
	}
	if c.Availability.Timeout == 0 {
		c.Availability.Timeout = 10 * time.Second
	}
	if c.Redis.SlotTTL == 0 {
		c.Redis.SlotTTL = 100 * time.Second
	}
	if c.Catalog.RefreshCron == "" {
		c.Catalog.RefreshCron = "*/5 * * * *"
	}
	if c.Catalog.RefreshDays == 0 {
		c.Catalog.RefreshDays = 2
	}
	if c.RateLimit.ClicksPerMinute == 0 {
		c.RateLimit.ClicksPerMinute = 60
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Availability.Timeout < 0 {
		return fmt.Errorf("availability timeout must not be negative")
	}
	if c.Catalog.RefreshDays < 0 {
		return fmt.Errorf("catalog refresh_days must not be negative")
	}

	return nil
}
