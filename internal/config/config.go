package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

type Config struct {
	APIKeyID     string `yaml:"api_key_id"`
	APIKeySecret string `yaml:"api_key_secret"`

	RequestDelaySec int  `yaml:"request_delay_seconds"`
	AgeLimitDays    *int `yaml:"age_limit_days"`
	FetchTimeoutSec int  `yaml:"fetch_timeout_seconds"`

	APIBaseURL string `yaml:"api_base_url"`
	UserAgent  string `yaml:"user_agent"`

	Targets []string `yaml:"targets"`
	RunName string   `yaml:"run_name"`

	DBPath   string         `yaml:"db_path"`
	Database DatabaseConfig `yaml:"database"`
	Webhook  WebhookConfig  `yaml:"webhook"`

	Debug bool `yaml:"debug"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// defaults
	if cfg.RequestDelaySec <= 0 {
		cfg.RequestDelaySec = 3
	}
	if cfg.FetchTimeoutSec <= 0 {
		cfg.FetchTimeoutSec = 30
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://censys.io/api/v1/view"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "SpiderFoot"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "findings.db"
	}
	if cfg.RunName == "" {
		cfg.RunName = "Censys enrichment"
	}

	// secrets may arrive via ENV instead of the config file
	if v := os.Getenv("CENSYS_API_ID"); v != "" {
		cfg.APIKeyID = v
	}
	if v := os.Getenv("CENSYS_API_SECRET"); v != "" {
		cfg.APIKeySecret = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	return &cfg, nil
}

// AgeLimit returns age_limit_days with the default applied. An explicit
// 0 disables the age filter, so absence and zero must stay distinct.
func (c *Config) AgeLimit() int {
	if c.AgeLimitDays == nil {
		return 90
	}
	if *c.AgeLimitDays < 0 {
		return 0
	}
	return *c.AgeLimitDays
}

func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelaySec) * time.Second
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}
