package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	APIBaseURL  string `mapstructure:"REGISTRY_API_URL"`
	SessionFile string `mapstructure:"REGISTRY_SESSION_FILE"`
	HTTPTimeout int    `mapstructure:"REGISTRY_HTTP_TIMEOUT"`
	Env         string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("REGISTRY_API_URL", "http://localhost:8000/api")
	v.SetDefault("REGISTRY_HTTP_TIMEOUT", 30)
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("REGISTRY_API_URL")
	v.BindEnv("REGISTRY_SESSION_FILE")
	v.BindEnv("REGISTRY_HTTP_TIMEOUT")
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Timeout returns the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// Validate checks that the configuration is usable. The API base URL must be
// an absolute http(s) URL; everything else has safe defaults.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("REGISTRY_API_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("REGISTRY_API_URL must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("REGISTRY_API_URL has no host: %q", c.APIBaseURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("REGISTRY_HTTP_TIMEOUT must be positive, got %d", c.HTTPTimeout)
	}
	return nil
}
