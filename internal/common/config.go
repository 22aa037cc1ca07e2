package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Portfoliology
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Refresh     RefreshConfig `toml:"refresh"`
	Logging     LoggingConfig `toml:"logging"`

	envErrs []error // unparsable environment overrides, reported by Validate
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the SQLite database location for accounts and positions.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	IEX IEXConfig `toml:"iex"`
}

// IEXConfig holds quote provider configuration
type IEXConfig struct {
	BaseURL   string `toml:"base_url"`
	Token     string `toml:"token"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *IEXConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// RefreshConfig controls the quote refresh worker pool and the 429 retry policy.
type RefreshConfig struct {
	Concurrency int    `toml:"concurrency"`
	MaxRetries  int    `toml:"max_retries"`
	RetryDelay  string `toml:"retry_delay"` // wait before the first retry
	RetryStep   string `toml:"retry_step"`  // added to the wait after every retry
}

// GetRetryDelay parses the base retry delay. Validate rejects values that do
// not parse; the 1s fallback only applies to unvalidated configs.
func (c *RefreshConfig) GetRetryDelay() time.Duration {
	d, err := time.ParseDuration(c.RetryDelay)
	if err != nil {
		return time.Second
	}
	return d
}

// GetRetryStep parses the retry delay increment, falling back to 1s.
func (c *RefreshConfig) GetRetryStep() time.Duration {
	d, err := time.ParseDuration(c.RetryStep)
	if err != nil {
		return time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/portfoliology.db",
		},
		Clients: ClientsConfig{
			IEX: IEXConfig{
				BaseURL:   "https://cloud-sse.iexapis.com",
				RateLimit: 10,
				Timeout:   "30s",
			},
		},
		Refresh: RefreshConfig{
			Concurrency: 10,
			MaxRetries:  10,
			RetryDelay:  "1s",
			RetryStep:   "1s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PORTFOLIOLOGY_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("PORTFOLIOLOGY_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("PORTFOLIOLOGY_PORT"); port != "" {
		config.Server.Port = config.envInt("PORTFOLIOLOGY_PORT", port, config.Server.Port)
	}

	if level := os.Getenv("PORTFOLIOLOGY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("PORTFOLIOLOGY_DB_PATH"); path != "" {
		config.Storage.Path = path
	}

	// The provider secret is supplied out-of-band; IEX_API_TOKEN wins.
	for _, name := range []string{"IEX_API_TOKEN", "PORTFOLIOLOGY_IEX_TOKEN"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.IEX.Token = v
			break
		}
	}

	if v := os.Getenv("PORTFOLIOLOGY_CONCURRENCY"); v != "" {
		config.Refresh.Concurrency = config.envInt("PORTFOLIOLOGY_CONCURRENCY", v, config.Refresh.Concurrency)
	}

	if v := os.Getenv("PORTFOLIOLOGY_MAX_RETRIES"); v != "" {
		config.Refresh.MaxRetries = config.envInt("PORTFOLIOLOGY_MAX_RETRIES", v, config.Refresh.MaxRetries)
	}

	if v := os.Getenv("PORTFOLIOLOGY_RETRY_DELAY"); v != "" {
		config.Refresh.RetryDelay = v
	}

	if v := os.Getenv("PORTFOLIOLOGY_RETRY_STEP"); v != "" {
		config.Refresh.RetryStep = v
	}
}

// envInt parses an integer override. An invalid value keeps current and is
// recorded for Validate.
func (c *Config) envInt(name, value string, current int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		c.envErrs = append(c.envErrs, fmt.Errorf("%s must be an integer, got %q", name, value))
		return current
	}
	return n
}

// Validate reports configuration that makes a refresh impossible.
// These are fatal at startup.
func (c *Config) Validate() error {
	errs := append([]error(nil), c.envErrs...)

	if strings.TrimSpace(c.Clients.IEX.Token) == "" {
		errs = append(errs, errors.New("quote provider token is not set (IEX_API_TOKEN)"))
	}
	if c.Refresh.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("refresh concurrency must be positive, got %d", c.Refresh.Concurrency))
	}
	if c.Refresh.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("refresh max_retries must not be negative, got %d", c.Refresh.MaxRetries))
	}
	for _, d := range []struct{ name, value string }{
		{"refresh retry_delay", c.Refresh.RetryDelay},
		{"refresh retry_step", c.Refresh.RetryStep},
		{"clients.iex timeout", c.Clients.IEX.Timeout},
	} {
		if err := validateDuration(d.name, d.value); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// validateDuration rejects duration strings that do not parse or are negative.
func validateDuration(name, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s is not a valid duration: %q", name, value)
	}
	if d < 0 {
		return fmt.Errorf("%s must not be negative, got %s", name, value)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
