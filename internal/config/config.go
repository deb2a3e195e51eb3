// Package config loads settings from defaults, an optional YAML file, a .env
// file and LKRRATES_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "LKRRATES"

// Transports accepted by server.transport
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config represents the complete application configuration
type Config struct {
	LocalCurrency string           `mapstructure:"local_currency"`
	Server        ServerConfig     `mapstructure:"server"`
	Sources       SourcesConfig    `mapstructure:"sources"`
	Simulation    SimulationConfig `mapstructure:"simulation"`
	Logging       LoggingConfig    `mapstructure:"logging"`
	Journal       JournalConfig    `mapstructure:"journal"`
	Metrics       MetricsConfig    `mapstructure:"metrics"`
}

// ServerConfig selects and tunes the transport
type ServerConfig struct {
	Transport       string        `mapstructure:"transport"`
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SourcesConfig describes the upstream rate sources
type SourcesConfig struct {
	PrimaryURL        string        `mapstructure:"primary_url"`
	FallbackURL       string        `mapstructure:"fallback_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	PrimaryTimeout    time.Duration `mapstructure:"primary_timeout"`
	FallbackTimeout   time.Duration `mapstructure:"fallback_timeout"`
	AllowedCurrencies []string      `mapstructure:"allowed_currencies"`
}

// SimulationConfig holds the constants used for synthetic numbers
type SimulationConfig struct {
	Spread         float64 `mapstructure:"spread"`
	TrendVariation float64 `mapstructure:"trend_variation"`
	MaxTrendDays   int     `mapstructure:"max_trend_days"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// JournalConfig holds call journal settings
type JournalConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Path     string `mapstructure:"path"`
	InMemory bool   `mapstructure:"in_memory"`
}

// MetricsConfig toggles Prometheus collection
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads configuration. When path is empty the standard locations are
// searched and a missing file is not an error.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(filepath.Join(homeDir(), ".lkr-rates"))
		v.AddConfigPath("/etc/lkr-rates")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	var errs []error

	if c.LocalCurrency == "" {
		errs = append(errs, errors.New("local_currency is required"))
	}
	if c.Server.Transport != TransportStdio && c.Server.Transport != TransportHTTP {
		errs = append(errs, fmt.Errorf("server.transport must be %q or %q, got %q", TransportStdio, TransportHTTP, c.Server.Transport))
	}
	if c.Sources.PrimaryURL == "" && c.Sources.FallbackURL == "" {
		errs = append(errs, errors.New("at least one of sources.primary_url and sources.fallback_url is required"))
	}
	if c.Simulation.Spread <= 0 || c.Simulation.Spread >= 1 {
		errs = append(errs, fmt.Errorf("simulation.spread must be in (0, 1), got %v", c.Simulation.Spread))
	}
	if c.Simulation.TrendVariation <= 0 || c.Simulation.TrendVariation >= 1 {
		errs = append(errs, fmt.Errorf("simulation.trend_variation must be in (0, 1), got %v", c.Simulation.TrendVariation))
	}
	if c.Simulation.MaxTrendDays < 1 {
		errs = append(errs, fmt.Errorf("simulation.max_trend_days must be positive, got %d", c.Simulation.MaxTrendDays))
	}
	if c.Logging.Output != "stdout" && c.Logging.Output != "stderr" {
		errs = append(errs, fmt.Errorf("logging.output must be stdout or stderr, got %q", c.Logging.Output))
	}
	if c.Journal.Enabled && !c.Journal.InMemory && c.Journal.Path == "" {
		errs = append(errs, errors.New("journal.path is required when the journal is enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) normalize() {
	c.LocalCurrency = strings.ToUpper(strings.TrimSpace(c.LocalCurrency))
	c.Server.Transport = strings.ToLower(strings.TrimSpace(c.Server.Transport))
	c.Logging.Output = strings.ToLower(strings.TrimSpace(c.Logging.Output))

	codes := make([]string, 0, len(c.Sources.AllowedCurrencies))
	for _, code := range c.Sources.AllowedCurrencies {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			codes = append(codes, code)
		}
	}
	c.Sources.AllowedCurrencies = codes
}

// setDefaults sets sensible defaults for all config values
func setDefaults(v *viper.Viper) {
	v.SetDefault("local_currency", "LKR")

	v.SetDefault("server.transport", TransportStdio)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("sources.primary_url", "https://www.combank.lk/rates-tariff#exchange-rates")
	v.SetDefault("sources.fallback_url", "https://api.exchangerate-api.com/v4/latest")
	v.SetDefault("sources.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	v.SetDefault("sources.primary_timeout", "10s")
	v.SetDefault("sources.fallback_timeout", "10s")
	v.SetDefault("sources.allowed_currencies", []string{
		"USD", "EUR", "GBP", "JPY", "AUD", "CAD", "CHF", "CNY", "SGD", "INR", "AED", "SAR",
	})

	v.SetDefault("simulation.spread", 0.02)
	v.SetDefault("simulation.trend_variation", 0.02)
	v.SetDefault("simulation.max_trend_days", 90)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", filepath.Join(homeDir(), ".lkr-rates", "journal"))
	v.SetDefault("journal.in_memory", true)

	v.SetDefault("metrics.enabled", true)
}

// loadDotEnv loads .env from the working directory without overriding
// variables that are already set
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
