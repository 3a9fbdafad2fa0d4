package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBackendURL is the hosted backend used when none is configured.
const DefaultBackendURL = "https://animix-backend.onrender.com"

// Version is set at build time with -ldflags "-X ...config.Version=...".
var Version = "dev"

// DefaultBackendProbeCron checks the backend every five minutes.
const DefaultBackendProbeCron = "*/5 * * * *"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	UI        UIConfig        `mapstructure:"ui"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// BackendConfig holds the remote API configuration.
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Timeout in seconds for outbound requests. Zero leaves requests unbounded.
	Timeout int `mapstructure:"timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// CarouselInterval is the hero carousel auto-advance period in milliseconds.
	CarouselInterval int `mapstructure:"carousel_interval"`
	// Timezone is the IANA zone used for "today" and day grouping. Empty means local.
	Timezone string `mapstructure:"timezone"`
}

// SchedulerConfig holds background task settings.
type SchedulerConfig struct {
	BackendProbeCron string `mapstructure:"backend_probe_cron"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5173,
		},
		Backend: BackendConfig{
			BaseURL: DefaultBackendURL,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		UI: UIConfig{
			CarouselInterval: 5500,
		},
		Scheduler: SchedulerConfig{
			BackendProbeCron: DefaultBackendProbeCron,
		},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > .env file > config file > defaults
func Load(configPath string) (*Config, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.anivibe")
	}

	v.SetEnvPrefix("ANIVIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.timeout", d.Backend.Timeout)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("ui.carousel_interval", d.UI.CarouselInterval)
	v.SetDefault("ui.timezone", d.UI.Timezone)

	v.SetDefault("scheduler.backend_probe_cron", d.Scheduler.BackendProbeCron)
}

// Validate checks values that cannot be defaulted silently.
func (c *Config) Validate() error {
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = DefaultBackendURL
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must not be negative, got %d", c.Backend.Timeout)
	}
	if c.UI.CarouselInterval <= 0 {
		c.UI.CarouselInterval = Default().UI.CarouselInterval
	}
	if _, err := c.UI.Location(); err != nil {
		return fmt.Errorf("invalid ui.timezone %q: %w", c.UI.Timezone, err)
	}
	return nil
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RequestTimeout returns the outbound request timeout. Zero means none.
func (c BackendConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Interval returns the carousel auto-advance period.
func (c UIConfig) Interval() time.Duration {
	return time.Duration(c.CarouselInterval) * time.Millisecond
}

// Location resolves the configured timezone, defaulting to local time.
func (c UIConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
