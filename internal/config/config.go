package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variable overrides (EXTRACTWEB_OUTPUT_DIR, ...)
const EnvPrefix = "EXTRACTWEB"

// Config represents the entire application configuration
type Config struct {
	URL      string         `mapstructure:"url"`
	Output   OutputConfig   `mapstructure:"output"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Download DownloadConfig `mapstructure:"download"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Journal  JournalConfig  `mapstructure:"journal"`
}

// OutputConfig contains the output directory settings
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// HTTPConfig contains HTTP client configuration
type HTTPConfig struct {
	Timeout   string `mapstructure:"timeout"`
	UserAgent string `mapstructure:"user_agent"`
}

// DownloadConfig contains resource download settings
type DownloadConfig struct {
	ChunkSize        int    `mapstructure:"chunk_size"`
	ProgressInterval string `mapstructure:"progress_interval"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// JournalConfig contains the optional run journal settings.
// An empty path disables the journal.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// flagKeys maps command line flag names to configuration keys
var flagKeys = map[string]string{
	"url":        "url",
	"output":     "output.dir",
	"timeout":    "http.timeout",
	"user-agent": "http.user_agent",
	"log-level":  "logging.level",
	"log-format": "logging.format",
	"journal":    "journal.path",
}

// New returns a viper instance with defaults and environment overrides set up
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("url", "")
	v.SetDefault("output.dir", "recursos")
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.user_agent", "")
	v.SetDefault("download.chunk_size", 1024)
	v.SetDefault("download.progress_interval", "1s")
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
	v.SetDefault("journal.path", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// BindFlags binds the known command line flags in fs to their configuration keys.
// Flags missing from fs are ignored.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the optional configuration file into v and returns the validated configuration.
// An empty configPath skips the file.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output.Dir) == "" {
		return errors.New("output.dir is required")
	}

	if _, err := time.ParseDuration(c.HTTP.Timeout); err != nil {
		return fmt.Errorf("invalid http.timeout: %w", err)
	}
	if c.HTTP.GetTimeout() < 0 {
		return errors.New("http.timeout must not be negative")
	}

	if c.Download.ChunkSize <= 0 {
		return errors.New("download.chunk_size must be positive")
	}
	if _, err := time.ParseDuration(c.Download.ProgressInterval); err != nil {
		return fmt.Errorf("invalid download.progress_interval: %w", err)
	}

	// Validate logging config
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

// GetTimeout returns the request timeout as time.Duration. Zero disables the timeout.
func (c *HTTPConfig) GetTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// GetChunkSize returns the write chunk size in bytes
func (c *DownloadConfig) GetChunkSize() int {
	if c.ChunkSize <= 0 {
		return 1024
	}
	return c.ChunkSize
}

// GetProgressInterval returns the progress log interval as time.Duration
func (c *DownloadConfig) GetProgressInterval() time.Duration {
	d, _ := time.ParseDuration(c.ProgressInterval)
	if d == 0 {
		return time.Second
	}
	return d
}

// JournalEnabled returns true if runs should be recorded
func (c *Config) JournalEnabled() bool {
	return c.Journal.Path != ""
}
