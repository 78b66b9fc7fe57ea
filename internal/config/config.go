// Package config loads fatcat settings from a config file, the environment and defaults.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// Formats lists the supported output formats.
//
//nolint:gochecknoglobals // Config constant
var Formats = []string{"table", "json", "paths"}

// Config represents the complete application configuration.
type Config struct {
	Scan    ScanConfig    `mapstructure:"scan"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
	Archive ArchiveConfig `mapstructure:"archive"`
}

// ScanConfig holds default scan settings.
type ScanConfig struct {
	// MinSize is a plain number of megabytes or a humanized size such as "1.5GB".
	MinSize  string   `mapstructure:"min_size"`
	Top      uint     `mapstructure:"top"`
	Workers  int      `mapstructure:"workers"`
	Excludes []string `mapstructure:"excludes"`
}

// OutputConfig holds presentation settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// LoggingConfig holds logging-related settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ArchiveConfig holds scan archive settings. An empty path disables the archive.
type ArchiveConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration from the specified file path. Without a path the
// usual locations are searched and a missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	def := Default()

	v.SetDefault("scan.min_size", def.Scan.MinSize)
	v.SetDefault("scan.top", def.Scan.Top)
	v.SetDefault("scan.workers", def.Scan.Workers)
	v.SetDefault("scan.excludes", def.Scan.Excludes)
	v.SetDefault("output.format", def.Output.Format)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("archive.path", def.Archive.Path)

	v.SetEnvPrefix("FATCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("fatcat")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.config/fatcat")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK if using defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := ParseMinSize(c.Scan.MinSize); err != nil {
		return fmt.Errorf("scan.min_size: %w", err)
	}

	if c.Scan.Workers < 0 {
		return errors.New("scan.workers must be non-negative")
	}

	if !slices.Contains(Formats, c.Output.Format) {
		return fmt.Errorf("output.format %q must be one of %v", c.Output.Format, Formats)
	}

	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			MinSize:  "100",
			Top:      20,
			Workers:  0,
			Excludes: []string{},
		},
		Output: OutputConfig{
			Format: "table",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// ParseMinSize converts a size setting into bytes. A bare integer is a
// number of megabytes (1 MB = 1024 * 1024 bytes); anything else is parsed
// by go-humanize, e.g. "1.5GB", "500MiB" or "4096 B".
func ParseMinSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("size is empty")
	}

	if mb, err := strconv.ParseUint(s, 10, 64); err == nil {
		const mib = 1024 * 1024
		if mb > (1<<64-1)/mib {
			return 0, fmt.Errorf("size %q is too large", s)
		}

		return mb * mib, nil
	}

	size, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", s, err)
	}

	return size, nil
}
