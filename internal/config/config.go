// Package config loads the dp application configuration from
// ~/.config/devops-proxy/config.yaml, DP_* environment variables and
// built-in defaults, in increasing order of precedence: defaults, file, env.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// DP_AWS_DEFAULT_REGION overrides aws.default_region.
const EnvPrefix = "DP"

// Config is the top-level application configuration.
// It must never be committed with real secrets.
type Config struct {
	AWS     AWSConfig     `mapstructure:"aws"     json:"aws"`
	Log     LogConfig     `mapstructure:"log"     json:"log"`
	Audit   AuditConfig   `mapstructure:"audit"   json:"audit"`
	Metrics MetricsConfig `mapstructure:"metrics" json:"metrics"`
}

// AWSConfig holds AWS-specific defaults used when flags are not provided.
type AWSConfig struct {
	// DefaultProfile is used when no --profile flag is provided.
	DefaultProfile string `mapstructure:"default_profile" json:"default_profile"`

	// DefaultRegion is used when neither a region flag nor the profile sets one.
	DefaultRegion string `mapstructure:"default_region" json:"default_region"`

	// Partition forces the ARN partition. Empty derives it from the region.
	Partition string `mapstructure:"partition" json:"partition"`
}

// LogConfig controls the zerolog logger built by the CLI.
type LogConfig struct {
	Level  string `mapstructure:"level"  json:"level"`  // trace, debug, info, warn, error
	Format string `mapstructure:"format" json:"format"` // console, json
}

// AuditConfig holds audit defaults.
type AuditConfig struct {
	// NormalizeSeverity emits "LOW" instead of the legacy "Low" label on
	// cross-account failures.
	NormalizeSeverity bool `mapstructure:"normalize_severity" json:"normalize_severity"`

	// ReportFormat is the default --report value.
	ReportFormat string `mapstructure:"report_format" json:"report_format"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	// Textfile is written after each audit when non-empty.
	Textfile string `mapstructure:"textfile" json:"textfile"`
}

// DefaultDir returns ~/.config/devops-proxy, or "" when the home directory
// cannot be determined.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "devops-proxy")
}

// Load reads the configuration. When path is empty the default location is
// searched and a missing file is not an error; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir := DefaultDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that are
// absent from the file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("aws.default_profile", "")
	v.SetDefault("aws.default_region", "")
	v.SetDefault("aws.partition", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("audit.normalize_severity", false)
	v.SetDefault("audit.report_format", "table")
	v.SetDefault("metrics.textfile", "")
}

var (
	validFormats = map[string]bool{"table": true, "json": true, "jsonl": true, "asff": true}
	validLogFmts = map[string]bool{"console": true, "json": true}
)

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if !validFormats[c.Audit.ReportFormat] {
		return fmt.Errorf("audit.report_format: unknown format %q", c.Audit.ReportFormat)
	}
	if !validLogFmts[c.Log.Format] {
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}
