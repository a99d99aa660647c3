package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sigview/sigview/internal/source"
)

// Config represents the main application configuration.
type Config struct {
	Settings Settings      `yaml:"settings"`
	Source   SourceConfig  `yaml:"source"`
	Scope    ScopeConfig   `yaml:"scope"`
	Capture  CaptureConfig `yaml:"capture"`
	Export   ExportConfig  `yaml:"export"`
}

// Settings represents global application settings.
type Settings struct {
	LogLevel string   `yaml:"logLevel"`
	Duration Duration `yaml:"duration"`
}

// Duration is a time.Duration that unmarshals from the usual string form,
// e.g. "30s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration: %w", err)
	}
	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// SourceConfig selects and parameterizes the data source.
type SourceConfig struct {
	Type          string `yaml:"type"`
	source.Config `yaml:",inline"`
}

// ScopeConfig holds the display pipeline settings.
type ScopeConfig struct {
	RefreshMs int  `yaml:"refreshMs"`
	Spectrum  bool `yaml:"spectrum"`
}

// CaptureConfig represents capture storage settings.
type CaptureConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DataDirectory string `yaml:"dataDirectory"`
	MaxBatchSize  int    `yaml:"maxBatchSize"`
}

// ExportConfig holds the CSV export settings.
type ExportConfig struct {
	CSVPath string `yaml:"csvPath"`
}

// LoadConfig reads and validates the yaml configuration file.
func LoadConfig(path string) (*Config, error) {
	p, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(p, &config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if config.Source.Type == "" {
		return nil, fmt.Errorf("source type is required, one of %v", source.Names())
	}
	if config.Settings.LogLevel == "" {
		config.Settings.LogLevel = slog.LevelInfo.String()
	}

	return &config, nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Settings.LogLevel)); err != nil {
		return 0, fmt.Errorf("parsing log level: %w", err)
	}
	return level, nil
}
