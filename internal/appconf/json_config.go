package appconf

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"authordedup.kddcup.org/internal/engine"
	"authordedup.kddcup.org/internal/models"
	"authordedup.kddcup.org/internal/similarity"
	"authordedup.kddcup.org/internal/snapshot"
)

// JSONConfig is the on-disk configuration of the compute and prepare commands.
// Command line flags take precedence over values loaded from a file.
type JSONConfig struct {
	Env              string              `json:"env"`
	LogLevel         string              `json:"log-level"`
	LogFile          string              `json:"log-file"`
	Workers          int                 `json:"workers"`
	Threshold        float64             `json:"threshold"`
	Timeout          string              `json:"timeout"`
	ProgressInterval string              `json:"progress-interval"`
	Weights          *similarity.Weights `json:"weights"`
	Compression      string              `json:"compression"`
	Output           string              `json:"output"`
	MetricsFile      string              `json:"metrics-file"`
}

// LoadFromFile reads, defaults and validates the JSON config at path.
func LoadFromFile(path string) (*JSONConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is an operator-supplied flag
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config JSONConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	config.setDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// DefaultJSONConfig returns the configuration used when no file is given.
func DefaultJSONConfig() *JSONConfig {
	config := &JSONConfig{}
	config.setDefaults()
	return config
}

// setDefaults fills in unset fields. A threshold of 0 counts as unset.
func (c *JSONConfig) setDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Threshold == 0 {
		c.Threshold = models.DefaultMatchThreshold
	}
	if c.ProgressInterval == "" {
		c.ProgressInterval = "30s"
	}
	if c.Weights == nil {
		w := similarity.DefaultWeights()
		c.Weights = &w
	}
	if c.Compression == "" {
		c.Compression = snapshot.CompressionZSTD.String()
	}
	if c.Output == "" {
		c.Output = "submission_track2.csv"
	}
}

// Validate checks a configuration assembled outside LoadFromFile, such as
// one whose values were overridden from the command line.
func (c *JSONConfig) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *JSONConfig) validate() error {
	if c.Env != "development" && c.Env != "test" && c.Env != "production" {
		return fmt.Errorf("env must be one of: development, test, production (got %q)", c.Env)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log-level must be one of: debug, info, warn, error (got %q)", c.LogLevel)
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1 (got %d)", c.Workers)
	}

	if c.Threshold < 0 || c.Threshold >= 1 {
		return fmt.Errorf("threshold must be in [0, 1) (got %v)", c.Threshold)
	}

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("timeout is not a valid duration: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("timeout cannot be negative (got %s)", c.Timeout)
		}
	}

	d, err := time.ParseDuration(c.ProgressInterval)
	if err != nil {
		return fmt.Errorf("progress-interval is not a valid duration: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("progress-interval must be positive (got %s)", c.ProgressInterval)
	}

	if c.Weights != nil {
		if err := c.Weights.Validate(); err != nil {
			return fmt.Errorf("weights: %w", err)
		}
	}

	if _, err := snapshot.ParseCompression(c.Compression); err != nil {
		return fmt.Errorf("compression must be one of: none, lz4, zstd (got %q)", c.Compression)
	}

	return nil
}

// ToAppConfig converts the file settings shared by every command.
func (c *JSONConfig) ToAppConfig() Config {
	return Config{
		Env:      EnvFlagToEnvironment(c.Env),
		Verbose:  c.LogLevel == "debug",
		LogLevel: c.LogLevel,
		LogFile:  c.LogFile,
	}
}

// ToEngineOptions converts the comparison settings into engine options.
func (c *JSONConfig) ToEngineOptions() (engine.Options, error) {
	opts := engine.DefaultOptions()
	opts.Workers = c.Workers
	opts.Threshold = c.Threshold
	if c.Weights != nil {
		opts.Weights = *c.Weights
	}

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return engine.Options{}, fmt.Errorf("failed to parse timeout: %w", err)
		}
		opts.Timeout = d
	}

	d, err := time.ParseDuration(c.ProgressInterval)
	if err != nil {
		return engine.Options{}, fmt.Errorf("failed to parse progress-interval: %w", err)
	}
	opts.ProgressInterval = d

	return opts, opts.Validate()
}

// SnapshotCompression returns the configured snapshot codec.
func (c *JSONConfig) SnapshotCompression() (snapshot.Compression, error) {
	return snapshot.ParseCompression(c.Compression)
}
