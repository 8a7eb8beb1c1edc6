// Package config loads run configuration from YAML over built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"pitch-sieve/internal/detect"
	"pitch-sieve/internal/framelog"
	"pitch-sieve/internal/logger"
	"pitch-sieve/internal/pipeline"

	"gopkg.in/yaml.v3"
)

// FramesLogName is the frame log file placed in the output directory unless
// another path is configured.
const FramesLogName = "frames_log.csv"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all application configuration
type Config struct {
	Pipeline pipeline.Options `yaml:"pipeline"`
	Output   OutputConfig     `yaml:"output"`
	Log      LogConfig        `yaml:"log"`

	// Detector is used only when Model is set.
	Detector detect.YOLOConfig `yaml:"detector"`

	// Shards is the number of parallel time ranges; 0 picks one from the
	// host CPU count.
	Shards      int    `yaml:"shards"`
	MetricsAddr string `yaml:"metrics_addr"`
}

type OutputConfig struct {
	Dir         string `yaml:"dir"`
	FramesLog   string `yaml:"frames_log"`
	JPEGQuality int    `yaml:"jpeg_quality"`
	FlushEvery  int    `yaml:"flush_every"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Pipeline: pipeline.DefaultOptions(),
		Output: OutputConfig{
			Dir:         "./frames",
			FramesLog:   "./frames/" + FramesLogName,
			JPEGQuality: 95,
			FlushEvery:  framelog.DefaultFlushEvery,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Detector: detect.DefaultYOLOConfig(),
		Shards:   1,
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DetectorEnabled reports whether a detector model is configured.
func (c *Config) DetectorEnabled() bool {
	return c.Detector.Model != ""
}

func (c *Config) Validate() error {
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("%w: pipeline: %v", ErrInvalid, err)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("%w: output.dir is empty", ErrInvalid)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("%w: output.jpeg_quality must be in 1..100, got %d", ErrInvalid, c.Output.JPEGQuality)
	}
	if c.Output.FlushEvery < 1 {
		return fmt.Errorf("%w: output.flush_every must be >= 1, got %d", ErrInvalid, c.Output.FlushEvery)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log.format must be console or json, got %q", ErrInvalid, c.Log.Format)
	}
	if c.Shards < 0 {
		return fmt.Errorf("%w: shards must be >= 0, got %d", ErrInvalid, c.Shards)
	}
	if c.DetectorEnabled() && c.Detector.InputSize <= 0 {
		return fmt.Errorf("%w: detector.input_size must be > 0", ErrInvalid)
	}
	return nil
}
