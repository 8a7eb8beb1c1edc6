package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pitch-sieve.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.DetectorEnabled())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  target_fps: 5
  thresholds:
    blur_variance: 80
    replay_cooldown_sec: 3
  filters:
    transitions: false
output:
  dir: /tmp/out
log:
  level: debug
  format: json
detector:
  model: yolov4-tiny.weights
  config: yolov4-tiny.cfg
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5.0, cfg.Pipeline.TargetFPS)
	assert.Equal(t, 80.0, cfg.Pipeline.Thresholds.BlurVariance)
	assert.Equal(t, 3.0, cfg.Pipeline.Thresholds.ReplayCooldownSec)
	assert.False(t, cfg.Pipeline.Filters.Transitions)
	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.DetectorEnabled())

	// Untouched keys keep their defaults.
	assert.Equal(t, 0.20, cfg.Pipeline.Thresholds.MinGreenRatio)
	assert.Equal(t, 230.0, cfg.Pipeline.Thresholds.MaxBrightness)
	assert.Equal(t, 95, cfg.Output.JPEGQuality)
	assert.Equal(t, 416, cfg.Detector.InputSize)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "pipeline:\n  tagret_fps: 5\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"brightness band inverted", func(c *Config) { c.Pipeline.Thresholds.MinBrightness = 250 }},
		{"negative blur floor", func(c *Config) { c.Pipeline.Thresholds.BlurVariance = -1 }},
		{"negative frame limit", func(c *Config) { c.Pipeline.FrameLimit = -1 }},
		{"jpeg quality", func(c *Config) { c.Output.JPEGQuality = 0 }},
		{"flush cadence", func(c *Config) { c.Output.FlushEvery = 0 }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"shards", func(c *Config) { c.Shards = -2 }},
		{"output dir", func(c *Config) { c.Output.Dir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.Shards = 3
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Shards)
}
