package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"text/tabwriter"

	"pitch-sieve/internal/config"
	"pitch-sieve/internal/video"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardPath(t *testing.T) {
	assert.Equal(t, "out/frames_log.shard_02.csv", shardPath("out/frames_log.csv", 2))
	assert.Equal(t, "frames.shard_00", shardPath("frames", 0))
}

func TestExtractFlagsOverrideOnlyWhenSet(t *testing.T) {
	var f extractFlags
	fs := pflag.NewFlagSet("extract", pflag.ContinueOnError)
	f.register(fs)
	require.NoError(t, fs.Parse([]string{"--fps", "4", "--no-replays", "--limit", "0", "-o", "/data/out"}))

	c := config.Default()
	c.Pipeline.Width = 1280
	f.apply(fs, c)

	assert.Equal(t, 4.0, c.Pipeline.TargetFPS)
	assert.False(t, c.Pipeline.Filters.Replays)
	assert.True(t, c.Pipeline.Filters.Transitions)
	assert.Equal(t, 0, c.Pipeline.FrameLimit)
	assert.Equal(t, "/data/out", c.Output.Dir)
	assert.Equal(t, "/data/out/frames_log.csv", c.Output.FramesLog)
	assert.Equal(t, 1280, c.Pipeline.Width, "unset flags keep config values")
	assert.NoError(t, c.Validate())
}

func TestFramesLogFollowsOutputDir(t *testing.T) {
	parse := func(args ...string) *config.Config {
		var f extractFlags
		fs := pflag.NewFlagSet("extract", pflag.ContinueOnError)
		f.register(fs)
		require.NoError(t, fs.Parse(args))
		c := config.Default()
		f.apply(fs, c)
		return c
	}

	c := parse("--output", "match01")
	assert.Equal(t, filepath.Join("match01", config.FramesLogName), c.Output.FramesLog)

	c = parse("--output", "match01", "--frames-log", "logs/run.csv")
	assert.Equal(t, "logs/run.csv", c.Output.FramesLog)

	c = parse("--fps", "5")
	assert.Equal(t, "./frames/frames_log.csv", c.Output.FramesLog)

	var f extractFlags
	fs := pflag.NewFlagSet("extract", pflag.ContinueOnError)
	f.register(fs)
	require.NoError(t, fs.Parse([]string{"--output", "match01"}))
	c = config.Default()
	c.Output.FramesLog = "/var/log/sieve.csv"
	f.apply(fs, c)
	assert.Equal(t, "/var/log/sieve.csv", c.Output.FramesLog, "a configured log elsewhere stays put")
}

func TestConfigCommandWritesEffectiveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuned.yaml")
	rootCmd.SetArgs([]string{"config", path, "--fps", "4", "--no-crowd", "--log-level", "error"})
	require.NoError(t, rootCmd.Execute())

	saved, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4.0, saved.Pipeline.TargetFPS)
	assert.False(t, saved.Pipeline.Filters.Crowd)
	assert.True(t, saved.Pipeline.Filters.Blur)
	assert.Equal(t, "error", saved.Log.Level)
}

func TestPrintMetadata(t *testing.T) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	printMetadata(w, "match.mp4", video.Metadata{
		FPS:         video.DefaultFPS,
		FrameCount:  900,
		Width:       1920,
		Height:      1080,
		DurationSec: 60,
		FPSFallback: true,
	})
	require.NoError(t, w.Flush())

	out := buf.String()
	assert.Contains(t, out, "1920x1080")
	assert.Contains(t, out, "900")
	assert.True(t, strings.Contains(out, "default 15.0"))
}
