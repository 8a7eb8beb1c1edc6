package pipeline

import (
	"errors"
	"fmt"

	"pitch-sieve/internal/opencv/safe"
	"pitch-sieve/internal/processing/filters"
)

// Filters switches individual cascade stages on or off.
type Filters struct {
	Blur        bool `yaml:"blur"`
	Brightness  bool `yaml:"brightness"`
	Crowd       bool `yaml:"crowd"`
	Transitions bool `yaml:"transitions"`
	Replays     bool `yaml:"replays"`
	// LivePlay only takes effect when a detector is configured.
	LivePlay bool `yaml:"live_play"`
}

func AllFilters() Filters {
	return Filters{
		Blur:        true,
		Brightness:  true,
		Crowd:       true,
		Transitions: true,
		Replays:     true,
	}
}

// Options configure one extraction run. They are copied at construction and
// never change afterwards.
type Options struct {
	Thresholds filters.Thresholds `yaml:"thresholds"`
	Filters    Filters            `yaml:"filters"`

	TargetFPS float64 `yaml:"target_fps"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`

	// StartSec and EndSec bound the run to [StartSec, EndSec); EndSec <= 0
	// runs to the end of the source.
	StartSec float64 `yaml:"start_sec"`
	EndSec   float64 `yaml:"end_sec"`
	// FrameLimit caps the number of saved frames; 0 means unlimited.
	FrameLimit int `yaml:"frame_limit"`
}

func DefaultOptions() Options {
	return Options{
		Thresholds: filters.DefaultThresholds(),
		Filters:    AllFilters(),
		TargetFPS:  10,
		Width:      640,
		Height:     360,
		FrameLimit: 1000,
	}
}

func (o Options) Validate() error {
	if err := o.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	if err := safe.ValidateDimensions(o.Width, o.Height, "analysis frame"); err != nil {
		return err
	}
	if o.StartSec < 0 {
		return fmt.Errorf("start_sec must be >= 0, got %v", o.StartSec)
	}
	if o.EndSec > 0 && o.EndSec <= o.StartSec {
		return fmt.Errorf("end_sec %v must be after start_sec %v", o.EndSec, o.StartSec)
	}
	if o.FrameLimit < 0 {
		return errors.New("frame_limit must be >= 0 (0 means unlimited)")
	}
	return nil
}
