package filters

import "fmt"

// HSVBand is an inclusive OpenCV 8-bit HSV range (H in [0,180)).
type HSVBand struct {
	Lower [3]float64 `yaml:"lower"`
	Upper [3]float64 `yaml:"upper"`
}

// GrassBand captures most broadcast grass greens.
var GrassBand = HSVBand{
	Lower: [3]float64{35, 40, 40},
	Upper: [3]float64{85, 255, 255},
}

// Thresholds is the immutable tuning for every filter and heuristic.
type Thresholds struct {
	BlurVariance      float64 `yaml:"blur_variance"`
	MinGreenRatio     float64 `yaml:"min_green_ratio"`
	MinBrightness     float64 `yaml:"min_brightness"`
	MaxBrightness     float64 `yaml:"max_brightness"`
	SceneCorrelation  float64 `yaml:"scene_correlation"`
	MotionDiff        float64 `yaml:"motion_diff"`
	PersonConfidence  float64 `yaml:"person_confidence"`
	BallConfidence    float64 `yaml:"ball_confidence"`
	ReplayCooldownSec float64 `yaml:"replay_cooldown_sec"`
	PlayerDropRatio   float64 `yaml:"player_drop_ratio"`
	CloseShotMaxCount int     `yaml:"close_shot_max_persons"`
	LiveMinPersons    int     `yaml:"live_min_persons"`
	LiveMinGreenRatio float64 `yaml:"live_min_green_ratio"`
	LiveRequireBall   bool    `yaml:"live_require_ball"`
	Grass             HSVBand `yaml:"grass"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		BlurVariance:      50.0,
		MinGreenRatio:     0.20,
		MinBrightness:     20.0,
		MaxBrightness:     230.0,
		SceneCorrelation:  0.75,
		MotionDiff:        2.0,
		PersonConfidence:  0.5,
		BallConfidence:    0.3,
		ReplayCooldownSec: 5.0,
		PlayerDropRatio:   0.5,
		CloseShotMaxCount: 2,
		LiveMinPersons:    1,
		LiveMinGreenRatio: 0.10,
		Grass:             GrassBand,
	}
}

func (t Thresholds) Validate() error {
	switch {
	case t.BlurVariance < 0:
		return fmt.Errorf("blur_variance must be >= 0, got %v", t.BlurVariance)
	case t.MinGreenRatio < 0 || t.MinGreenRatio > 1:
		return fmt.Errorf("min_green_ratio must be in [0,1], got %v", t.MinGreenRatio)
	case t.LiveMinGreenRatio < 0 || t.LiveMinGreenRatio > 1:
		return fmt.Errorf("live_min_green_ratio must be in [0,1], got %v", t.LiveMinGreenRatio)
	case t.MinBrightness > t.MaxBrightness:
		return fmt.Errorf("min_brightness %v exceeds max_brightness %v", t.MinBrightness, t.MaxBrightness)
	case t.SceneCorrelation < -1 || t.SceneCorrelation > 1:
		return fmt.Errorf("scene_correlation must be in [-1,1], got %v", t.SceneCorrelation)
	case t.MotionDiff < 0:
		return fmt.Errorf("motion_diff must be >= 0, got %v", t.MotionDiff)
	case t.ReplayCooldownSec < 0:
		return fmt.Errorf("replay_cooldown_sec must be >= 0, got %v", t.ReplayCooldownSec)
	case t.PlayerDropRatio < 0 || t.PlayerDropRatio > 1:
		return fmt.Errorf("player_drop_ratio must be in [0,1], got %v", t.PlayerDropRatio)
	case t.CloseShotMaxCount < 0 || t.LiveMinPersons < 0:
		return fmt.Errorf("person counts must be >= 0")
	}

	for i := range 3 {
		if t.Grass.Lower[i] > t.Grass.Upper[i] {
			return fmt.Errorf("grass band lower bound exceeds upper bound on channel %d", i)
		}
	}
	return nil
}
