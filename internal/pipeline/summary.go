package pipeline

import (
	"time"

	"pitch-sieve/internal/logger"
)

// StopReason records which terminal condition ended a run.
type StopReason string

const (
	StopEndOfStream StopReason = "end_of_stream"
	StopEndTime     StopReason = "end_time"
	StopFrameLimit  StopReason = "frame_limit"
	StopCancelled   StopReason = "cancelled"
)

// Summary holds the per-run counters.
type Summary struct {
	RunID          string
	FramesRead     int
	FramesSampled  int
	Saved          int
	Skipped        map[Reason]int
	ReplayWindows  int
	CooldownFrames int
	WriteFailures  int
	LogFailures    int
	LastSavedPath  string
	StopReason     StopReason
	Elapsed        time.Duration

	sumBlur  float64
	sumGreen float64
}

func newSummary(runID string) Summary {
	return Summary{RunID: runID, Skipped: make(map[Reason]int)}
}

func (s *Summary) AverageBlur() float64 {
	return s.sumBlur / float64(max(1, s.FramesSampled))
}

func (s *Summary) AverageGreenRatio() float64 {
	return s.sumGreen / float64(max(1, s.FramesSampled))
}

// Merge folds a shard's counters into s. The stop reason of the last merged
// shard wins.
func (s *Summary) Merge(o Summary) {
	if s.Skipped == nil {
		s.Skipped = make(map[Reason]int)
	}
	s.FramesRead += o.FramesRead
	s.FramesSampled += o.FramesSampled
	s.Saved += o.Saved
	for r, n := range o.Skipped {
		s.Skipped[r] += n
	}
	s.ReplayWindows += o.ReplayWindows
	s.CooldownFrames += o.CooldownFrames
	s.WriteFailures += o.WriteFailures
	s.LogFailures += o.LogFailures
	s.sumBlur += o.sumBlur
	s.sumGreen += o.sumGreen
	if o.LastSavedPath != "" {
		s.LastSavedPath = o.LastSavedPath
	}
	if o.Elapsed > s.Elapsed {
		s.Elapsed = o.Elapsed
	}
	s.StopReason = o.StopReason
}

// Log writes the run summary as one structured event with a skip count for
// every rejection reason, zero or not.
func (s *Summary) Log(log logger.Logger) {
	fields := map[string]interface{}{
		"run_id":          s.RunID,
		"frames_read":     s.FramesRead,
		"frames_sampled":  s.FramesSampled,
		"frames_saved":    s.Saved,
		"replay_windows":  s.ReplayWindows,
		"cooldown_frames": s.CooldownFrames,
		"write_failures":  s.WriteFailures,
		"log_failures":    s.LogFailures,
		"avg_blur":        s.AverageBlur(),
		"avg_green_ratio": s.AverageGreenRatio(),
		"last_saved":      s.LastSavedPath,
		"stop_reason":     string(s.StopReason),
		"elapsed":         s.Elapsed.String(),
	}
	for _, r := range Reasons {
		if r == ReasonSaved {
			continue
		}
		fields[r.fieldName()] = s.Skipped[r]
	}
	log.Info("summary", "frame processing summary", fields)
}
