package pipeline

import "strings"

// Reason is the outcome of the cascade for one sampled frame.
type Reason string

const (
	ReasonSaved       Reason = "SAVED"
	ReasonReplayStart Reason = "SKIPPED_REPLAY_START"
	ReasonBlur        Reason = "SKIPPED_BLUR"
	ReasonBrightness  Reason = "SKIPPED_BRIGHTNESS"
	ReasonCrowd       Reason = "SKIPPED_CROWD"
	ReasonTransition  Reason = "SKIPPED_TRANSITION"
)

// StatusWriteFailed is logged instead of SAVED when an accepted frame could
// not be written to the sink.
const StatusWriteFailed = "FAILED_WRITE"

// Reasons lists every reason in cascade precedence order.
var Reasons = []Reason{
	ReasonReplayStart,
	ReasonBlur,
	ReasonBrightness,
	ReasonCrowd,
	ReasonTransition,
	ReasonSaved,
}

// fieldName is the structured log key for a reason, e.g. skipped_blur.
func (r Reason) fieldName() string {
	return strings.ToLower(string(r))
}

// Metrics are the raw scores computed for a sampled frame. Has* flags mark
// values that were computed; the rest are zero.
type Metrics struct {
	BlurScore  float64
	GreenRatio float64
	Brightness float64

	HasCorrelation bool
	Correlation    float64
	Transition     bool

	HasMotion  bool
	MotionDiff float64
	NearStatic bool

	HasPersons bool
	Persons    int
	Ball       bool
}

// Decision is produced for every sampled frame, whether or not it is
// persisted.
type Decision struct {
	FrameIndex   int
	TimestampSec float64
	Accepted     bool
	Reason       Reason
	// Stage names the cascade stage that rejected the frame.
	Stage string
	// Cooldown is set for frames rejected inside an open replay window
	// without full analysis.
	Cooldown bool
	Metrics  Metrics
	// SavedPath is set once the sink stored the frame.
	SavedPath string
	WriteErr  error
}
