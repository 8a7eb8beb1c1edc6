// Package pipeline drives a video source through the sampling clock and the
// filter cascade, keeping the cross-frame state needed to spot replays.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"pitch-sieve/internal/detect"
	"pitch-sieve/internal/framelog"
	"pitch-sieve/internal/logger"
	"pitch-sieve/internal/opencv/conversion"
	"pitch-sieve/internal/processing/chain"
	"pitch-sieve/internal/processing/filters"
	"pitch-sieve/internal/processing/histogram"
	"pitch-sieve/internal/sampling"
	"pitch-sieve/internal/sink"
	"pitch-sieve/internal/video"

	"gocv.io/x/gocv"
)

const component = "extractor"

// RowLogger persists one row per sampled frame. Log may report a failed
// flush while keeping the row; Close flushes what is left.
type RowLogger interface {
	Log(row framelog.Row) error
	Close() error
}

// Recorder receives run counters as they change. *metrics.Collector
// satisfies it.
type Recorder interface {
	FrameRead()
	FrameSampled()
	Decision(reason string, seconds float64)
	ReplayWindowOpened()
	WriteFailed()
	LogFlushFailed()
}

type nopRecorder struct{}

func (nopRecorder) FrameRead()               {}
func (nopRecorder) FrameSampled()            {}
func (nopRecorder) Decision(string, float64) {}
func (nopRecorder) ReplayWindowOpened()      {}
func (nopRecorder) WriteFailed()             {}
func (nopRecorder) LogFlushFailed()          {}

// Deps are the collaborators of one run. Sink is required; the rest are
// optional. The detector is owned by the caller and must outlive the run.
type Deps struct {
	RunID      string
	Sink       sink.Sink
	Rows       RowLogger
	Detector   detect.Detector
	Logger     logger.Logger
	Recorder   Recorder
	OnDecision func(Decision)
}

// frameEval is what the cascade predicates look at.
type frameEval struct {
	metrics  Metrics
	cooldown bool
	replay   bool
	presence filters.Presence
}

// Extractor runs the cascade over one source. It is single-use per Run and
// not safe for concurrent use.
type Extractor struct {
	src     video.Source
	meta    video.Metadata
	opts    Options
	deps    Deps
	log     logger.Logger
	rec     Recorder
	cascade *chain.Cascade[frameEval, Reason]
}

// NewExtractor validates opts against the source. A source reporting zero
// frames is rejected here rather than mid-run.
func NewExtractor(src video.Source, opts Options, deps Deps) (*Extractor, error) {
	if src == nil || !src.IsOpen() {
		return nil, errors.New("pipeline: source is not open")
	}
	if deps.Sink == nil {
		return nil, errors.New("pipeline: no frame sink configured")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: invalid options: %w", err)
	}

	meta := src.Metadata()
	if meta.FrameCount <= 0 {
		return nil, video.ErrNoFrames
	}

	e := &Extractor{
		src:  src,
		meta: meta,
		opts: opts,
		deps: deps,
		log:  deps.Logger,
		rec:  deps.Recorder,
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	if e.rec == nil {
		e.rec = nopRecorder{}
	}

	if meta.FPSFallback {
		e.log.Warning(component, "source reports no frame rate, assuming default", map[string]interface{}{
			"fps": meta.FPS,
		})
	}

	cascade, err := e.buildCascade()
	if err != nil {
		return nil, err
	}
	e.cascade = cascade

	return e, nil
}

func (e *Extractor) buildCascade() (*chain.Cascade[frameEval, Reason], error) {
	t := e.opts.Thresholds
	f := e.opts.Filters

	return chain.NewCascade(
		chain.Stage[frameEval, Reason]{
			Name:    "replay_cooldown",
			Result:  ReasonReplayStart,
			Enabled: f.Replays,
			Rejects: func(in frameEval) bool { return in.cooldown },
		},
		chain.Stage[frameEval, Reason]{
			Name:    "replay",
			Result:  ReasonReplayStart,
			Enabled: f.Replays,
			Rejects: func(in frameEval) bool { return in.replay },
		},
		chain.Stage[frameEval, Reason]{
			Name:    "blur",
			Result:  ReasonBlur,
			Enabled: f.Blur,
			Rejects: func(in frameEval) bool {
				return filters.IsBlurry(in.metrics.BlurScore, t.BlurVariance)
			},
		},
		chain.Stage[frameEval, Reason]{
			Name:    "brightness",
			Result:  ReasonBrightness,
			Enabled: f.Brightness,
			Rejects: func(in frameEval) bool {
				return !filters.IsExposed(in.metrics.Brightness, t.MinBrightness, t.MaxBrightness)
			},
		},
		chain.Stage[frameEval, Reason]{
			Name:    "crowd",
			Result:  ReasonCrowd,
			Enabled: f.Crowd,
			Rejects: func(in frameEval) bool {
				return !filters.IsPitch(in.metrics.GreenRatio, t.MinGreenRatio)
			},
		},
		chain.Stage[frameEval, Reason]{
			Name:    "live_play",
			Result:  ReasonCrowd,
			Enabled: f.LivePlay && e.deps.Detector != nil,
			Rejects: func(in frameEval) bool {
				return in.metrics.HasPersons && !filters.IsLivePlay(in.presence, in.metrics.GreenRatio, t)
			},
		},
		chain.Stage[frameEval, Reason]{
			Name:    "transition",
			Result:  ReasonTransition,
			Enabled: f.Transitions,
			Rejects: func(in frameEval) bool { return in.metrics.Transition },
		},
	)
}

// Stages lists the cascade stages that take part in this run, in order.
func (e *Extractor) Stages() []string {
	return e.cascade.EnabledStageNames()
}

// Run processes the source until it is exhausted, the end time passes, the
// save limit is reached or ctx is cancelled. Cancellation is a normal stop.
// The row logger is closed on every return path.
func (e *Extractor) Run(ctx context.Context) (summary Summary, err error) {
	began := time.Now()
	sum := newSummary(e.deps.RunID)
	state := newState()

	defer func() {
		state.release()
		if e.deps.Rows != nil {
			if cerr := e.deps.Rows.Close(); cerr != nil {
				sum.LogFailures++
				e.rec.LogFlushFailed()
				err = errors.Join(err, fmt.Errorf("pipeline: close frame log: %w", cerr))
			}
		}
		sum.Elapsed = time.Since(began)
		summary = sum
	}()

	if e.opts.StartSec > 0 {
		startFrame := int(math.Floor(e.opts.StartSec * e.meta.FPS))
		if serr := e.src.Seek(startFrame); serr != nil {
			return sum, fmt.Errorf("pipeline: seek to %.2fs: %w", e.opts.StartSec, serr)
		}
	}

	e.log.Info(component, "extraction started", map[string]interface{}{
		"run_id":     e.deps.RunID,
		"fps":        e.meta.FPS,
		"frames":     e.meta.FrameCount,
		"target_fps": e.opts.TargetFPS,
		"start_sec":  e.opts.StartSec,
		"end_sec":    e.opts.EndSec,
		"stages":     e.Stages(),
	})

	clock := sampling.NewClock(e.opts.TargetFPS, e.opts.StartSec)

	for {
		if ctx.Err() != nil {
			sum.StopReason = StopCancelled
			return sum, nil
		}
		if e.opts.FrameLimit > 0 && sum.Saved >= e.opts.FrameLimit {
			sum.StopReason = StopFrameLimit
			return sum, nil
		}

		frame, rerr := e.src.Read()
		if rerr != nil {
			if !errors.Is(rerr, video.ErrEndOfStream) {
				e.log.Warning(component, "decode failed, treating as end of stream", map[string]interface{}{
					"error":       rerr.Error(),
					"frames_read": sum.FramesRead,
				})
			}
			sum.StopReason = StopEndOfStream
			return sum, nil
		}
		sum.FramesRead++
		e.rec.FrameRead()

		if e.opts.EndSec > 0 && frame.Timestamp >= e.opts.EndSec {
			frame.Close()
			sum.StopReason = StopEndTime
			return sum, nil
		}

		if !clock.Sample(frame.Timestamp) {
			frame.Close()
			continue
		}
		sum.FramesSampled++
		e.rec.FrameSampled()

		perr := e.process(frame, state, &sum)
		frame.Close()
		if perr != nil {
			return sum, perr
		}
	}
}

// process analyses one sampled frame, applies the cascade and updates state.
func (e *Extractor) process(frame *video.Frame, state *State, sum *Summary) error {
	began := time.Now()
	t := e.opts.Thresholds
	f := e.opts.Filters
	ts := frame.Timestamp

	small, err := conversion.Resize(frame.Image, e.opts.Width, e.opts.Height)
	if err != nil {
		return fmt.Errorf("pipeline: frame %d: %w", frame.Index, err)
	}
	defer small.Close()

	gray, err := conversion.ToGrayscale(small)
	if err != nil {
		return fmt.Errorf("pipeline: frame %d: %w", frame.Index, err)
	}
	keepGray := false
	defer func() {
		if !keepGray {
			gray.Close()
		}
	}()

	var m Metrics
	if m.BlurScore, err = filters.BlurScore(gray); err != nil {
		return fmt.Errorf("pipeline: frame %d: %w", frame.Index, err)
	}
	if m.GreenRatio, err = filters.GreenRatio(small, t.Grass); err != nil {
		return fmt.Errorf("pipeline: frame %d: %w", frame.Index, err)
	}
	if m.Brightness, err = filters.Brightness(gray); err != nil {
		return fmt.Errorf("pipeline: frame %d: %w", frame.Index, err)
	}

	var hist gocv.Mat
	hasHist := false
	if f.Transitions || f.Replays {
		if hist, err = histogram.HueSaturation(small); err != nil {
			return fmt.Errorf("pipeline: frame %d: %w", frame.Index, err)
		}
		hasHist = true
		if prev, ok := state.prevHist.Load(); ok {
			corr, err := histogram.Correlation(prev, hist)
			if err != nil {
				hist.Close()
				return fmt.Errorf("pipeline: frame %d: %w", frame.Index, err)
			}
			m.HasCorrelation = true
			m.Correlation = corr
			m.Transition = corr < t.SceneCorrelation
		}
	}

	in := frameEval{cooldown: f.Replays && state.Mode(ts) == ModeReplayCooldown}

	if !in.cooldown {
		e.analyse(small, gray, state, &m, &in)
	}
	in.metrics = m

	stage, rejected := e.cascade.Evaluate(in)

	d := Decision{
		FrameIndex:   frame.Index,
		TimestampSec: ts,
		Accepted:     !rejected,
		Reason:       ReasonSaved,
		Cooldown:     in.cooldown,
		Metrics:      m,
	}
	if rejected {
		d.Reason = stage.Result
		d.Stage = stage.Name
	}

	switch {
	case in.cooldown:
		sum.CooldownFrames++
	case rejected && stage.Name == "replay":
		state.openCooldown(ts + t.ReplayCooldownSec)
		sum.ReplayWindows++
		e.rec.ReplayWindowOpened()
		e.log.Info(component, "replay detected, skipping ahead", map[string]interface{}{
			"frame":      frame.Index,
			"timestamp":  ts,
			"skip_until": state.SkipUntil(),
			"mode":       state.Mode(ts).String(),
		})
	}

	if hasHist {
		state.prevHist.Store(hist)
	}
	if f.Replays {
		state.prevGray.Store(gray)
		keepGray = true
	}
	switch {
	case in.cooldown:
		state.prevPersons = unknownPersons
	case m.HasPersons:
		state.prevPersons = m.Persons
	}

	sum.sumBlur += m.BlurScore
	sum.sumGreen += m.GreenRatio

	status := string(d.Reason)
	if d.Accepted {
		name := sink.Filename(sum.Saved, ts)
		path, werr := e.deps.Sink.Save(small, name)
		if werr != nil {
			d.WriteErr = werr
			status = StatusWriteFailed
			sum.WriteFailures++
			e.rec.WriteFailed()
			e.log.Error(component, werr, map[string]interface{}{
				"frame": frame.Index,
				"file":  name,
			})
		} else {
			d.SavedPath = path
			sum.Saved++
			sum.LastSavedPath = path
		}
	}
	if !d.Accepted {
		sum.Skipped[d.Reason]++
	}

	e.logRow(d, status, sum)
	e.rec.Decision(status, time.Since(began).Seconds())

	if e.deps.OnDecision != nil {
		e.deps.OnDecision(d)
	}
	return nil
}

// analyse computes the costly signals: motion against the previous frame,
// object presence and the replay verdict. Cooldown frames skip it.
func (e *Extractor) analyse(small, gray gocv.Mat, state *State, m *Metrics, in *frameEval) {
	t := e.opts.Thresholds
	f := e.opts.Filters

	if f.Replays {
		if prev, ok := state.prevGray.Load(); ok {
			diff, err := filters.MotionDiff(prev, gray)
			if err != nil {
				e.log.Warning(component, "motion diff skipped", map[string]interface{}{"error": err.Error()})
			} else {
				m.HasMotion = true
				m.MotionDiff = diff
				m.NearStatic = filters.IsNearStatic(diff, t.MotionDiff)
			}
		}
	}

	if e.deps.Detector != nil && (f.Replays || f.LivePlay) {
		p, err := filters.DetectObjects(e.deps.Detector, small, t.PersonConfidence, t.BallConfidence)
		if err != nil {
			e.log.Warning(component, "object detection failed", map[string]interface{}{"error": err.Error()})
		} else {
			m.HasPersons = true
			m.Persons = p.Persons
			m.Ball = p.Ball
			in.presence = p
		}
	}

	if f.Replays {
		in.replay = filters.IsReplay(filters.ReplaySignals{
			Transition:  m.Transition,
			NearStatic:  m.NearStatic,
			GreenRatio:  m.GreenRatio,
			HasPersons:  m.HasPersons,
			Persons:     m.Persons,
			PrevPersons: state.prevPersons,
		}, t)
	}
}

func (e *Extractor) logRow(d Decision, status string, sum *Summary) {
	if e.deps.Rows == nil {
		return
	}

	// Without a previous histogram there is no transition; -1 is kept for
	// runs that never compare histograms.
	flag := framelog.Missing
	if e.opts.Filters.Transitions || e.opts.Filters.Replays {
		flag = 0
		if d.Metrics.Transition {
			flag = 1
		}
	}

	err := e.deps.Rows.Log(framelog.Row{
		FrameIndex:     d.FrameIndex,
		TimestampSec:   d.TimestampSec,
		BlurScore:      d.Metrics.BlurScore,
		GreenRatio:     d.Metrics.GreenRatio,
		Brightness:     d.Metrics.Brightness,
		TransitionFlag: flag,
		Status:         status,
	})
	if err != nil {
		sum.LogFailures++
		e.rec.LogFlushFailed()
		e.log.Warning(component, "frame log flush failed, rows kept for retry", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
