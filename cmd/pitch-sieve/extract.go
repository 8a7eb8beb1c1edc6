package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"pitch-sieve/internal/config"
	"pitch-sieve/internal/detect"
	"pitch-sieve/internal/framelog"
	"pitch-sieve/internal/logger"
	"pitch-sieve/internal/metrics"
	"pitch-sieve/internal/pipeline"
	"pitch-sieve/internal/shutdown"
	"pitch-sieve/internal/sink"
	"pitch-sieve/internal/system"
	"pitch-sieve/internal/video"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type extractFlags struct {
	outputDir   string
	framesLog   string
	targetFPS   float64
	width       int
	height      int
	startSec    float64
	endSec      float64
	frameLimit  int
	shards      int
	metricsAddr string
	model       string
	modelConfig string
	liveRequire bool

	noBlur        bool
	noBrightness  bool
	noCrowd       bool
	noTransitions bool
	noReplays     bool
	livePlay      bool
}

func newExtractCmd() *cobra.Command {
	var f extractFlags

	cmd := &cobra.Command{
		Use:   "extract [video]",
		Short: "Sample a video and save the frames that pass every filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(cmd.Flags(), cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runExtract(cmd.Context(), args[0], cfg, appLog)
		},
	}

	f.register(cmd.Flags())

	return cmd
}

func (f *extractFlags) register(fl *pflag.FlagSet) {
	fl.StringVarP(&f.outputDir, "output", "o", "./frames", "directory for saved frames")
	fl.StringVar(&f.framesLog, "frames-log", "./frames/"+config.FramesLogName, "per-frame CSV metrics log; defaults to the output directory")
	fl.Float64Var(&f.targetFPS, "fps", 10, "target sampling rate; 0 analyses every frame")
	fl.IntVar(&f.width, "width", 640, "analysis frame width")
	fl.IntVar(&f.height, "height", 360, "analysis frame height")
	fl.Float64Var(&f.startSec, "start", 0, "start offset in seconds")
	fl.Float64Var(&f.endSec, "end", 0, "stop before this many seconds; 0 runs to the end")
	fl.IntVar(&f.frameLimit, "limit", 1000, "maximum frames to save; 0 means no limit")
	fl.IntVar(&f.shards, "shards", 1, "parallel time ranges; 0 sizes from the host")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fl.StringVar(&f.model, "model", "", "YOLO weights; enables the object detector")
	fl.StringVar(&f.modelConfig, "model-config", "", "YOLO network config")
	fl.BoolVar(&f.liveRequire, "require-ball", false, "live-play gate also requires a visible ball")
	fl.BoolVar(&f.noBlur, "no-blur", false, "disable the blur filter")
	fl.BoolVar(&f.noBrightness, "no-brightness", false, "disable the exposure filter")
	fl.BoolVar(&f.noCrowd, "no-crowd", false, "disable the pitch ratio filter")
	fl.BoolVar(&f.noTransitions, "no-transitions", false, "disable the scene transition filter")
	fl.BoolVar(&f.noReplays, "no-replays", false, "disable replay detection")
	fl.BoolVar(&f.livePlay, "live-play", false, "reject frames without live action (needs --model)")
}

// apply copies explicitly set flags over the loaded configuration. A frame
// log sitting in the output directory moves along with --output.
func (f *extractFlags) apply(fs *pflag.FlagSet, c *config.Config) {
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}
	logInDir := filepath.Clean(c.Output.FramesLog) == filepath.Join(c.Output.Dir, config.FramesLogName)

	set("output", func() { c.Output.Dir = f.outputDir })
	set("frames-log", func() { c.Output.FramesLog = f.framesLog })
	set("fps", func() { c.Pipeline.TargetFPS = f.targetFPS })
	set("width", func() { c.Pipeline.Width = f.width })
	set("height", func() { c.Pipeline.Height = f.height })
	set("start", func() { c.Pipeline.StartSec = f.startSec })
	set("end", func() { c.Pipeline.EndSec = f.endSec })
	set("limit", func() { c.Pipeline.FrameLimit = f.frameLimit })
	set("shards", func() { c.Shards = f.shards })
	set("metrics-addr", func() { c.MetricsAddr = f.metricsAddr })
	set("model", func() { c.Detector.Model = f.model })
	set("model-config", func() { c.Detector.Config = f.modelConfig })
	set("require-ball", func() { c.Pipeline.Thresholds.LiveRequireBall = f.liveRequire })
	set("no-blur", func() { c.Pipeline.Filters.Blur = !f.noBlur })
	set("no-brightness", func() { c.Pipeline.Filters.Brightness = !f.noBrightness })
	set("no-crowd", func() { c.Pipeline.Filters.Crowd = !f.noCrowd })
	set("no-transitions", func() { c.Pipeline.Filters.Transitions = !f.noTransitions })
	set("no-replays", func() { c.Pipeline.Filters.Replays = !f.noReplays })
	set("live-play", func() { c.Pipeline.Filters.LivePlay = f.livePlay })

	if logInDir && fs.Changed("output") && !fs.Changed("frames-log") {
		c.Output.FramesLog = filepath.Join(c.Output.Dir, config.FramesLogName)
	}
}

func runExtract(ctx context.Context, locator string, c *config.Config, base *logger.ZerologAdapter) error {
	runID := uuid.NewString()
	log := base.With("run_id", runID)

	mgr := shutdown.NewManager(ctx, log)
	mgr.Listen()
	defer mgr.Shutdown()

	shards := c.Shards
	if host, err := system.Snapshot(ctx); err != nil {
		log.Warning("host", "host snapshot unavailable", map[string]interface{}{"error": err.Error()})
	} else {
		log.Info("host", "host resources", host.Fields())
		if shards == 0 {
			shards = host.DefaultShards()
		}
	}
	shards = max(1, shards)

	collector := metrics.NewCollector()
	if c.MetricsAddr != "" {
		metrics.StartServer(mgr.Context(), c.MetricsAddr, collector, log)
	}

	var factory detect.Factory
	if c.DetectorEnabled() {
		factory = detect.NewYOLOFactory(c.Detector)
	}

	var (
		summary pipeline.Summary
		err     error
	)
	if shards == 1 {
		summary, err = runSingle(mgr, locator, c, runID, factory, collector, log)
	} else {
		summary, err = runShards(mgr, locator, c, runID, shards, factory, collector, log)
	}

	summary.RunID = runID
	summary.Log(log)
	return err
}

func runSingle(mgr *shutdown.Manager, locator string, c *config.Config, runID string, factory detect.Factory, rec pipeline.Recorder, log logger.Logger) (pipeline.Summary, error) {
	src, err := video.Open(locator)
	if err != nil {
		return pipeline.Summary{}, err
	}
	mgr.Register("video source", src.Close)

	deps, release, err := buildDeps(c.Output.Dir, c.Output.FramesLog, c, runID, factory, rec, log)
	if err != nil {
		return pipeline.Summary{}, err
	}
	mgr.Register("run resources", release)

	ex, err := pipeline.NewExtractor(src, c.Pipeline, deps)
	if err != nil {
		return pipeline.Summary{}, err
	}
	return ex.Run(mgr.Context())
}

func runShards(mgr *shutdown.Manager, locator string, c *config.Config, runID string, shards int, factory detect.Factory, rec pipeline.Recorder, log logger.Logger) (pipeline.Summary, error) {
	build := func(i int) (pipeline.Deps, func() error, error) {
		dir := filepath.Join(c.Output.Dir, fmt.Sprintf("shard_%02d", i))
		return buildDeps(dir, shardPath(c.Output.FramesLog, i), c, runID, factory, rec, log)
	}

	log.Info("extractor", "running sharded", map[string]interface{}{"shards": shards})
	return pipeline.RunSharded(mgr.Context(), video.Open, locator, c.Pipeline, shards, build, log)
}

// buildDeps opens the sink, the frame log and, if configured, a detector.
// The returned release func closes the frame log and the detector; it is
// safe to call after the extractor already closed the log.
func buildDeps(dir, framesLog string, c *config.Config, runID string, factory detect.Factory, rec pipeline.Recorder, log logger.Logger) (pipeline.Deps, func() error, error) {
	out, err := sink.NewDir(dir, c.Output.JPEGQuality)
	if err != nil {
		return pipeline.Deps{}, nil, err
	}

	rows, err := framelog.Open(framesLog, c.Output.FlushEvery)
	if err != nil {
		return pipeline.Deps{}, nil, err
	}

	deps := pipeline.Deps{
		RunID:    runID,
		Sink:     out,
		Rows:     rows,
		Logger:   log,
		Recorder: rec,
	}
	release := rows.Close

	log.Debug("extractor", "outputs ready", map[string]interface{}{
		"frames_dir": out.Root(),
		"frames_log": rows.Path(),
	})

	if factory != nil {
		d, closeDetector, err := factory()
		if err != nil {
			rows.Close()
			return pipeline.Deps{}, nil, fmt.Errorf("detector: %w", err)
		}
		deps.Detector = d
		release = func() error {
			return errors.Join(rows.Close(), closeDetector())
		}
	}

	return deps, release, nil
}

// shardPath turns frames_log.csv into frames_log.shard_02.csv.
func shardPath(path string, shard int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s.shard_%02d%s", strings.TrimSuffix(path, ext), shard, ext)
}
