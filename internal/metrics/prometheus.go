package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the extraction counters on its own registry so that
// several runs in one process (and tests) never collide on registration.
type Collector struct {
	Registry *prometheus.Registry

	FramesRead    prometheus.Counter
	FramesSampled prometheus.Counter
	Decisions     *prometheus.CounterVec
	WriteFailures prometheus.Counter
	LogFailures   prometheus.Counter
	AnalysisTime  prometheus.Histogram
	ReplayWindows prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Collector{
		Registry: reg,
		FramesRead: f.NewCounter(prometheus.CounterOpts{
			Name: "pitchsieve_frames_read_total",
			Help: "Total number of frames decoded from the source",
		}),
		FramesSampled: f.NewCounter(prometheus.CounterOpts{
			Name: "pitchsieve_frames_sampled_total",
			Help: "Total number of frames selected by the sampling clock",
		}),
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pitchsieve_decisions_total",
			Help: "Total number of sampled frame decisions, by reason",
		}, []string{"reason"}),
		WriteFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "pitchsieve_frame_write_failures_total",
			Help: "Accepted frames that could not be written to the sink",
		}),
		LogFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "pitchsieve_log_flush_failures_total",
			Help: "Metric log flushes that failed and were retried later",
		}),
		AnalysisTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pitchsieve_frame_analysis_seconds",
			Help:    "Time spent scoring one sampled frame",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ReplayWindows: f.NewCounter(prometheus.CounterOpts{
			Name: "pitchsieve_replay_windows_total",
			Help: "Replay cooldown windows opened",
		}),
	}
}

func (c *Collector) FrameRead() {
	c.FramesRead.Inc()
}

func (c *Collector) FrameSampled() {
	c.FramesSampled.Inc()
}

func (c *Collector) Decision(reason string, seconds float64) {
	c.Decisions.WithLabelValues(reason).Inc()
	c.AnalysisTime.Observe(seconds)
}

func (c *Collector) ReplayWindowOpened() {
	c.ReplayWindows.Inc()
}

func (c *Collector) WriteFailed() {
	c.WriteFailures.Inc()
}

func (c *Collector) LogFlushFailed() {
	c.LogFailures.Inc()
}
