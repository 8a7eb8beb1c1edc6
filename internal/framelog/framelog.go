// Package framelog keeps the append-only CSV record of every sampled frame's
// metrics and decision, used to tune thresholds offline.
package framelog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Missing marks a metric that was not computed because its filter was off.
const Missing = -1

// DefaultFlushEvery is the buffered row count that triggers a flush.
const DefaultFlushEvery = 100

var Header = []string{
	"frame_index",
	"timestamp_sec",
	"blur_score",
	"green_ratio",
	"brightness",
	"scene_transition_flag",
	"status",
}

// Row is the durable projection of one frame decision. Negative metric
// values are written as Missing.
type Row struct {
	FrameIndex     int
	TimestampSec   float64
	BlurScore      float64
	GreenRatio     float64
	Brightness     float64
	TransitionFlag int
	Status         string
}

func (r Row) record() []string {
	return []string{
		strconv.Itoa(r.FrameIndex),
		strconv.FormatFloat(round(r.TimestampSec, 2), 'f', -1, 64),
		metric(r.BlurScore, 2),
		metric(r.GreenRatio, 3),
		metric(r.Brightness, 2),
		strconv.Itoa(r.TransitionFlag),
		r.Status,
	}
}

func metric(v float64, places int) string {
	if v < 0 {
		return strconv.Itoa(Missing)
	}
	return strconv.FormatFloat(round(v, places), 'f', -1, 64)
}

func round(v float64, places int) float64 {
	p, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return p
}

// Logger buffers rows and appends them to a CSV file. Rows reach the file
// in the order they were logged.
type Logger struct {
	path       string
	flushEvery int

	mu     sync.Mutex
	buffer []Row
	closed bool
}

// Open prepares path for appending, creating parent directories. The header
// is written only when the file is new or empty, so repeated runs against
// the same target share one header.
func Open(path string, flushEvery int) (*Logger, error) {
	if flushEvery <= 0 {
		flushEvery = DefaultFlushEvery
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("framelog: create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("framelog: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("framelog: stat %s: %w", path, err)
	}

	if info.Size() == 0 {
		w := csv.NewWriter(f)
		if err := w.Write(Header); err != nil {
			return nil, fmt.Errorf("framelog: write header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("framelog: write header: %w", err)
		}
	}

	return &Logger{
		path:       path,
		flushEvery: flushEvery,
		buffer:     make([]Row, 0, flushEvery),
	}, nil
}

func (l *Logger) Path() string {
	return l.path
}

// Log buffers a row and flushes once the buffer is full. A flush error is
// returned but the rows stay buffered for the next attempt.
func (l *Logger) Log(row Row) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return errors.New("framelog: logger is closed")
	}

	l.buffer = append(l.buffer, row)
	if len(l.buffer) >= l.flushEvery {
		return l.flushLocked()
	}
	return nil
}

func (l *Logger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flushLocked()
}

func (l *Logger) flushLocked() error {
	if len(l.buffer) == 0 {
		return nil
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("framelog: open %s: %w", l.path, err)
	}

	w := csv.NewWriter(f)
	for _, row := range l.buffer {
		if err := w.Write(row.record()); err != nil {
			f.Close()
			return fmt.Errorf("framelog: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("framelog: flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("framelog: close %s: %w", l.path, err)
	}

	l.buffer = l.buffer[:0]
	return nil
}

// Buffered is the number of rows not yet on disk.
func (l *Logger) Buffered() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buffer)
}

// Close flushes remaining rows. It is safe to call more than once.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	err := l.flushLocked()
	l.closed = true
	return err
}
