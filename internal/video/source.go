// Package video defines the frame source consumed by the extraction
// pipeline and an OpenCV VideoCapture implementation of it.
package video

import (
	"errors"

	"gocv.io/x/gocv"
)

// DefaultFPS is substituted when a container reports no frame rate.
const DefaultFPS = 15.0

var (
	// ErrEndOfStream is returned by Read once no further frame can be
	// decoded. Mid-stream decode failures are reported the same way.
	ErrEndOfStream = errors.New("video: end of stream")
	// ErrNoFrames rejects sources that open but contain nothing to read.
	ErrNoFrames = errors.New("video: source has no frames")
)

// Metadata is what the container reports about the stream.
type Metadata struct {
	FPS         float64
	FrameCount  int
	Width       int
	Height      int
	DurationSec float64
	// FPSFallback is set when FPS was substituted with DefaultFPS.
	FPSFallback bool
}

// Frame is one decoded BGR image with its position in the source. The
// receiver owns Image and must Close it.
type Frame struct {
	Image     gocv.Mat
	Index     int
	Timestamp float64
}

func (f *Frame) Close() {
	f.Image.Close()
}

// Source supplies frames sequentially and can seek by frame index.
type Source interface {
	Metadata() Metadata
	Seek(frameIndex int) error
	Read() (*Frame, error)
	IsOpen() bool
	Close() error
}

// Opener opens an independent Source for a locator. Each concurrent run
// needs its own Source.
type Opener func(locator string) (Source, error)
