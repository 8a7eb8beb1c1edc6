package video

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Capture reads frames through gocv.VideoCapture.
type Capture struct {
	locator string
	vc      *gocv.VideoCapture
	meta    Metadata
}

// Open opens a file or URL. It fails when the container cannot be opened or
// reports zero frames.
func Open(locator string) (Source, error) {
	vc, err := gocv.VideoCaptureFile(locator)
	if err != nil {
		return nil, fmt.Errorf("video: cannot open %s: %w", locator, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("video: cannot open %s", locator)
	}

	c := &Capture{locator: locator, vc: vc}
	c.meta = c.probe()
	if c.meta.FrameCount <= 0 {
		vc.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoFrames, locator)
	}
	return c, nil
}

func (c *Capture) probe() Metadata {
	fps := c.vc.Get(gocv.VideoCaptureFPS)
	m := Metadata{
		FPS:        fps,
		FrameCount: int(c.vc.Get(gocv.VideoCaptureFrameCount)),
		Width:      int(c.vc.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(c.vc.Get(gocv.VideoCaptureFrameHeight)),
	}
	if fps <= 0 {
		m.FPS = DefaultFPS
		m.FPSFallback = true
	}
	m.DurationSec = float64(m.FrameCount) / m.FPS
	return m
}

func (c *Capture) Metadata() Metadata {
	return c.meta
}

func (c *Capture) Seek(frameIndex int) error {
	if frameIndex < 0 {
		return fmt.Errorf("video: negative seek index %d", frameIndex)
	}
	c.vc.Set(gocv.VideoCapturePosFrames, float64(frameIndex))
	return nil
}

// Read decodes the next frame. The timestamp comes from the container's
// playback clock, not from index/fps.
func (c *Capture) Read() (*Frame, error) {
	index := int(c.vc.Get(gocv.VideoCapturePosFrames))

	img := gocv.NewMat()
	if ok := c.vc.Read(&img); !ok || img.Empty() {
		img.Close()
		return nil, ErrEndOfStream
	}

	return &Frame{
		Image:     img,
		Index:     index,
		Timestamp: c.vc.Get(gocv.VideoCapturePosMsec) / 1000.0,
	}, nil
}

func (c *Capture) IsOpen() bool {
	return c.vc.IsOpened()
}

func (c *Capture) Close() error {
	return c.vc.Close()
}
