package videotest

import (
	"fmt"

	"pitch-sieve/internal/video"

	"gocv.io/x/gocv"
)

// Generator renders frame i on demand, keeping the fake source O(1) in
// memory like a real decoder.
type Generator func(i int) gocv.Mat

// Source is an in-memory video.Source with exact timestamps i/fps.
type Source struct {
	gen    Generator
	Meta   video.Metadata
	pos    int
	closed bool
	FailAt int // Read fails at this index when > 0
	Reads  int
	Seeks  []int

	// SeekSlack makes Seek land this many frames early, like a container
	// that can only seek to the preceding keyframe.
	SeekSlack int
}

func NewSource(count int, fps float64, width, height int, gen Generator) *Source {
	return &Source{
		gen: gen,
		Meta: video.Metadata{
			FPS:         fps,
			FrameCount:  count,
			Width:       width,
			Height:      height,
			DurationSec: float64(count) / fps,
		},
	}
}

func (s *Source) Metadata() video.Metadata {
	return s.Meta
}

func (s *Source) Seek(frameIndex int) error {
	if frameIndex < 0 {
		return fmt.Errorf("negative seek %d", frameIndex)
	}
	s.Seeks = append(s.Seeks, frameIndex)
	s.pos = max(0, frameIndex-s.SeekSlack)
	return nil
}

func (s *Source) Read() (*video.Frame, error) {
	if s.closed || s.pos >= s.Meta.FrameCount || (s.FailAt > 0 && s.pos >= s.FailAt) {
		return nil, video.ErrEndOfStream
	}
	i := s.pos
	s.pos++
	s.Reads++
	return &video.Frame{
		Image:     s.gen(i),
		Index:     i,
		Timestamp: float64(i) / s.Meta.FPS,
	}, nil
}

func (s *Source) IsOpen() bool {
	return !s.closed
}

func (s *Source) Close() error {
	s.closed = true
	return nil
}

// Opener returns a video.Opener producing fresh sources from the same
// generator, for sharded runs.
func Opener(count int, fps float64, width, height int, gen Generator) video.Opener {
	return func(string) (video.Source, error) {
		return NewSource(count, fps, width, height, gen), nil
	}
}
