// Package detect defines the object detector capability consumed by the
// frame filters and a YOLO implementation on top of OpenCV's DNN module.
package detect

import (
	"image"

	"gocv.io/x/gocv"
)

// COCO class ids agreed with the bundled models.
const (
	ClassPerson     = 0
	ClassSportsBall = 32
)

// Detection is one object box reported by a detector.
type Detection struct {
	ClassID    int
	Confidence float32
	Box        image.Rectangle
}

// Detector finds objects in a BGR frame. Confidence floors are applied by
// the caller; implementations may still drop near-zero noise.
type Detector interface {
	Detect(frame gocv.Mat) ([]Detection, error)
}

// Factory builds one Detector per independent pipeline run. Detectors are
// not shared between runs.
type Factory func() (Detector, func() error, error)
