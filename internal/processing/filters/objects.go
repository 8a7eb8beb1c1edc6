package filters

import (
	"fmt"

	"pitch-sieve/internal/detect"

	"gocv.io/x/gocv"
)

// Presence summarises the detector output for one frame.
type Presence struct {
	Persons int
	Ball    bool
}

// CountObjects applies the person and ball confidence floors to raw
// detections.
func CountObjects(detections []detect.Detection, personFloor, ballFloor float64) Presence {
	var p Presence
	for _, d := range detections {
		switch d.ClassID {
		case detect.ClassPerson:
			if float64(d.Confidence) >= personFloor {
				p.Persons++
			}
		case detect.ClassSportsBall:
			if float64(d.Confidence) >= ballFloor {
				p.Ball = true
			}
		}
	}
	return p
}

// DetectObjects runs the detector on frame and counts persons and balls.
func DetectObjects(d detect.Detector, frame gocv.Mat, personFloor, ballFloor float64) (Presence, error) {
	detections, err := d.Detect(frame)
	if err != nil {
		return Presence{}, fmt.Errorf("object presence: %w", err)
	}
	return CountObjects(detections, personFloor, ballFloor), nil
}
