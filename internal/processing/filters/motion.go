package filters

import (
	"pitch-sieve/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// MotionDiff is the mean absolute per-pixel difference between two grayscale
// frames of equal size.
func MotionDiff(prevGray, currGray gocv.Mat) (float64, error) {
	if err := safe.ValidateGray(prevGray, "motion diff"); err != nil {
		return 0, err
	}
	if err := safe.ValidateGray(currGray, "motion diff"); err != nil {
		return 0, err
	}
	if err := safe.ValidateSameSize(prevGray, currGray, "motion diff"); err != nil {
		return 0, err
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(prevGray, currGray, &diff)

	return diff.Mean().Val1, nil
}

// IsNearStatic is the slow-motion signature: almost nothing moved.
func IsNearStatic(diff, threshold float64) bool {
	return diff < threshold
}
