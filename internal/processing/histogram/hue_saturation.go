package histogram

import (
	"fmt"

	"pitch-sieve/internal/opencv/conversion"
	"pitch-sieve/internal/opencv/safe"

	"gocv.io/x/gocv"
)

const (
	HueBins        = 50
	SaturationBins = 60
)

var (
	channels = []int{0, 1}
	binSizes = []int{HueBins, SaturationBins}
	// OpenCV 8-bit hue lives in [0,180), saturation in [0,256).
	ranges = []float64{0, 180, 0, 256}
)

// HueSaturation computes the joint hue x saturation histogram of a BGR frame,
// min-max normalised to [0,1]. The returned Mat is owned by the caller.
func HueSaturation(frame gocv.Mat) (gocv.Mat, error) {
	hsv, err := conversion.ToHSV(frame)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("histogram: %w", err)
	}
	defer hsv.Close()

	mask := gocv.NewMat()
	defer mask.Close()

	hist := gocv.NewMat()
	gocv.CalcHist([]gocv.Mat{hsv}, channels, mask, &hist, binSizes, ranges, false)
	gocv.Normalize(hist, &hist, 0, 1, gocv.NormMinMax)

	return hist, nil
}

// Correlation is the normalised cross-correlation of two histograms, in
// [-1,1] where 1 means identical distributions.
func Correlation(a, b gocv.Mat) (float64, error) {
	if err := safe.ValidateMatForOperation(a, "histogram correlation"); err != nil {
		return 0, err
	}
	if err := safe.ValidateMatForOperation(b, "histogram correlation"); err != nil {
		return 0, err
	}
	if err := safe.ValidateSameSize(a, b, "histogram correlation"); err != nil {
		return 0, err
	}

	score := float64(gocv.CompareHist(a, b, gocv.HistCmpCorrel))
	return min(1, max(-1, score)), nil
}
