package filters

import (
	"fmt"

	"pitch-sieve/internal/opencv/conversion"

	"gocv.io/x/gocv"
)

// BlurScore is the variance of the Laplacian of the grayscale frame. Low
// variance means few sharp edges.
func BlurScore(frame gocv.Mat) (float64, error) {
	gray, err := conversion.ToGrayscale(frame)
	if err != nil {
		return 0, fmt.Errorf("blur: %w", err)
	}
	defer gray.Close()

	return laplacianVariance(gray), nil
}

func laplacianVariance(gray gocv.Mat) float64 {
	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(gray, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(lap, &mean, &stddev)

	sd := stddev.GetDoubleAt(0, 0)
	return sd * sd
}

// IsBlurry reports whether the score falls under the variance floor.
func IsBlurry(score, threshold float64) bool {
	return score < threshold
}
