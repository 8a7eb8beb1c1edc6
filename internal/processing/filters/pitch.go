package filters

import (
	"fmt"

	"pitch-sieve/internal/opencv/conversion"

	"gocv.io/x/gocv"
)

// GreenRatio is the fraction of pixels whose HSV value falls inside band.
func GreenRatio(frame gocv.Mat, band HSVBand) (float64, error) {
	hsv, err := conversion.ToHSV(frame)
	if err != nil {
		return 0, fmt.Errorf("pitch ratio: %w", err)
	}
	defer hsv.Close()

	mask := gocv.NewMat()
	defer mask.Close()
	lower := gocv.NewScalar(band.Lower[0], band.Lower[1], band.Lower[2], 0)
	upper := gocv.NewScalar(band.Upper[0], band.Upper[1], band.Upper[2], 0)
	gocv.InRangeWithScalar(hsv, lower, upper, &mask)

	total := frame.Rows() * frame.Cols()
	if total == 0 {
		return 0, nil
	}
	return float64(gocv.CountNonZero(mask)) / float64(total), nil
}

// IsPitch reports whether enough of the frame is playing surface.
func IsPitch(ratio, minRatio float64) bool {
	return ratio >= minRatio
}
