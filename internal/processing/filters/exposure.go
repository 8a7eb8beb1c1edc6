package filters

import (
	"fmt"

	"pitch-sieve/internal/opencv/conversion"

	"gocv.io/x/gocv"
)

// Brightness is the mean grayscale luminance in [0,255].
func Brightness(frame gocv.Mat) (float64, error) {
	gray, err := conversion.ToGrayscale(frame)
	if err != nil {
		return 0, fmt.Errorf("exposure: %w", err)
	}
	defer gray.Close()

	return gray.Mean().Val1, nil
}

// IsExposed reports whether brightness sits inside [min, max].
func IsExposed(brightness, min, max float64) bool {
	return min <= brightness && brightness <= max
}
