package conversion

import (
	"fmt"
	"image"

	"pitch-sieve/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ToGrayscale converts a BGR or BGRA frame to a new single-channel Mat owned
// by the caller. Grayscale input is cloned.
func ToGrayscale(src gocv.Mat) (gocv.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "grayscale conversion"); err != nil {
		return gocv.Mat{}, fmt.Errorf("validation failed: %w", err)
	}

	dst := gocv.NewMat()

	switch src.Channels() {
	case 1:
		src.CopyTo(&dst)
	case 3:
		gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	case 4:
		temp := gocv.NewMat()
		defer temp.Close()
		gocv.CvtColor(src, &temp, gocv.ColorBGRAToBGR)
		gocv.CvtColor(temp, &dst, gocv.ColorBGRToGray)
	default:
		dst.Close()
		return gocv.Mat{}, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}

	return dst, nil
}

// ToHSV converts a BGR frame to OpenCV's 8-bit HSV (H in [0,180)).
func ToHSV(src gocv.Mat) (gocv.Mat, error) {
	if err := safe.ValidateBGR(src, "HSV conversion"); err != nil {
		return gocv.Mat{}, err
	}

	dst := gocv.NewMat()
	gocv.CvtColor(src, &dst, gocv.ColorBGRToHSV)
	return dst, nil
}

// Resize scales src to width x height with bilinear interpolation. A frame
// already at the target size is cloned so the result is always caller-owned.
func Resize(src gocv.Mat, width, height int) (gocv.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "resize"); err != nil {
		return gocv.Mat{}, err
	}
	if err := safe.ValidateDimensions(width, height, "resize"); err != nil {
		return gocv.Mat{}, err
	}

	if src.Cols() == width && src.Rows() == height {
		return src.Clone(), nil
	}

	dst := gocv.NewMat()
	gocv.Resize(src, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	return dst, nil
}
