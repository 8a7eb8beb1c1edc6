package conversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestToGrayscale(t *testing.T) {
	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(100, 100, 100, 0), 6, 8, gocv.MatTypeCV8UC3)
	defer src.Close()

	gray, err := ToGrayscale(src)
	require.NoError(t, err)
	defer gray.Close()

	assert.Equal(t, gocv.MatTypeCV8UC1, gray.Type())
	assert.Equal(t, uint8(100), gray.GetUCharAt(3, 3))
}

func TestToHSVRejectsGray(t *testing.T) {
	gray := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC1)
	defer gray.Close()

	_, err := ToHSV(gray)
	assert.Error(t, err)
}

func TestToHSVGreen(t *testing.T) {
	src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 200, 0, 0), 2, 2, gocv.MatTypeCV8UC3)
	defer src.Close()

	hsv, err := ToHSV(src)
	require.NoError(t, err)
	defer hsv.Close()

	assert.Equal(t, uint8(60), hsv.GetUCharAt3(0, 0, 0))
	assert.Equal(t, uint8(255), hsv.GetUCharAt3(0, 0, 1))
	assert.Equal(t, uint8(200), hsv.GetUCharAt3(0, 0, 2))
}

func TestResize(t *testing.T) {
	src := gocv.NewMatWithSize(90, 160, gocv.MatTypeCV8UC3)
	defer src.Close()

	dst, err := Resize(src, 64, 36)
	require.NoError(t, err)
	defer dst.Close()
	assert.Equal(t, 64, dst.Cols())
	assert.Equal(t, 36, dst.Rows())

	same, err := Resize(dst, 64, 36)
	require.NoError(t, err)
	defer same.Close()
	assert.NotEqual(t, dst.Ptr(), same.Ptr())

	_, err = Resize(src, 0, 36)
	assert.Error(t, err)
}
