package safe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestSlotStoreReplaces(t *testing.T) {
	var slot Slot
	assert.False(t, slot.Valid())

	first := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC1)
	slot.Store(first)
	got, ok := slot.Load()
	require.True(t, ok)
	assert.Equal(t, 4, got.Rows())

	second := gocv.NewMatWithSize(8, 2, gocv.MatTypeCV8UC1)
	slot.Store(second)
	got, ok = slot.Load()
	require.True(t, ok)
	assert.Equal(t, 8, got.Rows())
	assert.Equal(t, 2, got.Cols())

	slot.Reset()
	assert.False(t, slot.Valid())
	slot.Reset()
}

func TestValidators(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	assert.Error(t, ValidateMatForOperation(empty, "test"))

	bgr := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV8UC3)
	defer bgr.Close()
	assert.NoError(t, ValidateBGR(bgr, "test"))
	assert.Error(t, ValidateGray(bgr, "test"))

	gray := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV8UC1)
	defer gray.Close()
	assert.NoError(t, ValidateGray(gray, "test"))
	assert.Error(t, ValidateBGR(gray, "test"))
	assert.Error(t, ValidateSameSize(bgr, gray, "test"))

	assert.Error(t, ValidateDimensions(0, 10, "test"))
	assert.NoError(t, ValidateDimensions(640, 360, "test"))
}
