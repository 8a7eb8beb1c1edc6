package detect

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"
)

func TestNewYOLORequiresModel(t *testing.T) {
	_, err := NewYOLO(DefaultYOLOConfig())
	assert.Error(t, err)
}

func TestYOLODecode(t *testing.T) {
	// Two overlapping person rows and one ball row, 5 + 33 columns.
	out := gocv.NewMatWithSize(3, 38, gocv.MatTypeCV32F)
	defer out.Close()

	setRow := func(row int, cx, cy, w, h float32, class int, score float32) {
		out.SetFloatAt(row, 0, cx)
		out.SetFloatAt(row, 1, cy)
		out.SetFloatAt(row, 2, w)
		out.SetFloatAt(row, 3, h)
		out.SetFloatAt(row, 4, score)
		out.SetFloatAt(row, 5+class, score)
	}
	setRow(0, 0.5, 0.5, 0.2, 0.4, ClassPerson, 0.9)
	setRow(1, 0.51, 0.5, 0.2, 0.4, ClassPerson, 0.8)
	setRow(2, 0.1, 0.1, 0.02, 0.02, ClassSportsBall, 0.6)

	y := &YOLO{cfg: DefaultYOLOConfig()}
	dets := y.decode([]gocv.Mat{out}, 640, 360)

	var persons, balls int
	for _, d := range dets {
		switch d.ClassID {
		case ClassPerson:
			persons++
		case ClassSportsBall:
			balls++
		}
	}
	assert.Equal(t, 1, persons)
	assert.Equal(t, 1, balls)
}

func TestSuppressKeepsOverlappingBoxesOfOtherClasses(t *testing.T) {
	player := image.Rect(100, 100, 160, 220)
	boxes := []image.Rectangle{player, player.Add(image.Pt(2, 0)), player.Add(image.Pt(1, 1))}
	scores := []float32{0.9, 0.8, 0.7}
	classes := []int{ClassPerson, ClassPerson, ClassSportsBall}

	keep := suppress(boxes, scores, classes, 0.1, 0.4)

	assert.Equal(t, []int{0, 2}, keep)
}
