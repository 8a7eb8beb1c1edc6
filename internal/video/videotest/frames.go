// Package videotest provides synthetic frames and an in-memory video source
// for tests.
package videotest

import (
	"image"

	"gocv.io/x/gocv"
)

var (
	Gray      = gocv.NewScalar(128, 128, 128, 0)
	Dark      = gocv.NewScalar(5, 5, 5, 0)
	Grass     = gocv.NewScalar(0, 200, 0, 0)
	DarkGrass = gocv.NewScalar(0, 100, 0, 0)
	Red       = gocv.NewScalar(0, 0, 220, 0)
	DarkRed   = gocv.NewScalar(0, 0, 110, 0)
	Blue      = gocv.NewScalar(220, 60, 0, 0)
	// Lime and DarkLime are still inside the grass band but land in other
	// hue bins than Grass.
	Lime     = gocv.NewScalar(0, 200, 100, 0)
	DarkLime = gocv.NewScalar(0, 100, 50, 0)
)

// Solid is a flat BGR frame: no edges, so it always scores as blurry.
func Solid(width, height int, c gocv.Scalar) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(c, height, width, gocv.MatTypeCV8UC3)
}

// Checker is a BGR checkerboard of two colours with square cells of the
// given size, sharp enough to pass any sane blur threshold.
func Checker(width, height, cell int, a, b gocv.Scalar) gocv.Mat {
	m := Solid(width, height, a)
	for y := 0; y < height; y += cell {
		for x := 0; x < width; x += cell {
			if ((x/cell)+(y/cell))%2 == 0 {
				continue
			}
			roi := m.Region(image.Rect(x, y, min(x+cell, width), min(y+cell, height)))
			roi.SetTo(b)
			roi.Close()
		}
	}
	return m
}
