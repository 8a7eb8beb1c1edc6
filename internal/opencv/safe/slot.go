package safe

import "gocv.io/x/gocv"

// Slot owns at most one Mat. Storing a new Mat closes the previous one, so a
// Slot never holds more than a single frame of history.
type Slot struct {
	mat   gocv.Mat
	valid bool
}

// Store takes ownership of mat, releasing whatever was held before.
func (s *Slot) Store(mat gocv.Mat) {
	s.Reset()
	s.mat = mat
	s.valid = true
}

// Load returns the held Mat. The Mat stays owned by the Slot.
func (s *Slot) Load() (gocv.Mat, bool) {
	return s.mat, s.valid
}

func (s *Slot) Valid() bool {
	return s.valid
}

// Reset closes the held Mat, if any.
func (s *Slot) Reset() {
	if s.valid {
		s.mat.Close()
		s.valid = false
	}
}
