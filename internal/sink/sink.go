// Package sink receives accepted frames from the pipeline.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pitch-sieve/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Sink stores an accepted frame under name and returns where it went.
type Sink interface {
	Save(img gocv.Mat, name string) (string, error)
}

// Filename encodes the save sequence number and the source timestamp, e.g.
// frame_000007_sec_3.50.jpg.
func Filename(seq int, timestampSec float64) string {
	return fmt.Sprintf("frame_%06d_sec_%.2f.jpg", seq, timestampSec)
}

// Dir writes frames as image files into one directory.
type Dir struct {
	root        string
	jpegQuality int
}

// NewDir creates root if needed. A quality outside 1..100 falls back to 95.
func NewDir(root string, jpegQuality int) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("sink: create %s: %w", root, err)
	}
	if jpegQuality < 1 || jpegQuality > 100 {
		jpegQuality = 95
	}
	return &Dir{root: root, jpegQuality: jpegQuality}, nil
}

func (d *Dir) Root() string {
	return d.root
}

func (d *Dir) Save(img gocv.Mat, name string) (string, error) {
	if err := safe.ValidateMatForOperation(img, "save frame"); err != nil {
		return "", err
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("sink: invalid file name %q", name)
	}

	path := filepath.Join(d.root, name)

	var ok bool
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		ok = gocv.IMWriteWithParams(path, img, []int{int(gocv.IMWriteJpegQuality), d.jpegQuality})
	default:
		ok = gocv.IMWrite(path, img)
	}
	if !ok {
		return "", fmt.Errorf("sink: could not write %s", path)
	}
	return path, nil
}
