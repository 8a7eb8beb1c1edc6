package detect

import (
	"errors"
	"fmt"
	"image"
	"slices"

	"pitch-sieve/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// YOLOConfig describes a Darknet-style YOLO model readable by gocv.ReadNet.
type YOLOConfig struct {
	Model      string  `yaml:"model"`
	Config     string  `yaml:"config"`
	InputSize  int     `yaml:"input_size"`
	MinScore   float32 `yaml:"min_score"`
	NMSOverlap float32 `yaml:"nms_overlap"`
	UseCUDA    bool    `yaml:"use_cuda"`
}

func DefaultYOLOConfig() YOLOConfig {
	return YOLOConfig{
		InputSize:  416,
		MinScore:   0.1,
		NMSOverlap: 0.4,
	}
}

// YOLO runs a YOLO network through OpenCV DNN. It is not safe for
// concurrent use; give each pipeline run its own instance.
type YOLO struct {
	net       gocv.Net
	outLayers []string
	cfg       YOLOConfig
}

func NewYOLO(cfg YOLOConfig) (*YOLO, error) {
	if cfg.Model == "" {
		return nil, errors.New("yolo: model path is required")
	}
	if cfg.InputSize <= 0 {
		cfg.InputSize = DefaultYOLOConfig().InputSize
	}

	net := gocv.ReadNet(cfg.Model, cfg.Config)
	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("yolo: could not load model %s", cfg.Model)
	}

	if cfg.UseCUDA {
		net.SetPreferableBackend(gocv.NetBackendCUDA)
		net.SetPreferableTarget(gocv.NetTargetCUDA)
	} else {
		net.SetPreferableBackend(gocv.NetBackendDefault)
		net.SetPreferableTarget(gocv.NetTargetCPU)
	}

	names := net.GetLayerNames()
	var outLayers []string
	for _, id := range net.GetUnconnectedOutLayers() {
		if id > 0 && id <= len(names) {
			outLayers = append(outLayers, names[id-1])
		}
	}
	if len(outLayers) == 0 {
		net.Close()
		return nil, fmt.Errorf("yolo: model %s exposes no output layers", cfg.Model)
	}

	return &YOLO{net: net, outLayers: outLayers, cfg: cfg}, nil
}

// NewYOLOFactory returns a Factory that loads a fresh network per run.
func NewYOLOFactory(cfg YOLOConfig) Factory {
	return func() (Detector, func() error, error) {
		y, err := NewYOLO(cfg)
		if err != nil {
			return nil, nil, err
		}
		return y, y.Close, nil
	}
}

func (y *YOLO) Detect(frame gocv.Mat) ([]Detection, error) {
	if err := safe.ValidateBGR(frame, "yolo detect"); err != nil {
		return nil, err
	}

	size := image.Pt(y.cfg.InputSize, y.cfg.InputSize)
	blob := gocv.BlobFromImage(frame, 1.0/255.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	y.net.SetInput(blob, "")
	outputs := y.net.ForwardLayers(y.outLayers)
	defer func() {
		for i := range outputs {
			outputs[i].Close()
		}
	}()

	return y.decode(outputs, frame.Cols(), frame.Rows()), nil
}

// decode turns raw rows of [cx, cy, w, h, objectness, class scores...] into
// detections, then suppresses overlapping boxes per class.
func (y *YOLO) decode(outputs []gocv.Mat, width, height int) []Detection {
	var boxes []image.Rectangle
	var scores []float32
	var classes []int

	for _, out := range outputs {
		cols := out.Cols()
		if cols <= 5 {
			continue
		}
		for row := 0; row < out.Rows(); row++ {
			bestClass, bestScore := -1, float32(0)
			for c := 5; c < cols; c++ {
				if s := out.GetFloatAt(row, c); s > bestScore {
					bestClass, bestScore = c-5, s
				}
			}
			if bestClass < 0 || bestScore < y.cfg.MinScore {
				continue
			}

			cx := out.GetFloatAt(row, 0) * float32(width)
			cy := out.GetFloatAt(row, 1) * float32(height)
			w := out.GetFloatAt(row, 2) * float32(width)
			h := out.GetFloatAt(row, 3) * float32(height)
			left, top := int(cx-w/2), int(cy-h/2)

			boxes = append(boxes, image.Rect(left, top, left+int(w), top+int(h)))
			scores = append(scores, bestScore)
			classes = append(classes, bestClass)
		}
	}

	if len(boxes) == 0 {
		return nil
	}

	keep := suppress(boxes, scores, classes, y.cfg.MinScore, y.cfg.NMSOverlap)
	detections := make([]Detection, 0, len(keep))
	for _, i := range keep {
		detections = append(detections, Detection{
			ClassID:    classes[i],
			Confidence: scores[i],
			Box:        boxes[i],
		})
	}
	return detections
}

// suppress runs non-maximum suppression separately for each class, so a
// ball overlapping a player never removes the player box. The kept indices
// are returned in ascending order.
func suppress(boxes []image.Rectangle, scores []float32, classes []int, minScore, overlap float32) []int {
	byClass := make(map[int][]int)
	for i, c := range classes {
		byClass[c] = append(byClass[c], i)
	}

	var keep []int
	for _, idx := range byClass {
		b := make([]image.Rectangle, len(idx))
		s := make([]float32, len(idx))
		for j, i := range idx {
			b[j], s[j] = boxes[i], scores[i]
		}
		for _, j := range gocv.NMSBoxes(b, s, minScore, overlap) {
			keep = append(keep, idx[j])
		}
	}
	slices.Sort(keep)
	return keep
}

func (y *YOLO) Close() error {
	return y.net.Close()
}
