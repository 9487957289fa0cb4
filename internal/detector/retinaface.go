package detector

import (
	"fmt"

	"github.com/dudu/facerec/internal/face"
	"github.com/dudu/facerec/internal/inference"
)

// RetinaFaceConfig tunes the detector
type RetinaFaceConfig struct {
	InputSize      int
	ScoreThreshold float32
	NMSThreshold   float32
	Inference      inference.Options
}

// DefaultRetinaFaceConfig returns the settings the bundled retina50 model
// was validated with.
func DefaultRetinaFaceConfig() RetinaFaceConfig {
	return RetinaFaceConfig{
		InputSize:      640,
		ScoreThreshold: 0.5,
		NMSThreshold:   0.4,
	}
}

// RetinaFace implements the anchor-free RetinaFace/SCRFD face detector.
// The model has 1 input and 3 outputs per feature level (score, bbox and
// optionally keypoints), grouped by kind.
type RetinaFace struct {
	session        *inference.Session
	inputSize      int
	confThreshold  float32
	nmsThreshold   float32
	featureStrides []int
	numAnchors     int
}

// NewRetinaFace creates a detector from ONNX model bytes
func NewRetinaFace(model []byte, cfg RetinaFaceConfig) (*RetinaFace, error) {
	if cfg.InputSize <= 0 || cfg.InputSize%32 != 0 {
		return nil, fmt.Errorf("input size %d must be a positive multiple of 32", cfg.InputSize)
	}

	session, err := inference.NewSession("retinaface", model, nil, nil, cfg.Inference)
	if err != nil {
		return nil, fmt.Errorf("failed to create RetinaFace session: %w", err)
	}

	d := newRetinaFace(cfg)
	d.session = session

	if n := session.OutputCount(); n < 2*len(d.featureStrides) {
		session.Close()
		return nil, fmt.Errorf("retinaface model has %d outputs, expected at least %d", n, 2*len(d.featureStrides))
	}

	return d, nil
}

func newRetinaFace(cfg RetinaFaceConfig) *RetinaFace {
	return &RetinaFace{
		inputSize:      cfg.InputSize,
		confThreshold:  cfg.ScoreThreshold,
		nmsThreshold:   cfg.NMSThreshold,
		featureStrides: []int{8, 16, 32},
		numAnchors:     2, // anchors per position
	}
}

// Detect finds faces in an image and returns their regions relative to the
// image, best score first.
func (r *RetinaFace) Detect(img face.Image) ([]face.RelRect, error) {
	if img.Empty() {
		return []face.RelRect{}, nil
	}
	origWidth, origHeight := img.Width(), img.Height()

	// Preprocess: letterbox and normalize
	padded, scale := inference.Letterbox(img.NRGBA(), r.inputSize)
	blob := inference.Blob(padded, inference.InsightFace)

	size := int64(r.inputSize)
	outputs, err := r.session.RunFloat([]int64{1, 3, size, size}, blob)
	if err != nil {
		return nil, err
	}

	dets, err := r.decode(outputs, scale)
	if err != nil {
		return nil, err
	}

	dets = nms(dets, r.nmsThreshold)

	regions := make([]face.RelRect, 0, len(dets))
	for _, d := range dets {
		box := d.Box.Clip(origWidth, origHeight)
		if box.Width() <= 0 || box.Height() <= 0 {
			continue
		}
		regions = append(regions, box.Relative(origWidth, origHeight))
	}

	return regions, nil
}

// decode turns per-level score and distance outputs into pixel boxes in
// source image coordinates.
func (r *RetinaFace) decode(outputs [][]float32, scale float32) ([]Detection, error) {
	levels := len(r.featureStrides)
	if len(outputs) < 2*levels {
		return nil, fmt.Errorf("expected at least %d outputs, got %d", 2*levels, len(outputs))
	}
	if scale <= 0 {
		return nil, nil
	}

	var dets []Detection

	for level, stride := range r.featureStrides {
		fmWidth := r.inputSize / stride
		fmHeight := r.inputSize / stride
		count := fmWidth * fmHeight * r.numAnchors

		scoreData := outputs[level]
		bboxData := outputs[level+levels]
		if len(scoreData) < count || len(bboxData) < count*4 {
			return nil, fmt.Errorf("stride %d: got %d scores and %d box values for %d anchors",
				stride, len(scoreData), len(bboxData), count)
		}

		s := float32(stride)
		for anchorIdx := 0; anchorIdx < count; anchorIdx++ {
			score := scoreData[anchorIdx]
			if score < r.confThreshold {
				continue
			}

			// Anchor center
			pos := anchorIdx / r.numAnchors
			cx := float32(pos%fmWidth) * s
			cy := float32(pos/fmWidth) * s

			// Decode bbox (distance to edges)
			b := bboxData[anchorIdx*4 : anchorIdx*4+4]
			dets = append(dets, Detection{
				Box: BoundingBox{
					X1: (cx - b[0]*s) / scale,
					Y1: (cy - b[1]*s) / scale,
					X2: (cx + b[2]*s) / scale,
					Y2: (cy + b[3]*s) / scale,
				},
				Score: score,
			})
		}
	}

	return dets, nil
}

// Close releases detector resources
func (r *RetinaFace) Close() error {
	if r.session == nil {
		return nil
	}
	return r.session.Close()
}
