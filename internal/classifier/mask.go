package classifier

import (
	"fmt"
	"math"

	"github.com/dudu/facerec/internal/face"
	"github.com/dudu/facerec/internal/inference"
)

// DefaultMaskConfidence is the lowest winning probability reported as a
// definite answer.
const DefaultMaskConfidence = 0.75

// Mask is a two-class convolutional mask classifier over aligned crops.
// Its output is [no mask, mask] as logits or probabilities.
type Mask struct {
	session    *inference.Session
	inputSize  int
	confidence float32
}

// NewMask creates a mask classifier from model bytes. Answers whose
// probability is below confidence are reported as MaskUnknown.
func NewMask(model []byte, confidence float32, opts inference.Options) (*Mask, error) {
	if confidence < 0.5 || confidence > 1 {
		return nil, fmt.Errorf("mask confidence %v must be within [0.5, 1]", confidence)
	}

	session, err := inference.NewSession("mask", model, nil, nil, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mask session: %w", err)
	}

	return &Mask{
		session:    session,
		inputSize:  112,
		confidence: confidence,
	}, nil
}

// Classify reports whether the face wears a mask
func (m *Mask) Classify(crop face.Image) (face.MaskStatus, error) {
	if crop.Empty() {
		return face.MaskUnknown, fmt.Errorf("empty face crop")
	}

	blob := inference.SquareBlob(crop.NRGBA(), m.inputSize, inference.InsightFace)

	size := int64(m.inputSize)
	outputs, err := m.session.RunFloat([]int64{1, 3, size, size}, blob)
	if err != nil {
		return face.MaskUnknown, err
	}
	if len(outputs) == 0 {
		return face.MaskUnknown, fmt.Errorf("mask model produced no output")
	}

	return decodeMask(outputs[0], m.confidence)
}

func decodeMask(out []float32, confidence float32) (face.MaskStatus, error) {
	if len(out) < 2 {
		return face.MaskUnknown, fmt.Errorf("mask output has %d values, expected 2", len(out))
	}

	probs := softmax(out[:2])
	switch {
	case probs[1] >= confidence:
		return face.MaskPresent, nil
	case probs[0] >= confidence:
		return face.MaskAbsent, nil
	default:
		return face.MaskUnknown, nil
	}
}

// softmax leaves a valid probability pair unchanged and converts logits
func softmax(v []float32) []float32 {
	sum := float32(0)
	valid := true
	for _, x := range v {
		if x < 0 || x > 1 {
			valid = false
		}
		sum += x
	}
	if valid && math.Abs(float64(sum-1)) < 1e-3 {
		return v
	}

	maxV := v[0]
	for _, x := range v[1:] {
		maxV = max(maxV, x)
	}

	out := make([]float32, len(v))
	var total float64
	for i, x := range v {
		e := math.Exp(float64(x - maxV))
		out[i] = float32(e)
		total += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / total)
	}
	return out
}

// Close releases classifier resources
func (m *Mask) Close() error {
	return m.session.Close()
}
