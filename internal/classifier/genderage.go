// Package classifier estimates per-face attributes from aligned crops.
package classifier

import (
	"fmt"
	"math"

	"github.com/dudu/facerec/internal/face"
	"github.com/dudu/facerec/internal/inference"
)

// GenderAge runs insightface's gender/age model on a 96x96 crop
type GenderAge struct {
	session   *inference.Session
	inputSize int
}

// NewGenderAge creates a gender/age classifier from model bytes
func NewGenderAge(model []byte, opts inference.Options) (*GenderAge, error) {
	session, err := inference.NewSession("genderage", model, nil, nil, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create gender/age session: %w", err)
	}

	return &GenderAge{
		session:   session,
		inputSize: 96,
	}, nil
}

// Classify estimates gender and age of an aligned face
func (g *GenderAge) Classify(crop face.Image) (face.Attributes, error) {
	if crop.Empty() {
		return face.Attributes{}, fmt.Errorf("empty face crop")
	}

	blob := inference.SquareBlob(crop.NRGBA(), g.inputSize, inference.InsightFace)

	size := int64(g.inputSize)
	outputs, err := g.session.RunFloat([]int64{1, 3, size, size}, blob)
	if err != nil {
		return face.Attributes{}, err
	}
	if len(outputs) == 0 {
		return face.Attributes{}, fmt.Errorf("gender/age model produced no output")
	}

	return decodeGenderAge(outputs[0])
}

// decodeGenderAge reads [male score, female score, age/100]
func decodeGenderAge(out []float32) (face.Attributes, error) {
	if len(out) < 3 {
		return face.Attributes{}, fmt.Errorf("gender/age output has %d values, expected 3", len(out))
	}

	gender := face.GenderFemale
	if out[0] > out[1] {
		gender = face.GenderMale
	}

	age := int(math.Round(float64(out[2]) * 100))
	if age < 0 {
		age = 0
	}

	return face.Attributes{Gender: gender, Age: age}, nil
}

// Close releases classifier resources
func (g *GenderAge) Close() error {
	return g.session.Close()
}
