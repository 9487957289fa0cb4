// Package encoder turns aligned face crops into identity embeddings.
package encoder

import (
	"fmt"
	"math"

	"github.com/dudu/facerec/internal/face"
	"github.com/dudu/facerec/internal/inference"
	"github.com/dudu/facerec/internal/matching"
)

// ArcFace50 extracts face embeddings using the ArcFace ResNet-50 model.
// Embeddings are L2-normalized and tagged arc50_1.
type ArcFace50 struct {
	session   *inference.Session
	inputSize int
}

// NewArcFace50 creates a new ArcFace indexer from model bytes
func NewArcFace50(model []byte, opts inference.Options) (*ArcFace50, error) {
	// ArcFace has 1 input and 1 output
	session, err := inference.NewSession("arcface50", model, nil, nil, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create ArcFace session: %w", err)
	}

	return &ArcFace50{
		session:   session,
		inputSize: 112,
	}, nil
}

// IndexType returns the version tag of produced indexes
func (e *ArcFace50) IndexType() string {
	return matching.IndexTypeArcFace50
}

// Index computes the embedding of an aligned face. Crops other than 112x112
// are letterboxed first.
func (e *ArcFace50) Index(crop face.Image) (face.FaceIndex, error) {
	if crop.Empty() {
		return face.FaceIndex{}, fmt.Errorf("empty face crop")
	}

	blob := inference.SquareBlob(crop.NRGBA(), e.inputSize, inference.InsightFace)

	size := int64(e.inputSize)
	outputs, err := e.session.RunFloat([]int64{1, 3, size, size}, blob)
	if err != nil {
		return face.FaceIndex{}, err
	}
	if len(outputs) == 0 || len(outputs[0]) == 0 {
		return face.FaceIndex{}, fmt.Errorf("ArcFace produced no embedding")
	}

	return face.NewFaceIndex(e.IndexType(), normalizeEmbedding(outputs[0])), nil
}

// Close releases encoder resources
func (e *ArcFace50) Close() error {
	return e.session.Close()
}

// normalizeEmbedding L2-normalizes the embedding in place
func normalizeEmbedding(data []float32) []float32 {
	// Compute L2 norm
	var norm float64
	for _, v := range data {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)

	if norm < 1e-10 {
		return data
	}

	for i := range data {
		data[i] = float32(float64(data[i]) / norm)
	}

	return data
}
