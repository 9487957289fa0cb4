// Package matching compares face indexes under version-compatibility rules.
package matching

import (
	"fmt"
	"math"

	"github.com/dudu/facerec/internal/face"
)

// IndexComparer scores two face indexes of its declared IndexType.
// Implementations must be safe for concurrent use.
type IndexComparer interface {
	IndexType() string
	Compare(a, b face.FaceIndex) (float32, error)
}

// IndexTypeArcFace50 tags embeddings produced by the ArcFace-50 indexer
const IndexTypeArcFace50 = "arc50_1"

// ArcFaceComparer scores ArcFace embeddings by cosine similarity in [-1, 1].
// The metric is symmetric.
type ArcFaceComparer struct{}

// IndexType returns the tag this comparer accepts
func (ArcFaceComparer) IndexType() string {
	return IndexTypeArcFace50
}

// Compare returns the cosine similarity of a and b. A zero vector scores -1.
func (ArcFaceComparer) Compare(a, b face.FaceIndex) (float32, error) {
	return CosineSimilarity(a, b)
}

// CosineSimilarity computes the cosine similarity of two equally sized
// vectors, accumulating in float64 and clamping to [-1, 1].
func CosineSimilarity(a, b face.FaceIndex) (float32, error) {
	if a.Len() != b.Len() {
		return 0, fmt.Errorf("%w: dimensions %d and %d differ", ErrMalformedIndex, a.Len(), b.Len())
	}
	if a.Len() == 0 {
		return 0, fmt.Errorf("%w: empty vector", ErrMalformedIndex)
	}

	var dot, normA, normB float64
	for i := 0; i < a.Len(); i++ {
		x, y := float64(a.At(i)), float64(b.At(i))
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return -1, nil
	}

	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp to [-1, 1] to handle floating point errors
	if similarity > 1 {
		similarity = 1
	}
	if similarity < -1 {
		similarity = -1
	}

	return float32(similarity), nil
}
