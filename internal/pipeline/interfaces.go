package pipeline

import (
	"github.com/dudu/facerec/internal/face"
)

// Every capability below is shared by all GetFaces calls of a processor, so
// implementations must be safe for concurrent use. Close releases the
// underlying model resources and is called exactly once by the ModelSet.

// FaceDetector finds candidate face regions in an image
type FaceDetector interface {
	Detect(img face.Image) ([]face.RelRect, error)
	Close() error
}

// FaceFilter rejects implausible detections. It never adds regions and
// keeps the order of the ones it returns.
type FaceFilter interface {
	Filter(img face.Image, regions []face.RelRect) ([]face.RelRect, error)
	Close() error
}

// LandmarkDetector computes one Landmarks per region, in region order
type LandmarkDetector interface {
	Detect(img face.Image, regions []face.RelRect) ([]face.Landmarks, error)
	Close() error
}

// FaceNormalizer produces one aligned crop per (region, landmarks) pair
type FaceNormalizer interface {
	Normalize(img face.Image, regions []face.RelRect, landmarks []face.Landmarks) ([]face.Image, error)
	Close() error
}

// FaceIndexer extracts identity embeddings from aligned crops. IndexType is
// the version tag stamped on every FaceIndex it produces.
type FaceIndexer interface {
	Index(alignedFace face.Image) (face.FaceIndex, error)
	IndexType() string
	Close() error
}

// GenderAgeClassifier estimates gender and age from an aligned crop
type GenderAgeClassifier interface {
	Classify(alignedFace face.Image) (face.Attributes, error)
	Close() error
}

// MaskClassifier decides whether an aligned face wears a mask
type MaskClassifier interface {
	Classify(alignedFace face.Image) (face.MaskStatus, error)
	Close() error
}
