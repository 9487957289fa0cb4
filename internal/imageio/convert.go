package imageio

import (
	"errors"
	"image"

	"github.com/dudu/facerec/internal/face"
)

// ErrOpenCVDisabled is returned by OpenCV-backed features in default builds
var ErrOpenCVDisabled = errors.New("gocv build tag is not enabled")

// toFaceImage adopts NRGBA images at the origin and copies anything else
func toFaceImage(img image.Image) face.Image {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return face.WrapNRGBA(n)
	}
	return face.NewImage(img)
}

// Label is a caption drawn next to an annotated region
type Label struct {
	Region face.RelRect
	Text   string
}
