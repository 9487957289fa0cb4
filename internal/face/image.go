package face

import (
	"image"

	"github.com/disintegration/imaging"
)

// Image is a decoded raster owned by whoever created it. Pipeline stages
// treat it as read-only.
type Image struct {
	pix *image.NRGBA
}

// NewImage copies src into a new Image so later changes to src are not
// observed.
func NewImage(src image.Image) Image {
	if src == nil {
		return Image{}
	}
	return Image{pix: imaging.Clone(src)}
}

// WrapNRGBA adopts pix without copying. The caller must not modify pix
// afterwards.
func WrapNRGBA(pix *image.NRGBA) Image {
	return Image{pix: pix}
}

// Width returns image width in pixels
func (i Image) Width() int {
	if i.pix == nil {
		return 0
	}
	return i.pix.Rect.Dx()
}

// Height returns image height in pixels
func (i Image) Height() int {
	if i.pix == nil {
		return 0
	}
	return i.pix.Rect.Dy()
}

// Empty reports whether the image holds no pixels.
func (i Image) Empty() bool {
	return i.Width() == 0 || i.Height() == 0
}

// NRGBA exposes the pixel buffer for read-only use.
func (i Image) NRGBA() *image.NRGBA {
	return i.pix
}
