package inference

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Normalization is the per-channel (v - Mean) / Std applied when building
// an input blob.
type Normalization struct {
	Mean float32
	Std  float32
}

// InsightFace is the normalization shared by the detector, indexer and
// attribute models.
var InsightFace = Normalization{Mean: 127.5, Std: 128}

// Letterbox resizes img to fit inside a size x size square keeping its
// aspect ratio and pads the bottom/right with black. It returns the padded
// image and the scale from source pixels to padded pixels.
func Letterbox(img image.Image, size int) (*image.NRGBA, float32) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return imaging.New(size, size, color.Black), 0
	}

	imRatio := float32(b.Dy()) / float32(b.Dx())

	var newWidth, newHeight int
	var scale float32
	if imRatio > 1 {
		newHeight = size
		newWidth = max(int(float32(newHeight)/imRatio), 1)
		scale = float32(newWidth) / float32(b.Dx())
	} else {
		newWidth = size
		newHeight = max(int(float32(newWidth)*imRatio), 1)
		scale = float32(newHeight) / float32(b.Dy())
	}

	resized := imaging.Resize(img, newWidth, newHeight, imaging.Linear)
	padded := imaging.New(size, size, color.Black)
	return imaging.Paste(padded, resized, image.Pt(0, 0)), scale
}

// Blob converts img to a planar RGB float32 buffer (CHW) of its own size
func Blob(img *image.NRGBA, norm Normalization) []float32 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	plane := w * h
	out := make([]float32, 3*plane)

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+3]
			i := y*w + x
			out[i] = (float32(p[0]) - norm.Mean) / norm.Std
			out[plane+i] = (float32(p[1]) - norm.Mean) / norm.Std
			out[2*plane+i] = (float32(p[2]) - norm.Mean) / norm.Std
		}
	}

	return out
}

// SquareBlob returns the blob of img fitted into a size x size square,
// letterboxing when img has another size.
func SquareBlob(img *image.NRGBA, size int, norm Normalization) []float32 {
	if img.Rect.Dx() != size || img.Rect.Dy() != size {
		img, _ = Letterbox(img, size)
	}
	return Blob(img, norm)
}
