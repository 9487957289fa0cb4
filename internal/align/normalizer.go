// Package align warps detected faces onto the ArcFace reference layout.
package align

import (
	"fmt"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/dudu/facerec/internal/face"
)

// ArcFaceSize is the side of an aligned face crop
const ArcFaceSize = 112

// ArcFace reference landmarks for 112x112 aligned face
var arcfaceDst = [5]Point{
	{X: 38.2946, Y: 51.6963}, // left eye
	{X: 73.5318, Y: 51.5014}, // right eye
	{X: 56.0252, Y: 71.7366}, // nose
	{X: 41.5493, Y: 92.3655}, // left mouth
	{X: 70.7299, Y: 92.2041}, // right mouth
}

// ArcFaceNormalizer produces 112x112 crops whose five anchors sit on the
// ArcFace reference points. It holds no model and is safe for concurrent
// use.
type ArcFaceNormalizer struct {
	size int
	dst  []Point
}

// NewArcFaceNormalizer creates a normalizer for the standard 112px layout
func NewArcFaceNormalizer() *ArcFaceNormalizer {
	return NewArcFaceNormalizerSize(ArcFaceSize)
}

// NewArcFaceNormalizerSize scales the reference layout to size pixels
func NewArcFaceNormalizerSize(size int) *ArcFaceNormalizer {
	scale := float64(size) / ArcFaceSize
	dst := make([]Point, len(arcfaceDst))
	for i, p := range arcfaceDst {
		dst[i] = Point{X: p.X * scale, Y: p.Y * scale}
	}
	return &ArcFaceNormalizer{size: size, dst: dst}
}

// Normalize aligns one crop per region using its paired landmarks
func (n *ArcFaceNormalizer) Normalize(img face.Image, regions []face.RelRect, landmarks []face.Landmarks) ([]face.Image, error) {
	if len(regions) != len(landmarks) {
		return nil, fmt.Errorf("got %d regions and %d landmark sets", len(regions), len(landmarks))
	}

	out := make([]face.Image, 0, len(regions))
	for i := range regions {
		aligned, err := n.alignOne(img, regions[i], landmarks[i])
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		out = append(out, aligned)
	}

	return out, nil
}

func (n *ArcFaceNormalizer) alignOne(img face.Image, region face.RelRect, lm face.Landmarks) (face.Image, error) {
	if img.Empty() {
		return face.Image{}, fmt.Errorf("empty image")
	}

	pix := img.NRGBA()
	w, h := float64(img.Width()), float64(img.Height())
	ox, oy := float64(pix.Rect.Min.X), float64(pix.Rect.Min.Y)
	anchors := lm.Anchors()

	// Region-relative anchors to absolute pixels
	src := make([]Point, len(anchors))
	for i, a := range anchors {
		src[i] = Point{
			X: ox + (float64(region.X)+float64(a.X)*float64(region.Width))*w,
			Y: oy + (float64(region.Y)+float64(a.Y)*float64(region.Height))*h,
		}
	}

	m, err := estimateSimilarity(src, n.dst)
	if err != nil {
		return face.Image{}, err
	}

	dst := imaging.New(n.size, n.size, color.Black)
	draw.BiLinear.Transform(dst, m, pix, pix.Bounds(), draw.Src, nil)

	return face.WrapNRGBA(dst), nil
}

// Close is a no-op; the normalizer holds no native resources
func (n *ArcFaceNormalizer) Close() error {
	return nil
}
