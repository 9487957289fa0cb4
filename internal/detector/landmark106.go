package detector

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/dudu/facerec/internal/face"
	"github.com/dudu/facerec/internal/inference"
)

// Landmark106 detects 106 facial landmarks using insightface's 2d106det model
type Landmark106 struct {
	session   *inference.Session
	inputSize int
	norm      inference.Normalization
}

const landmarkValues = 106 * 2

// NewLandmark106 creates a new 106-point landmark detector from model bytes
func NewLandmark106(model []byte, opts inference.Options) (*Landmark106, error) {
	session, err := inference.NewSession("landmark106", model, nil, nil, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create landmark session: %w", err)
	}

	l := newLandmark106()
	l.session = session
	return l, nil
}

func newLandmark106() *Landmark106 {
	return &Landmark106{
		inputSize: 192,
		norm:      inference.InsightFace,
	}
}

// Detect extracts landmarks for each region. Points are relative to their
// region; output order matches regions.
func (l *Landmark106) Detect(img face.Image, regions []face.RelRect) ([]face.Landmarks, error) {
	out := make([]face.Landmarks, 0, len(regions))
	w, h := float32(img.Width()), float32(img.Height())

	for i, r := range regions {
		box := BoundingBox{X1: r.X * w, Y1: r.Y * h, X2: r.Right() * w, Y2: r.Bottom() * h}
		points, err := l.detectOne(img.NRGBA(), box)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", i, err)
		}
		out = append(out, toRegion(&points, box))
	}

	return out, nil
}

func (l *Landmark106) detectOne(img *image.NRGBA, box BoundingBox) (Landmarks106, error) {
	if img == nil || box.Width() <= 0 || box.Height() <= 0 {
		return Landmarks106{}, fmt.Errorf("empty face region")
	}

	// Crop parameters (1.5x expansion like insightface)
	center := box.Center()
	scale := float32(l.inputSize) / (max(box.Width(), box.Height()) * 1.5)

	crop := l.crop(img, center, scale)
	blob := inference.Blob(crop, l.norm)

	size := int64(l.inputSize)
	outputs, err := l.session.RunFloat([]int64{1, 3, size, size}, blob)
	if err != nil {
		return Landmarks106{}, err
	}
	if len(outputs) == 0 || len(outputs[0]) < landmarkValues {
		return Landmarks106{}, fmt.Errorf("landmark output too short")
	}

	return l.postprocess(outputs[0], center, scale), nil
}

// crop warps the face into an inputSize square centered on center
func (l *Landmark106) crop(img *image.NRGBA, center Point, scale float32) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, l.inputSize, l.inputSize))
	half := float64(l.inputSize) / 2
	s := float64(scale)

	// No rotation, just scale and translate
	m := f64.Aff3{
		s, 0, half - float64(center.X)*s,
		0, s, half - float64(center.Y)*s,
	}
	draw.BiLinear.Transform(dst, m, img, img.Bounds(), draw.Src, nil)
	return dst
}

// postprocess transforms model output to source image coordinates
func (l *Landmark106) postprocess(output []float32, center Point, scale float32) Landmarks106 {
	var landmarks Landmarks106

	halfSize := float32(l.inputSize) / 2

	for i := range landmarks {
		// Model output is in range [-1, 1], transform to [0, inputSize]
		x := (output[i*2] + 1) * halfSize
		y := (output[i*2+1] + 1) * halfSize

		landmarks[i] = Point{
			X: (x-halfSize)/scale + center.X,
			Y: (y-halfSize)/scale + center.Y,
		}
	}

	return landmarks
}

// toRegion expresses pixel landmarks relative to box
func toRegion(l *Landmarks106, box BoundingBox) face.Landmarks {
	rel := func(p Point) face.RelPoint {
		return face.RelPoint{
			X: (p.X - box.X1) / box.Width(),
			Y: (p.Y - box.Y1) / box.Height(),
		}
	}

	points := make([]face.RelPoint, len(l))
	for i, p := range l {
		points[i] = rel(p)
	}

	five := l.FivePoint()
	return face.Landmarks{
		Points:     points,
		LeftEye:    rel(five[0]),
		RightEye:   rel(five[1]),
		CenterNose: rel(five[2]),
		LeftMouth:  rel(five[3]),
		RightMouth: rel(five[4]),
	}
}

// Close releases detector resources
func (l *Landmark106) Close() error {
	if l.session == nil {
		return nil
	}
	return l.session.Close()
}
