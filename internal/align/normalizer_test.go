package align

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f64"

	"github.com/dudu/facerec/internal/face"
)

func apply(m f64.Aff3, p Point) Point {
	return Point{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

func TestEstimateSimilarity_RecoversKnownTransform(t *testing.T) {
	tests := []struct {
		name   string
		angle  float64
		scale  float64
		tx, ty float64
	}{
		{"identity", 0, 1, 0, 0},
		{"translation", 0, 1, 12, -7},
		{"scale", 0, 2.5, 0, 0},
		{"rotation 90", math.Pi / 2, 1, 0, 0},
		{"rotation -30 scaled", -math.Pi / 6, 0.4, 3, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, s := math.Cos(tt.angle)*tt.scale, math.Sin(tt.angle)*tt.scale
			src := arcfaceDst[:]
			dst := make([]Point, len(src))
			for i, p := range src {
				dst[i] = Point{X: c*p.X - s*p.Y + tt.tx, Y: s*p.X + c*p.Y + tt.ty}
			}

			m, err := estimateSimilarity(src, dst)
			require.NoError(t, err)

			expected := [6]float64{c, -s, tt.tx, s, c, tt.ty}
			for i := range expected {
				assert.InDelta(t, expected[i], m[i], 1e-9, "element %d", i)
			}
			for i, p := range src {
				got := apply(m, p)
				assert.InDelta(t, dst[i].X, got.X, 1e-9)
				assert.InDelta(t, dst[i].Y, got.Y, 1e-9)
			}
		})
	}
}

func TestEstimateSimilarity_Degenerate(t *testing.T) {
	same := []Point{{1, 1}, {1, 1}, {1, 1}}
	_, err := estimateSimilarity(same, arcfaceDst[:3])
	assert.ErrorIs(t, err, errDegenerate)

	_, err = estimateSimilarity(arcfaceDst[:2], arcfaceDst[:3])
	assert.ErrorIs(t, err, errDegenerate)

	_, err = estimateSimilarity(nil, nil)
	assert.ErrorIs(t, err, errDegenerate)
}

// splitImage is red on the left half and blue on the right half
func splitImage(size int) face.Image {
	img := imaging.New(size, size, color.NRGBA{B: 255, A: 255})
	for y := 0; y < size; y++ {
		for x := 0; x < size/2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	return face.WrapNRGBA(img)
}

// referenceLandmarks places the anchors on the reference layout of a
// full-image region.
func referenceLandmarks() face.Landmarks {
	rel := func(p Point) face.RelPoint {
		return face.RelPoint{X: float32(p.X / ArcFaceSize), Y: float32(p.Y / ArcFaceSize)}
	}
	return face.Landmarks{
		LeftEye:    rel(arcfaceDst[0]),
		RightEye:   rel(arcfaceDst[1]),
		CenterNose: rel(arcfaceDst[2]),
		LeftMouth:  rel(arcfaceDst[3]),
		RightMouth: rel(arcfaceDst[4]),
	}
}

func TestArcFaceNormalizer_Normalize(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	full := face.RelRect{Width: 1, Height: 1}
	n := NewArcFaceNormalizer()

	for _, size := range []int{112, 224} {
		crops, err := n.Normalize(splitImage(size), []face.RelRect{full}, []face.Landmarks{referenceLandmarks()})
		require.NoError(t, err)
		require.Len(t, crops, 1)

		pix := crops[0].NRGBA()
		require.Equal(t, image.Rect(0, 0, ArcFaceSize, ArcFaceSize), pix.Bounds())
		assert.Equal(t, red, pix.NRGBAAt(20, 56), "size %d", size)
		assert.Equal(t, blue, pix.NRGBAAt(90, 56), "size %d", size)
	}
}

func TestArcFaceNormalizer_RegionRelativeLandmarks(t *testing.T) {
	// The face occupies the right half of a 224x112 image
	img := imaging.New(224, 112, color.NRGBA{G: 255, A: 255})
	for y := 0; y < 112; y++ {
		for x := 112; x < 168; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	region := face.RelRect{X: 0.5, Width: 0.5, Height: 1}

	crops, err := NewArcFaceNormalizer().Normalize(face.WrapNRGBA(img), []face.RelRect{region}, []face.Landmarks{referenceLandmarks()})
	require.NoError(t, err)

	pix := crops[0].NRGBA()
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, pix.NRGBAAt(20, 56))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, pix.NRGBAAt(90, 56))
}

func TestArcFaceNormalizer_PreservesOrder(t *testing.T) {
	regions := []face.RelRect{{Width: 1, Height: 1}, {Width: 1, Height: 1}}
	lms := []face.Landmarks{referenceLandmarks(), referenceLandmarks()}

	crops, err := NewArcFaceNormalizerSize(56).Normalize(splitImage(112), regions, lms)
	require.NoError(t, err)
	require.Len(t, crops, 2)
	assert.Equal(t, 56, crops[1].Width())
}

func TestArcFaceNormalizer_Errors(t *testing.T) {
	n := NewArcFaceNormalizer()
	full := face.RelRect{Width: 1, Height: 1}

	_, err := n.Normalize(splitImage(112), []face.RelRect{full}, nil)
	assert.Error(t, err)

	_, err = n.Normalize(splitImage(112), []face.RelRect{full}, []face.Landmarks{{}})
	assert.ErrorIs(t, err, errDegenerate)
	assert.Contains(t, err.Error(), "face 0")

	_, err = n.Normalize(face.Image{}, []face.RelRect{full}, []face.Landmarks{referenceLandmarks()})
	assert.Error(t, err)

	crops, err := n.Normalize(splitImage(112), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, crops)

	assert.NoError(t, n.Close())
}
