package face

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelRectIoU(t *testing.T) {
	tests := []struct {
		name     string
		a, b     RelRect
		expected float32
	}{
		{
			name:     "identical rects",
			a:        RelRect{X: 0, Y: 0, Width: 0.5, Height: 0.5},
			b:        RelRect{X: 0, Y: 0, Width: 0.5, Height: 0.5},
			expected: 1,
		},
		{
			name:     "no overlap",
			a:        RelRect{X: 0, Y: 0, Width: 0.1, Height: 0.1},
			b:        RelRect{X: 0.5, Y: 0.5, Width: 0.1, Height: 0.1},
			expected: 0,
		},
		{
			name:     "partial overlap",
			a:        RelRect{X: 0, Y: 0, Width: 0.4, Height: 0.4},
			b:        RelRect{X: 0.2, Y: 0.2, Width: 0.4, Height: 0.4},
			expected: 0.04 / 0.28, // intersection=0.04, union=0.16+0.16-0.04
		},
		{
			name:     "touching edges",
			a:        RelRect{X: 0, Y: 0, Width: 0.5, Height: 0.5},
			b:        RelRect{X: 0.5, Y: 0, Width: 0.5, Height: 0.5},
			expected: 0,
		},
		{
			name:     "zero area",
			a:        RelRect{},
			b:        RelRect{},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.a.IoU(tt.b), 1e-5)
			assert.InDelta(t, tt.expected, tt.b.IoU(tt.a), 1e-5)
		})
	}
}

func TestRelRectFromPixels(t *testing.T) {
	r := RelRectFromPixels(100, 50, 300, 250, 1000, 500)
	assert.InDelta(t, 0.1, r.X, 1e-6)
	assert.InDelta(t, 0.1, r.Y, 1e-6)
	assert.InDelta(t, 0.2, r.Width, 1e-6)
	assert.InDelta(t, 0.4, r.Height, 1e-6)

	assert.Equal(t, RelRect{}, RelRectFromPixels(1, 2, 3, 4, 0, 10))
}

func TestRelRectToPixels(t *testing.T) {
	r := RelRect{X: 0.1, Y: 0.2, Width: 0.5, Height: 0.25}
	assert.Equal(t, image.Rect(64, 96, 384, 216), r.ToPixels(640, 480))
}

func TestRelRectCenter(t *testing.T) {
	r := RelRect{X: 0.2, Y: 0.4, Width: 0.2, Height: 0.4}
	c := r.Center()
	assert.InDelta(t, 0.3, c.X, 1e-6)
	assert.InDelta(t, 0.6, c.Y, 1e-6)
	assert.InDelta(t, 0.08, r.Area(), 1e-6)
}

func TestLandmarksAnchorsOrder(t *testing.T) {
	l := Landmarks{
		LeftEye:    RelPoint{X: 1},
		RightEye:   RelPoint{X: 2},
		CenterNose: RelPoint{X: 3},
		LeftMouth:  RelPoint{X: 4},
		RightMouth: RelPoint{X: 5},
	}
	a := l.Anchors()
	for i := range a {
		assert.Equal(t, float32(i+1), a[i].X)
	}
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "male", GenderMale.String())
	assert.Equal(t, "female", GenderFemale.String())
	assert.Equal(t, "unknown", Gender(42).String())
	assert.Equal(t, "mask", MaskPresent.String())
	assert.Equal(t, "no_mask", MaskAbsent.String())
	assert.Equal(t, "uncertain", MaskUnknown.String())
}
