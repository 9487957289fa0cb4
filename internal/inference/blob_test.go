package inference

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLetterbox(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}

	tests := []struct {
		name          string
		width, height int
		expectedScale float32
		filled        image.Point
		padding       image.Point
	}{
		{"landscape", 200, 100, 0.32, image.Pt(10, 10), image.Pt(10, 40)},
		{"portrait", 100, 200, 0.32, image.Pt(10, 10), image.Pt(40, 10)},
		{"square", 128, 128, 0.5, image.Pt(63, 63), image.Pt(-1, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := imaging.New(tt.width, tt.height, red)
			out, scale := Letterbox(src, 64)

			require.Equal(t, image.Rect(0, 0, 64, 64), out.Bounds())
			assert.InDelta(t, tt.expectedScale, scale, 1e-6)
			assert.Equal(t, red, out.NRGBAAt(tt.filled.X, tt.filled.Y))
			if tt.padding.X >= 0 {
				assert.Equal(t, color.NRGBA{A: 255}, out.NRGBAAt(tt.padding.X, tt.padding.Y))
			}
		})
	}
}

func TestLetterbox_EmptyImage(t *testing.T) {
	out, scale := Letterbox(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 32)
	assert.Equal(t, float32(0), scale)
	assert.Equal(t, 32, out.Bounds().Dx())
}

func TestBlob(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 127, B: 0, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 128, B: 255, A: 255})

	blob := Blob(img, Normalization{Mean: 127.5, Std: 128})
	require.Len(t, blob, 6)

	expected := []float32{
		(255 - 127.5) / 128, (0 - 127.5) / 128, // R plane
		(127 - 127.5) / 128, (128 - 127.5) / 128, // G plane
		(0 - 127.5) / 128, (255 - 127.5) / 128, // B plane
	}
	for i := range expected {
		assert.InDelta(t, expected[i], blob[i], 1e-6, "element %d", i)
	}
}

func TestBlob_SubImage(t *testing.T) {
	img := imaging.New(4, 4, color.NRGBA{A: 255})
	img.SetNRGBA(2, 2, color.NRGBA{R: 255, A: 255})
	sub := img.SubImage(image.Rect(2, 2, 4, 4)).(*image.NRGBA)

	blob := Blob(sub, Normalization{Mean: 0, Std: 255})
	require.Len(t, blob, 12)
	assert.Equal(t, float32(1), blob[0])
	assert.Equal(t, float32(0), blob[1])
}

func TestSquareBlob(t *testing.T) {
	green := imaging.New(8, 8, color.NRGBA{G: 255, A: 255})
	blob := SquareBlob(green, 8, Normalization{Mean: 0, Std: 255})
	require.Len(t, blob, 3*8*8)
	assert.InDelta(t, 1, blob[64], 1e-6)
	assert.InDelta(t, 0, blob[0], 1e-6)

	// 8x16 is letterboxed: left half green, right half padding
	tall := imaging.New(8, 16, color.NRGBA{G: 255, A: 255})
	blob = SquareBlob(tall, 8, Normalization{Mean: 0, Std: 255})
	require.Len(t, blob, 3*8*8)
	assert.InDelta(t, 1, blob[64+0], 1e-6)
	assert.InDelta(t, 0, blob[64+7], 1e-6)
}

func TestNewSession_RequiresInitialize(t *testing.T) {
	_, err := NewSession("detector", []byte{1}, nil, nil, Options{})
	assert.ErrorIs(t, err, ErrNotInitialized)
}
