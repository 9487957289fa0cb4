//go:build !gocv
// +build !gocv

package imageio

import "github.com/dudu/facerec/internal/face"

// OpenCVEnabled reports whether the binary was built with the gocv tag
const OpenCVEnabled = false

// Annotate returns an error if the build lacks the gocv tag.
func Annotate(_ face.Image, _ []Label, _ string) error {
	return ErrOpenCVDisabled
}

// Camera is unavailable without the gocv tag
type Camera struct{}

// OpenCamera returns an error if the build lacks the gocv tag.
func OpenCamera(_, _, _ int) (*Camera, error) {
	return nil, ErrOpenCVDisabled
}

// Read returns an error if the build lacks the gocv tag.
func (c *Camera) Read() (face.Image, error) {
	return face.Image{}, ErrOpenCVDisabled
}

// Size returns zero without the gocv tag.
func (c *Camera) Size() (int, int) {
	return 0, 0
}

// Close is a no-op without the gocv tag.
func (c *Camera) Close() error {
	return nil
}
