//go:build gocv
// +build gocv

package imageio

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"github.com/dudu/facerec/internal/face"
)

// OpenCVEnabled reports whether the binary was built with the gocv tag
const OpenCVEnabled = true

var annotationColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

// FromMat converts a BGR matrix into a pipeline image
func FromMat(m gocv.Mat) (face.Image, error) {
	if m.Empty() {
		return face.Image{}, fmt.Errorf("empty frame")
	}
	img, err := m.ToImage()
	if err != nil {
		return face.Image{}, fmt.Errorf("failed to convert frame: %w", err)
	}
	return face.NewImage(img), nil
}

// Annotate draws labeled boxes onto a copy of img and writes it to path
func Annotate(img face.Image, labels []Label, path string) error {
	if img.Empty() {
		return fmt.Errorf("empty image")
	}

	mat, err := gocv.ImageToMatRGB(img.NRGBA())
	if err != nil {
		return fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	for _, l := range labels {
		rect := l.Region.ToPixels(img.Width(), img.Height())
		gocv.Rectangle(&mat, rect, annotationColor, 2)
		gocv.PutText(&mat, l.Text, image.Pt(rect.Min.X, max(rect.Min.Y-6, 12)),
			gocv.FontHersheyPlain, 1.2, annotationColor, 1)
	}

	if !gocv.IMWrite(path, mat) {
		return fmt.Errorf("failed to write %s", path)
	}
	return nil
}

// Camera reads frames from a capture device
type Camera struct {
	webcam   *gocv.VideoCapture
	deviceID int
	width    int
	height   int
	frame    gocv.Mat
	mu       sync.Mutex
}

// OpenCamera opens a capture device with the requested resolution
func OpenCamera(deviceID, width, height int) (*Camera, error) {
	webcam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", deviceID, err)
	}

	// Set camera properties
	webcam.Set(gocv.VideoCaptureFrameWidth, float64(width))
	webcam.Set(gocv.VideoCaptureFrameHeight, float64(height))

	// Get actual dimensions (camera may not support requested resolution)
	return &Camera{
		webcam:   webcam,
		deviceID: deviceID,
		width:    int(webcam.Get(gocv.VideoCaptureFrameWidth)),
		height:   int(webcam.Get(gocv.VideoCaptureFrameHeight)),
		frame:    gocv.NewMat(),
	}, nil
}

// Read captures the next frame
func (c *Camera) Read() (face.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.webcam == nil {
		return face.Image{}, fmt.Errorf("camera %d is closed", c.deviceID)
	}
	if !c.webcam.Read(&c.frame) {
		return face.Image{}, fmt.Errorf("camera %d: no frame", c.deviceID)
	}
	return FromMat(c.frame)
}

// Size returns the negotiated frame size
func (c *Camera) Size() (int, int) {
	return c.width, c.height
}

// Close releases the camera
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.webcam == nil {
		return nil
	}
	err := c.webcam.Close()
	c.webcam = nil
	c.frame.Close()
	return err
}
