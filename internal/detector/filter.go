package detector

import "github.com/dudu/facerec/internal/face"

// GeometryFilter drops regions that cannot hold a usable face: too small,
// too elongated, or reaching outside the image.
type GeometryFilter struct {
	// MinSize is the smallest accepted width and height, relative to the image.
	MinSize float32
	// MinAspect and MaxAspect bound the width/height ratio in pixels.
	MinAspect float32
	MaxAspect float32
}

// DefaultGeometryFilter returns the filter used by default model sets
func DefaultGeometryFilter() *GeometryFilter {
	return &GeometryFilter{
		MinSize:   0.02,
		MinAspect: 0.5,
		MaxAspect: 2.0,
	}
}

const boundsTolerance = 1e-4

// Filter keeps the acceptable regions in their original order
func (f *GeometryFilter) Filter(img face.Image, regions []face.RelRect) ([]face.RelRect, error) {
	out := make([]face.RelRect, 0, len(regions))
	if img.Empty() {
		return out, nil
	}

	imgAspect := float32(img.Width()) / float32(img.Height())
	for _, r := range regions {
		if r.Width < f.MinSize || r.Height < f.MinSize || r.Height <= 0 {
			continue
		}

		aspect := r.Width / r.Height * imgAspect
		if f.MinAspect > 0 && aspect < f.MinAspect {
			continue
		}
		if f.MaxAspect > 0 && aspect > f.MaxAspect {
			continue
		}

		if r.X < -boundsTolerance || r.Y < -boundsTolerance ||
			r.Right() > 1+boundsTolerance || r.Bottom() > 1+boundsTolerance {
			continue
		}

		out = append(out, r)
	}

	return out, nil
}

// Close is a no-op; the filter holds no native resources
func (f *GeometryFilter) Close() error {
	return nil
}
