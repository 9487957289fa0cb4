// Package face holds the value types shared by the processing pipeline and
// the matching engine.
package face

import (
	"image"
	"math"
)

// RelPoint is a point in coordinates relative to some bounds (an image or a
// region). Values are not clamped.
type RelPoint struct {
	X, Y float32
}

// RelRect is a rectangle relative to image bounds, top-left origin.
type RelRect struct {
	X, Y          float32
	Width, Height float32
}

// RelRectFromPixels converts a pixel box [x1, y1, x2, y2] into a RelRect.
// It returns the zero rect for an empty image.
func RelRectFromPixels(x1, y1, x2, y2 float32, width, height int) RelRect {
	if width <= 0 || height <= 0 {
		return RelRect{}
	}
	w, h := float32(width), float32(height)
	return RelRect{
		X:      x1 / w,
		Y:      y1 / h,
		Width:  (x2 - x1) / w,
		Height: (y2 - y1) / h,
	}
}

// Right returns the x coordinate of the right edge
func (r RelRect) Right() float32 {
	return r.X + r.Width
}

// Bottom returns the y coordinate of the bottom edge
func (r RelRect) Bottom() float32 {
	return r.Y + r.Height
}

// Center returns rect center point
func (r RelRect) Center() RelPoint {
	return RelPoint{
		X: r.X + r.Width/2,
		Y: r.Y + r.Height/2,
	}
}

// Area returns rect area
func (r RelRect) Area() float32 {
	return r.Width * r.Height
}

// IoU calculates Intersection over Union of two rects.
func (r RelRect) IoU(o RelRect) float32 {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.Right(), o.Right())
	y2 := min(r.Bottom(), o.Bottom())

	if x1 >= x2 || y1 >= y2 {
		return 0
	}

	intersection := (x2 - x1) * (y2 - y1)
	union := r.Area() + o.Area() - intersection
	if union <= 0 {
		return 0
	}

	return intersection / union
}

// ToPixels maps the rect onto an image of the given size. The result is not
// clipped to the image bounds.
func (r RelRect) ToPixels(width, height int) image.Rectangle {
	w, h := float64(width), float64(height)
	x0 := int(math.Round(float64(r.X) * w))
	y0 := int(math.Round(float64(r.Y) * h))
	x1 := int(math.Round(float64(r.Right()) * w))
	y1 := int(math.Round(float64(r.Bottom()) * h))
	return image.Rect(x0, y0, x1, y1)
}

// Landmarks is the set of anchor points computed for one region. All
// coordinates are relative to that region.
type Landmarks struct {
	Points     []RelPoint
	LeftEye    RelPoint
	RightEye   RelPoint
	CenterNose RelPoint
	LeftMouth  RelPoint
	RightMouth RelPoint
}

// Anchors returns the five named points in ArcFace order: left eye, right
// eye, nose, left mouth corner, right mouth corner.
func (l Landmarks) Anchors() [5]RelPoint {
	return [5]RelPoint{l.LeftEye, l.RightEye, l.CenterNose, l.LeftMouth, l.RightMouth}
}

// Gender is the categorical output of a gender/age classifier.
type Gender int

const (
	GenderUnknown Gender = iota
	GenderMale
	GenderFemale
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "unknown"
	}
}

// MaskStatus is the output of a mask classifier. MaskUnknown is used when
// the classifier is not confident either way.
type MaskStatus int

const (
	MaskUnknown MaskStatus = iota
	MaskAbsent
	MaskPresent
)

func (m MaskStatus) String() string {
	switch m {
	case MaskAbsent:
		return "no_mask"
	case MaskPresent:
		return "mask"
	default:
		return "uncertain"
	}
}

// Attributes bundles gender and age estimate for one face.
type Attributes struct {
	Gender Gender
	Age    int
}

// Info is the pipeline output for one aligned face.
type Info struct {
	FaceImage Image
	Index     FaceIndex
	Mask      MaskStatus
	Gender    Gender
	Age       int
}
