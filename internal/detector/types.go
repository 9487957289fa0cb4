package detector

import "github.com/dudu/facerec/internal/face"

// Point represents a 2D point in pixels
type Point struct {
	X, Y float32
}

// BoundingBox represents a face bounding box in pixels
type BoundingBox struct {
	X1, Y1 float32 // top-left
	X2, Y2 float32 // bottom-right
}

// Width returns box width
func (b BoundingBox) Width() float32 {
	return b.X2 - b.X1
}

// Height returns box height
func (b BoundingBox) Height() float32 {
	return b.Y2 - b.Y1
}

// Center returns box center point
func (b BoundingBox) Center() Point {
	return Point{
		X: (b.X1 + b.X2) / 2,
		Y: (b.Y1 + b.Y2) / 2,
	}
}

// Area returns box area
func (b BoundingBox) Area() float32 {
	return b.Width() * b.Height()
}

// Clip limits the box to a width x height image
func (b BoundingBox) Clip(width, height int) BoundingBox {
	return BoundingBox{
		X1: clamp(b.X1, 0, float32(width)),
		Y1: clamp(b.Y1, 0, float32(height)),
		X2: clamp(b.X2, 0, float32(width)),
		Y2: clamp(b.Y2, 0, float32(height)),
	}
}

// Relative converts the box to coordinates relative to a width x height image
func (b BoundingBox) Relative(width, height int) face.RelRect {
	return face.RelRectFromPixels(b.X1, b.Y1, b.X2, b.Y2, width, height)
}

// Detection is a scored candidate box
type Detection struct {
	Box   BoundingBox
	Score float32
}

// Landmarks106 represents 106 facial landmark points from insightface
type Landmarks106 [106]Point

// FivePoint reduces 106-point landmarks to the five alignment anchors in
// ArcFace order: eyes, nose tip, mouth corners. Left and right are image
// sides.
func (l *Landmarks106) FivePoint() [5]Point {
	// Indices 33-42 and 87-96 are the two eye regions (10 points each)
	eye1 := l.mean(33, 42)
	eye2 := l.mean(87, 96)
	if eye2.X < eye1.X {
		eye1, eye2 = eye2, eye1
	}

	// Mouth corners
	mouth1, mouth2 := l[52], l[61]
	if mouth2.X < mouth1.X {
		mouth1, mouth2 = mouth2, mouth1
	}

	return [5]Point{eye1, eye2, l[86], mouth1, mouth2}
}

func (l *Landmarks106) mean(from, to int) Point {
	var p Point
	for i := from; i <= to; i++ {
		p.X += l[i].X
		p.Y += l[i].Y
	}
	n := float32(to - from + 1)
	return Point{X: p.X / n, Y: p.Y / n}
}

// BoundingBox computes tight bounding box around all 106 points
func (l *Landmarks106) BoundingBox() BoundingBox {
	minX, minY := l[0].X, l[0].Y
	maxX, maxY := l[0].X, l[0].Y
	for i := 1; i < len(l); i++ {
		minX = min(minX, l[i].X)
		maxX = max(maxX, l[i].X)
		minY = min(minY, l[i].Y)
		maxY = max(maxY, l[i].Y)
	}
	return BoundingBox{X1: minX, Y1: minY, X2: maxX, Y2: maxY}
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
