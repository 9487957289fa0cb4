package align

import (
	"errors"
	"math"

	"golang.org/x/image/math/f64"
)

// Point is a 2D point in pixels
type Point struct {
	X, Y float64
}

var errDegenerate = errors.New("landmarks are degenerate")

// estimateSimilarity computes the least-squares 2D similarity transform
// (rotation, uniform scale, translation) mapping src onto dst (Umeyama,
// without reflection). The result maps source pixels to destination pixels.
func estimateSimilarity(src, dst []Point) (f64.Aff3, error) {
	n := len(src)
	if n == 0 || n != len(dst) {
		return f64.Aff3{}, errDegenerate
	}

	// Compute centroids
	var srcC, dstC Point
	for i := 0; i < n; i++ {
		srcC.X += src[i].X
		srcC.Y += src[i].Y
		dstC.X += dst[i].X
		dstC.Y += dst[i].Y
	}
	srcC.X /= float64(n)
	srcC.Y /= float64(n)
	dstC.X /= float64(n)
	dstC.Y /= float64(n)

	// Cross-covariance of the centered points
	var srcVar, a11, a12, a21, a22 float64
	for i := 0; i < n; i++ {
		sx, sy := src[i].X-srcC.X, src[i].Y-srcC.Y
		dx, dy := dst[i].X-dstC.X, dst[i].Y-dstC.Y

		srcVar += sx*sx + sy*sy
		a11 += sx * dx
		a12 += sx * dy
		a21 += sy * dx
		a22 += sy * dy
	}

	// cos(θ) ∝ a11 + a22, sin(θ) ∝ a12 - a21
	norm := math.Hypot(a11+a22, a12-a21)
	if srcVar < 1e-12 || norm < 1e-12 {
		return f64.Aff3{}, errDegenerate
	}

	cosTheta := (a11 + a22) / norm
	sinTheta := (a12 - a21) / norm
	scale := norm / srcVar

	// Translation: dstC - scale * R * srcC
	tx := dstC.X - scale*(cosTheta*srcC.X-sinTheta*srcC.Y)
	ty := dstC.Y - scale*(sinTheta*srcC.X+cosTheta*srcC.Y)

	return f64.Aff3{
		scale * cosTheta, -scale * sinTheta, tx,
		scale * sinTheta, scale * cosTheta, ty,
	}, nil
}
