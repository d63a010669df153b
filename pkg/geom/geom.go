// Package geom provides the small-point-cloud primitives used by the
// assembly engine: 3-vectors, centroids, elementwise scaling, and the
// orthogonal Procrustes rotation solver.
//
// Point clouds are plain []Vec3 slices. All functions that transform a
// cloud do so in place and are documented as such; callers that need the
// original must copy first (see [Clone]).
package geom

import (
	"errors"
	"math"
)

var (
	// ErrNoPoints is returned when an operation requires a non-empty cloud.
	ErrNoPoints = errors.New("point cloud is empty")

	// ErrCountMismatch is returned by correspondence-based operations
	// ([Rotation]) when the two clouds have different cardinality.
	ErrCountMismatch = errors.New("point clouds differ in cardinality")
)

// Vec3 is a 3-component vector in Cartesian space.
type Vec3 [3]float64

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

// Scale returns v scaled by the scalar f.
func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v[0] * f, v[1] * f, v[2] * f}
}

// Mul returns the elementwise (Hadamard) product of v and w.
// This is the axis-wise anisotropic scaling used throughout assembly.
func (v Vec3) Mul(w Vec3) Vec3 {
	return Vec3{v[0] * w[0], v[1] * w[1], v[2] * w[2]}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Normalize returns v scaled to unit length. The second return value is
// false when the norm is below eps, in which case the zero vector is
// returned and the caller must handle the degeneracy.
func (v Vec3) Normalize(eps float64) (Vec3, bool) {
	n := v.Norm()
	if n < eps {
		return Vec3{}, false
	}
	return v.Scale(1 / n), true
}

// IsotropicDirection is the normalized all-ones vector used as the scaling
// direction when a slot sits at the global origin and no radial direction
// exists.
func IsotropicDirection() Vec3 {
	f := 1 / math.Sqrt(3)
	return Vec3{f, f, f}
}

// Clone returns an independent copy of the cloud.
func Clone(points []Vec3) []Vec3 {
	out := make([]Vec3, len(points))
	copy(out, points)
	return out
}

// Centroid returns the mean position of the cloud.
// Returns ErrNoPoints for an empty cloud.
func Centroid(points []Vec3) (Vec3, error) {
	if len(points) == 0 {
		return Vec3{}, ErrNoPoints
	}
	var c Vec3
	for _, p := range points {
		c = c.Add(p)
	}
	return c.Scale(1 / float64(len(points))), nil
}

// Translate shifts every point by delta, in place.
func Translate(points []Vec3, delta Vec3) {
	for i := range points {
		points[i] = points[i].Add(delta)
	}
}

// ScaleEach multiplies every point elementwise by s, in place.
func ScaleEach(points []Vec3, s Vec3) {
	for i := range points {
		points[i] = points[i].Mul(s)
	}
}

// Norms returns the Euclidean length of every point in the cloud.
func Norms(points []Vec3) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Norm()
	}
	return out
}

// Nearest returns the index of the cloud point closest to p and the
// distance to it. Ties resolve to the first minimum encountered, so the
// result is stable for a fixed input order. Returns index -1 for an
// empty cloud.
func Nearest(points []Vec3, p Vec3) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for i, q := range points {
		if d := q.Sub(p).Norm(); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}
