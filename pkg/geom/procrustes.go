package geom

import (
	"gonum.org/v1/gonum/mat"
)

// Rotation3 is a 3x3 proper rotation matrix (orthogonal, determinant +1).
type Rotation3 [3][3]float64

// Apply returns p rotated by r, treating p as a row vector: p' = p·R.
func (r Rotation3) Apply(p Vec3) Vec3 {
	var out Vec3
	for l := 0; l < 3; l++ {
		out[l] = p[0]*r[0][l] + p[1]*r[1][l] + p[2]*r[2][l]
	}
	return out
}

// ApplyAll rotates every point of the cloud in place.
func (r Rotation3) ApplyAll(points []Vec3) {
	for i := range points {
		points[i] = r.Apply(points[i])
	}
}

// Transpose returns the inverse rotation.
func (r Rotation3) Transpose() Rotation3 {
	var t Rotation3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = r[j][i]
		}
	}
	return t
}

// Det returns the determinant of r. For a proper rotation it is +1
// within floating tolerance.
func (r Rotation3) Det() float64 {
	return r[0][0]*(r[1][1]*r[2][2]-r[1][2]*r[2][1]) -
		r[0][1]*(r[1][0]*r[2][2]-r[1][2]*r[2][0]) +
		r[0][2]*(r[1][0]*r[2][1]-r[1][1]*r[2][0])
}

// Rotation solves the orthogonal Procrustes problem: it returns the proper
// rotation R minimizing the Frobenius residual ‖A·R − B‖ over corresponding
// clouds A and B. Both clouds are expected to be centered on their own
// centroids; Rotation does not center them.
//
// The solution follows the Kabsch construction: with M = Aᵀ·B = U·Σ·Vᵀ,
// R = U·Vᵀ, with the last column of U sign-flipped when det(U·Vᵀ) < 0 so
// that the result is a rotation rather than an improper reflection.
func Rotation(a, b []Vec3) (Rotation3, error) {
	if len(a) == 0 || len(b) == 0 {
		return Rotation3{}, ErrNoPoints
	}
	if len(a) != len(b) {
		return Rotation3{}, ErrCountMismatch
	}

	// Cross-covariance M = Aᵀ·B.
	m := mat.NewDense(3, 3, nil)
	for k := 0; k < 3; k++ {
		for l := 0; l < 3; l++ {
			var sum float64
			for i := range a {
				sum += a[i][k] * b[i][l]
			}
			m.Set(k, l, sum)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDFull); !ok {
		// Factorization of a finite 3x3 matrix does not fail in practice;
		// degenerate inputs collapse singular values instead.
		return Rotation3{}, ErrNoPoints
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var rot mat.Dense
	rot.Mul(&u, v.T())

	if mat.Det(&rot) < 0 {
		// Improper solution: flip the singular direction with the smallest
		// singular value (the last column of U) and rebuild.
		for i := 0; i < 3; i++ {
			u.Set(i, 2, -u.At(i, 2))
		}
		rot.Mul(&u, v.T())
	}

	var r Rotation3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = rot.At(i, j)
		}
	}
	return r, nil
}
