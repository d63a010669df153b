package geom

import (
	"math"
	"testing"
)

const tol = 1e-9

func vecEq(a, b Vec3, eps float64) bool {
	return a.Sub(b).Norm() < eps
}

func TestCentroid(t *testing.T) {
	tests := []struct {
		name    string
		points  []Vec3
		want    Vec3
		wantErr bool
	}{
		{
			name:    "Empty",
			points:  nil,
			wantErr: true,
		},
		{
			name:   "Single",
			points: []Vec3{{1, 2, 3}},
			want:   Vec3{1, 2, 3},
		},
		{
			name:   "SymmetricPair",
			points: []Vec3{{1, 0, 0}, {-1, 0, 0}},
			want:   Vec3{0, 0, 0},
		},
		{
			name:   "Offset",
			points: []Vec3{{2, 0, 0}, {0, 2, 0}, {0, 0, 2}},
			want:   Vec3{2.0 / 3, 2.0 / 3, 2.0 / 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Centroid(tt.points)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Centroid: %v", err)
			}
			if !vecEq(got, tt.want, tol) {
				t.Errorf("centroid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	v := Vec3{3, 4, 0}
	n, ok := v.Normalize(1e-6)
	if !ok {
		t.Fatal("expected normalizable vector")
	}
	if math.Abs(n.Norm()-1) > tol {
		t.Errorf("norm = %v, want 1", n.Norm())
	}

	if _, ok := (Vec3{1e-9, 0, 0}).Normalize(1e-6); ok {
		t.Error("near-zero vector must not normalize")
	}
}

func TestIsotropicDirection(t *testing.T) {
	d := IsotropicDirection()
	if math.Abs(d.Norm()-1) > tol {
		t.Errorf("norm = %v, want 1", d.Norm())
	}
	if d[0] != d[1] || d[1] != d[2] {
		t.Errorf("direction %v is not isotropic", d)
	}
}

func TestScaleEach(t *testing.T) {
	pts := []Vec3{{1, 1, 1}, {-1, 2, 0}}
	ScaleEach(pts, Vec3{2, 3, 4})
	want := []Vec3{{2, 3, 4}, {-2, 6, 0}}
	for i := range pts {
		if !vecEq(pts[i], want[i], tol) {
			t.Errorf("point %d = %v, want %v", i, pts[i], want[i])
		}
	}
}

func TestNearest(t *testing.T) {
	pts := []Vec3{{10, 0, 0}, {0, 10, 0}, {0, 0, 10}}

	idx, dist := Nearest(pts, Vec3{0, 9, 0})
	if idx != 1 {
		t.Errorf("index = %d, want 1", idx)
	}
	if math.Abs(dist-1) > tol {
		t.Errorf("dist = %v, want 1", dist)
	}

	// Ties resolve to the first minimum.
	idx, _ = Nearest([]Vec3{{1, 0, 0}, {-1, 0, 0}}, Vec3{0, 0, 0})
	if idx != 0 {
		t.Errorf("tie index = %d, want 0", idx)
	}

	if idx, _ := Nearest(nil, Vec3{}); idx != -1 {
		t.Errorf("empty cloud index = %d, want -1", idx)
	}
}

func TestCloneIndependence(t *testing.T) {
	orig := []Vec3{{1, 2, 3}}
	cp := Clone(orig)
	cp[0] = Vec3{9, 9, 9}
	if !vecEq(orig[0], Vec3{1, 2, 3}, tol) {
		t.Error("Clone must not alias the original cloud")
	}
}
