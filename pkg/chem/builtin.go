package chem

import (
	"math"
	"sync"

	"github.com/topoforge/topoforge/pkg/geom"
)

// Shape labels shared between built-in units and built-in topologies.
const (
	ShapeLinear      = "linear"
	ShapeTriangular  = "triangular"
	ShapeTetrahedral = "tetrahedral"
	ShapeOctahedral  = "octahedral"
)

// Builtin returns the built-in building-unit library. The library is
// constructed once and shared; treat the returned units as read-only
// templates.
var Builtin = sync.OnceValue(func() *Library {
	l := NewLibrary()
	for _, u := range builtinUnits() {
		// Built-in units are valid by construction.
		if err := l.Register(u); err != nil {
			panic(err)
		}
	}
	return l
})

func builtinUnits() []*BuildingUnit {
	return []*BuildingUnit{
		benzeneLinear(),
		amineTriangular(),
		silaneTetrahedral(),
		zincOctahedral(),
	}
}

// benzeneLinear is a ditopic phenylene linker: a six-membered carbon ring
// with two opposite connection points along the ring axis.
func benzeneLinear() *BuildingUnit {
	const ringRadius = 1.39
	atoms := make([]Atom, 0, 8)
	for k := 0; k < 6; k++ {
		angle := float64(k) * math.Pi / 3
		atoms = append(atoms, Atom{
			Symbol:   "C",
			Position: geom.Vec3{ringRadius * math.Cos(angle), ringRadius * math.Sin(angle), 0},
		})
	}
	atoms = append(atoms,
		Atom{Symbol: Dummy, Position: geom.Vec3{2.89, 0, 0}},
		Atom{Symbol: Dummy, Position: geom.Vec3{-2.89, 0, 0}},
	)
	return &BuildingUnit{Name: "benzene_linear", Shape: ShapeLinear, Atoms: atoms}
}

// amineTriangular is a tritopic nitrogen center with three planar
// connection points at 120 degrees.
func amineTriangular() *BuildingUnit {
	const armLength = 1.8
	atoms := []Atom{{Symbol: "N", Position: geom.Vec3{0, 0, 0}}}
	for k := 0; k < 3; k++ {
		angle := float64(k) * 2 * math.Pi / 3
		atoms = append(atoms, Atom{
			Symbol:   Dummy,
			Position: geom.Vec3{armLength * math.Cos(angle), armLength * math.Sin(angle), 0},
		})
	}
	return &BuildingUnit{Name: "amine_triangular", Shape: ShapeTriangular, Atoms: atoms}
}

// silaneTetrahedral is a tetratopic silicon center with connection points
// on the body diagonals of a cube.
func silaneTetrahedral() *BuildingUnit {
	f := 1.87 / math.Sqrt(3)
	dirs := []geom.Vec3{
		{f, f, f},
		{f, -f, -f},
		{-f, f, -f},
		{-f, -f, f},
	}
	atoms := []Atom{{Symbol: "Si", Position: geom.Vec3{0, 0, 0}}}
	for _, d := range dirs {
		atoms = append(atoms, Atom{Symbol: Dummy, Position: d})
	}
	return &BuildingUnit{Name: "silane_tetrahedral", Shape: ShapeTetrahedral, Atoms: atoms}
}

// zincOctahedral is a hexatopic metal node with axial connection points on
// every Cartesian axis.
func zincOctahedral() *BuildingUnit {
	const armLength = 1.95
	atoms := []Atom{{Symbol: "Zn", Position: geom.Vec3{0, 0, 0}}}
	for axis := 0; axis < 3; axis++ {
		for _, sign := range []float64{1, -1} {
			var p geom.Vec3
			p[axis] = sign * armLength
			atoms = append(atoms, Atom{Symbol: Dummy, Position: p})
		}
	}
	return &BuildingUnit{Name: "zinc_octahedral", Shape: ShapeOctahedral, Atoms: atoms}
}
