package assembly

import (
	"math"
	"testing"

	"github.com/topoforge/topoforge/pkg/chem"
	"github.com/topoforge/topoforge/pkg/geom"
	"github.com/topoforge/topoforge/pkg/topology"
)

// rodUnit is a minimal ditopic test unit: one carbon at the origin and
// two connection points at ±reach along the x axis.
func rodUnit(name string, reach float64) *chem.BuildingUnit {
	return &chem.BuildingUnit{
		Name:  name,
		Shape: chem.ShapeLinear,
		Atoms: []chem.Atom{
			{Symbol: "C", Position: geom.Vec3{0, 0, 0}},
			{Symbol: chem.Dummy, Position: geom.Vec3{reach, 0, 0}},
			{Symbol: chem.Dummy, Position: geom.Vec3{-reach, 0, 0}},
		},
	}
}

// linearSlot builds a linear slot whose fragment spans centroid ± dir.
func linearSlot(index int, centroid, dir geom.Vec3, tagBase int) topology.Slot {
	return topology.Slot{
		Index: index,
		Shape: topology.ShapeLinear,
		Fragment: topology.Fragment{
			Points: []geom.Vec3{centroid.Sub(dir), centroid.Add(dir)},
			Tags:   []int{tagBase, tagBase + 1},
		},
	}
}

// triAxisNet is a synthetic three-slot net with one linear slot on each
// coordinate axis at distance 5, fragment half-spread 1, and a cubic
// cell of edge 10. Every axis is constrained, so scale refinement has a
// unique minimum.
func triAxisNet(t *testing.T) *topology.Topology {
	t.Helper()
	net := topology.New("triaxis", [3]geom.Vec3{{10, 0, 0}, {0, 10, 0}, {0, 0, 10}})
	axes := []geom.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for i, axis := range axes {
		slot := linearSlot(i, axis.Scale(5), axis, 2*i)
		if err := net.AddSlot(slot); err != nil {
			t.Fatalf("AddSlot(%d): %v", i, err)
		}
	}
	return net
}

func rodAssignment(net *topology.Topology, reach float64) map[int]*chem.BuildingUnit {
	out := make(map[int]*chem.BuildingUnit, net.SlotCount())
	for _, slot := range net.Slots() {
		out[slot.Index] = rodUnit("rod", reach)
	}
	return out
}

func closeTo(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func vecCloseTo(a, b geom.Vec3, tol float64) bool {
	return a.Sub(b).Norm() <= tol
}
