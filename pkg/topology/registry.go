package topology

import (
	"math"
	"slices"
	"sync"

	"github.com/topoforge/topoforge/pkg/errors"
	"github.com/topoforge/topoforge/pkg/geom"
)

// Shape labels used by the built-in nets. They match the labels of the
// built-in building units so the two databases interoperate out of the box.
const (
	ShapeLinear      = "linear"
	ShapeTriangular  = "triangular"
	ShapeTetrahedral = "tetrahedral"
	ShapeOctahedral  = "octahedral"
)

// builtins holds the built-in prototype nets. These are programmatic
// stand-ins for the external topology database provider: small, idealized
// templates with node slots at the coordination centers and linear edge
// slots at the bond midpoints.
var builtins = sync.OnceValue(func() map[string]*Topology {
	nets := []*Topology{pcu(), dia(), hcb(), srs()}
	out := make(map[string]*Topology, len(nets))
	for _, t := range nets {
		out[t.Name] = t
	}
	return out
})

// Lookup returns the built-in topology registered under name.
func Lookup(name string) (*Topology, error) {
	t, ok := builtins()[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeTopologyNotFound, "topology %q not in database", name)
	}
	return t, nil
}

// Names returns the names of all built-in topologies, sorted.
func Names() []string {
	m := builtins()
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// mustAddSlot registers a slot on a built-in net. Built-in templates are
// valid by construction.
func mustAddSlot(t *Topology, s Slot) {
	if err := t.AddSlot(s); err != nil {
		panic(err)
	}
}

// linearFragment builds a two-point fragment centered on c along the unit
// direction dir with half-length h.
func linearFragment(c, dir geom.Vec3, h float64) Fragment {
	return Fragment{
		Points: []geom.Vec3{c.Add(dir.Scale(h)), c.Sub(dir.Scale(h))},
		Tags:   []int{0, 1},
	}
}

// starFragment builds a fragment of points c + dir·r for each direction.
func starFragment(c geom.Vec3, dirs []geom.Vec3, r float64) Fragment {
	f := Fragment{
		Points: make([]geom.Vec3, len(dirs)),
		Tags:   make([]int, len(dirs)),
	}
	for i, d := range dirs {
		f.Points[i] = c.Add(d.Scale(r))
		f.Tags[i] = i
	}
	return f
}

// pcu is the primitive cubic net: one octahedral node per cell linked by
// linear edges along the three axes.
func pcu() *Topology {
	const a = 10.0
	t := New("pcu", [3]geom.Vec3{{a, 0, 0}, {0, a, 0}, {0, 0, a}})

	axes := []geom.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	mustAddSlot(t, Slot{Index: 0, Shape: ShapeOctahedral, Fragment: starFragment(geom.Vec3{}, axes, 1)})

	for i, dir := range []geom.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		mustAddSlot(t, Slot{
			Index:    i + 1,
			Shape:    ShapeLinear,
			Fragment: linearFragment(dir.Scale(a/2), dir, 1),
		})
	}
	return t
}

// dia is the diamond net: two tetrahedral nodes per cell linked by linear
// edges along the body diagonals.
func dia() *Topology {
	const a = 10.0
	t := New("dia", [3]geom.Vec3{{a, 0, 0}, {0, a, 0}, {0, 0, a}})

	f := 1 / math.Sqrt(3)
	dirs := []geom.Vec3{{f, f, f}, {f, -f, -f}, {-f, f, -f}, {-f, -f, f}}
	inverted := make([]geom.Vec3, len(dirs))
	for i, d := range dirs {
		inverted[i] = d.Scale(-1)
	}

	second := geom.Vec3{a / 4, a / 4, a / 4}
	mustAddSlot(t, Slot{Index: 0, Shape: ShapeTetrahedral, Fragment: starFragment(geom.Vec3{}, dirs, 1)})
	mustAddSlot(t, Slot{Index: 1, Shape: ShapeTetrahedral, Fragment: starFragment(second, inverted, 1)})

	// Edge slots at the bond midpoints radiating from the first node.
	for i, d := range dirs {
		mustAddSlot(t, Slot{
			Index:    i + 2,
			Shape:    ShapeLinear,
			Fragment: linearFragment(d.Scale(a/8), d, 1),
		})
	}
	return t
}

// hcb is the honeycomb net: two triangular nodes per cell in a hexagonal
// layer, linked by linear edges.
func hcb() *Topology {
	const bond = 6.0
	h := bond * math.Sqrt(3) / 2
	t := New("hcb", [3]geom.Vec3{{bond * 1.5, -h, 0}, {bond * 1.5, h, 0}, {0, 0, 10}})

	up := []geom.Vec3{
		{1, 0, 0},
		{-0.5, math.Sqrt(3) / 2, 0},
		{-0.5, -math.Sqrt(3) / 2, 0},
	}
	down := make([]geom.Vec3, len(up))
	for i, d := range up {
		down[i] = d.Scale(-1)
	}

	second := geom.Vec3{bond, 0, 0}
	mustAddSlot(t, Slot{Index: 0, Shape: ShapeTriangular, Fragment: starFragment(geom.Vec3{}, up, 1)})
	mustAddSlot(t, Slot{Index: 1, Shape: ShapeTriangular, Fragment: starFragment(second, down, 1)})

	for i, d := range up {
		mustAddSlot(t, Slot{
			Index:    i + 2,
			Shape:    ShapeLinear,
			Fragment: linearFragment(d.Scale(bond/2), d, 1),
		})
	}
	return t
}

// srs is the chiral 3-coordinated net of the SrSi2 structure, here as a
// simplified template with four triangular nodes per cell.
func srs() *Topology {
	const a = 12.0
	t := New("srs", [3]geom.Vec3{{a, 0, 0}, {0, a, 0}, {0, 0, a}})

	f := 1 / math.Sqrt(2)
	centers := []geom.Vec3{
		{a / 8, a / 8, a / 8},
		{3 * a / 8, 3 * a / 8, a / 8},
		{3 * a / 8, a / 8, 3 * a / 8},
		{a / 8, 3 * a / 8, 3 * a / 8},
	}
	frames := [][]geom.Vec3{
		{{f, f, 0}, {0, -f, f}, {-f, 0, -f}},
		{{-f, -f, 0}, {0, f, f}, {f, 0, -f}},
		{{-f, f, 0}, {0, -f, -f}, {f, 0, f}},
		{{f, -f, 0}, {0, f, -f}, {-f, 0, f}},
	}
	for i, c := range centers {
		mustAddSlot(t, Slot{Index: i, Shape: ShapeTriangular, Fragment: starFragment(c, frames[i], 1)})
	}

	// One edge slot per node pair direction, at the bond midpoints of the
	// first node.
	for i, d := range frames[0] {
		mid := centers[0].Add(d.Scale(a / 8))
		mustAddSlot(t, Slot{
			Index:    i + 4,
			Shape:    ShapeLinear,
			Fragment: linearFragment(mid, d, 1),
		})
	}
	return t
}
