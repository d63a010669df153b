// Package topology models the periodic template nets that frameworks are
// assembled on: a unit cell plus a set of typed slots, each carrying a
// small reference point cloud (its "fragment") describing the expected
// connection directions at that position.
//
// Topologies are constructed once, either from the built-in registry
// ([Lookup]) or programmatically, and are read-only during assembly.
// Ingestion of crystallographic database formats and spacegroup expansion
// are external concerns; this package only defines the in-memory template.
package topology

import (
	"slices"

	"github.com/topoforge/topoforge/pkg/errors"
	"github.com/topoforge/topoforge/pkg/geom"
)

// Fragment is a slot's reference point cloud in the topology's global
// frame. Tags identify the slot-local connection index of each point and
// are transferred onto matched building units during tagging.
type Fragment struct {
	Points []geom.Vec3
	Tags   []int
}

// Clone returns an independent copy of the fragment.
func (f Fragment) Clone() Fragment {
	return Fragment{
		Points: geom.Clone(f.Points),
		Tags:   slices.Clone(f.Tags),
	}
}

// Centered translates the fragment's points so their centroid sits on
// the origin. The receiver is mutated and returned for chaining off a
// [Fragment.Clone].
func (f Fragment) Centered() Fragment {
	c, err := geom.Centroid(f.Points)
	if err != nil {
		return f
	}
	geom.Translate(f.Points, c.Scale(-1))
	return f
}

// Slot is one placement position in the topology. Shape is the local
// coordination signature used to select compatible building units.
type Slot struct {
	Index    int
	Shape    string
	Fragment Fragment
}

// Topology is an immutable template graph of a periodic net.
type Topology struct {
	Name  string
	Cell  [3]geom.Vec3
	slots map[int]Slot
}

// New creates a topology with the given name and unit cell and no slots.
func New(name string, cell [3]geom.Vec3) *Topology {
	return &Topology{Name: name, Cell: cell, slots: make(map[int]Slot)}
}

// AddSlot adds a slot to the topology. Every slot must carry a shape
// label and a non-empty fragment whose tags cover every point; slot
// indices must be unique.
func (t *Topology) AddSlot(s Slot) error {
	if s.Shape == "" {
		return errors.New(errors.ErrCodeInvalidTopology, "slot %d of %q has no shape label", s.Index, t.Name)
	}
	if len(s.Fragment.Points) == 0 {
		return errors.New(errors.ErrCodeInvalidTopology, "slot %d of %q has an empty fragment", s.Index, t.Name)
	}
	if len(s.Fragment.Tags) != len(s.Fragment.Points) {
		return errors.New(errors.ErrCodeInvalidTopology,
			"slot %d of %q: %d tags for %d fragment points",
			s.Index, t.Name, len(s.Fragment.Tags), len(s.Fragment.Points))
	}
	if _, exists := t.slots[s.Index]; exists {
		return errors.New(errors.ErrCodeInvalidTopology, "duplicate slot index %d in %q", s.Index, t.Name)
	}
	t.slots[s.Index] = s
	return nil
}

// Slot returns the slot with the given index.
func (t *Topology) Slot(index int) (Slot, bool) {
	s, ok := t.slots[index]
	return s, ok
}

// Slots returns all slots ordered by index. Slot processing must not
// depend on this order for correctness, but a stable order keeps seeded
// random selection reproducible.
func (t *Topology) Slots() []Slot {
	out := make([]Slot, 0, len(t.slots))
	for _, s := range t.slots {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Slot) int { return a.Index - b.Index })
	return out
}

// SlotCount returns the number of slots.
func (t *Topology) SlotCount() int { return len(t.slots) }

// Shapes returns the mapping from slot index to shape label.
func (t *Topology) Shapes() map[int]string {
	out := make(map[int]string, len(t.slots))
	for idx, s := range t.slots {
		out[idx] = s.Shape
	}
	return out
}

// UniqueShapes returns the distinct shape labels used by the topology,
// sorted.
func (t *Topology) UniqueShapes() []string {
	seen := make(map[string]struct{})
	for _, s := range t.slots {
		seen[s.Shape] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for shape := range seen {
		out = append(out, shape)
	}
	slices.Sort(out)
	return out
}
