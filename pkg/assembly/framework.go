package assembly

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/topoforge/topoforge/pkg/chem"
	"github.com/topoforge/topoforge/pkg/errors"
	"github.com/topoforge/topoforge/pkg/geom"
	"github.com/topoforge/topoforge/pkg/topology"
)

// AlignedFragment is the per-slot assembly result: a building unit after
// centering, rotation, and tagging, together with the slot geometry needed
// to place it in the cell and to drive refinement. It is owned by the
// Framework that produced it and must not be mutated after tagging.
type AlignedFragment struct {
	// SlotIndex is the topology slot this fragment fills.
	SlotIndex int

	// Unit is the aligned copy of the building unit, centered on the
	// origin, rotated into the slot frame, and tagged.
	Unit *chem.BuildingUnit

	// Centroid is the slot fragment's pre-translation centroid in the
	// topology's global frame. It encodes the slot position; the placed
	// position of the fragment is scale ⊙ Centroid.
	Centroid geom.Vec3

	// Offsets is the slot fragment translated to its own centroid,
	// unscaled. Together with its tags it defines the connection sites
	// the refiner reconciles against the unit's dummy atoms.
	Offsets topology.Fragment

	// Scale is this slot's anisotropic scale estimate, summed across
	// slots to seed refinement.
	Scale geom.Vec3
}

// RefineStats records the outcome of the cell refinement pass.
type RefineStats struct {
	Iterations int     // optimizer iterations consumed
	Objective  float64 // final objective value
	Converged  bool    // whether the tolerance was met within budget
}

// Framework is the aggregate assembly result: the topology's cell
// template, one aligned fragment per slot, and the global scale state.
// It is mutated only during assembly (one Append per slot) and finalized
// once by [Refine]; afterwards it is immutable.
//
// Append is safe for concurrent callers; all other methods expect the
// assembly to have completed.
type Framework struct {
	ID          string
	Topology    *topology.Topology
	Cell        [3]geom.Vec3 // template cell scaled by the refined scale
	Scale       geom.Vec3    // refined (or accumulated, pre-refinement) cell scale
	Unconverged bool         // refinement exhausted its budget before the tolerance
	RefineStats RefineStats

	mu        sync.Mutex
	fragments map[int]*AlignedFragment
	scaleSum  geom.Vec3
}

// NewFramework creates an empty framework for the given topology template.
func NewFramework(t *topology.Topology) *Framework {
	return &Framework{
		ID:        uuid.NewString(),
		Topology:  t,
		Cell:      t.Cell,
		fragments: make(map[int]*AlignedFragment),
	}
}

// Append adds a slot's aligned fragment and folds its scale estimate into
// the running sum. The sum is commutative, so the call order across slots
// does not affect the result.
func (f *Framework) Append(frag *AlignedFragment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fragments[frag.SlotIndex] = frag
	f.scaleSum = f.scaleSum.Add(frag.Scale)
}

// Fragment returns the aligned fragment for a slot index.
func (f *Framework) Fragment(slot int) (*AlignedFragment, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	frag, ok := f.fragments[slot]
	return frag, ok
}

// Fragments returns all aligned fragments ordered by slot index.
func (f *Framework) Fragments() []*AlignedFragment {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*AlignedFragment, 0, len(f.fragments))
	for _, frag := range f.fragments {
		out = append(out, frag)
	}
	slices.SortFunc(out, func(a, b *AlignedFragment) int { return a.SlotIndex - b.SlotIndex })
	return out
}

// FragmentCount returns the number of appended fragments.
func (f *Framework) FragmentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fragments)
}

// AtomCount returns the total atom count across all fragments, dummy
// atoms included.
func (f *Framework) AtomCount() int {
	total := 0
	for _, frag := range f.Fragments() {
		total += len(frag.Unit.Atoms)
	}
	return total
}

// ScaleSeed returns the accumulated per-slot scale sum used to seed
// refinement.
func (f *Framework) ScaleSeed() geom.Vec3 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scaleSum
}

// Atoms returns every atom of the assembled structure placed in the
// scaled cell: each fragment's atoms offset by scale ⊙ centroid. Before
// refinement the placement uses the raw accumulated scale and is only
// meaningful for inspection.
func (f *Framework) Atoms() []chem.Atom {
	var out []chem.Atom
	for _, frag := range f.Fragments() {
		origin := f.Scale.Mul(frag.Centroid)
		for _, a := range frag.Unit.Atoms {
			a.Position = a.Position.Add(origin)
			out = append(out, a)
		}
	}
	return out
}

// CheckGeometry reports whether any cell vector has collapsed to
// near-zero length. It runs on the template cell after assembly and on
// the scaled cell after refinement; a degenerate cell fails the run.
func (f *Framework) CheckGeometry() error {
	const minLength = 1e-3
	for i, v := range f.Cell {
		if v.Norm() < minLength {
			return errors.New(errors.ErrCodeDegenerateGeometry,
				"cell vector %d of %q collapsed to length %.3g", i, f.Topology.Name, v.Norm())
		}
	}
	return nil
}
