package assembly

import (
	"math/rand/v2"

	"github.com/topoforge/topoforge/pkg/chem"
	"github.com/topoforge/topoforge/pkg/errors"
	"github.com/topoforge/topoforge/pkg/topology"
)

// Candidate names a building unit offered to the matcher, with an
// optional draw weight. A zero weight means the uniform default of 1.
type Candidate struct {
	Name   string
	Weight float64
}

// Matcher assigns building units to topology slots by shape label.
type Matcher struct {
	Library *chem.Library
}

// NewMatcher creates a matcher over the given library. A nil library
// falls back to the built-in unit set.
func NewMatcher(lib *chem.Library) *Matcher {
	if lib == nil {
		lib = chem.Builtin()
	}
	return &Matcher{Library: lib}
}

// Select produces a slot → building unit assignment for the topology.
// Candidates are grouped by shape label; each slot draws among the
// candidates sharing its shape, weighted by Candidate.Weight. A slot
// whose shape has no candidate is unfillable and fails the whole
// request with a SHAPE_MISMATCH error.
//
// The random source is explicit: a fixed-seed rng makes the selection
// reproducible. Slots are drawn in ascending index order so the rng
// stream is consumed deterministically. Each assigned unit is an
// independent copy owned by its slot.
func (m *Matcher) Select(t *topology.Topology, candidates []Candidate, rng *rand.Rand) (map[int]*chem.BuildingUnit, error) {
	if len(candidates) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no candidate building units given")
	}
	return m.SelectAssigned(t, candidates, nil, rng)
}

// SelectAssigned is Select with explicit per-slot pins: a pinned slot
// takes the named unit directly (its shape must still match) and does
// not draw from the candidate pool. Unpinned slots draw as in Select,
// so a fully pinned request needs no candidates at all.
func (m *Matcher) SelectAssigned(t *topology.Topology, candidates []Candidate, pinned map[int]string, rng *rand.Rand) (map[int]*chem.BuildingUnit, error) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	byShape := make(map[string][]weighted)
	for _, c := range candidates {
		if err := errors.ValidateWeight(c.Weight); err != nil {
			return nil, err
		}
		u, err := m.Library.Lookup(c.Name)
		if err != nil {
			return nil, err
		}
		w := c.Weight
		if w == 0 {
			w = 1
		}
		byShape[u.Shape] = append(byShape[u.Shape], weighted{unit: u, weight: w})
	}

	for idx := range pinned {
		if _, ok := t.Slot(idx); !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"assignment names slot %d, which %q does not have", idx, t.Name)
		}
	}

	assignment := make(map[int]*chem.BuildingUnit, t.SlotCount())
	for _, slot := range t.Slots() {
		if name, ok := pinned[slot.Index]; ok {
			u, err := m.Library.Lookup(name)
			if err != nil {
				return nil, err
			}
			if u.Shape != slot.Shape {
				return nil, errors.New(errors.ErrCodeShapeMismatch,
					"slot %d of %q needs shape %q but assigned unit %q has shape %q",
					slot.Index, t.Name, slot.Shape, name, u.Shape)
			}
			assignment[slot.Index] = u.Copy()
			continue
		}
		pool := byShape[slot.Shape]
		if len(pool) == 0 {
			return nil, errors.New(errors.ErrCodeShapeMismatch,
				"slot %d of %q needs shape %q but no candidate provides it",
				slot.Index, t.Name, slot.Shape)
		}
		assignment[slot.Index] = draw(pool, rng).Copy()
	}
	return assignment, nil
}

// weighted pairs a candidate unit with its effective draw weight.
type weighted struct {
	unit   *chem.BuildingUnit
	weight float64
}

// draw picks one unit from the pool by weighted random choice.
func draw(pool []weighted, rng *rand.Rand) *chem.BuildingUnit {
	var total float64
	for _, w := range pool {
		total += w.weight
	}
	r := rng.Float64() * total
	for _, w := range pool {
		if r < w.weight {
			return w.unit
		}
		r -= w.weight
	}
	return pool[len(pool)-1].unit
}
