package assembly

import (
	"slices"

	"github.com/topoforge/topoforge/pkg/chem"
	"github.com/topoforge/topoforge/pkg/topology"
)

// CompatibleUnits returns the names of library units whose shape matches
// at least one slot of the topology, sorted.
func CompatibleUnits(t *topology.Topology, lib *chem.Library) []string {
	if lib == nil {
		lib = chem.Builtin()
	}
	shapes := make(map[string]struct{})
	for _, shape := range t.UniqueShapes() {
		shapes[shape] = struct{}{}
	}
	var out []string
	for _, name := range lib.Names() {
		unit, err := lib.Lookup(name)
		if err != nil {
			continue
		}
		if _, ok := shapes[unit.Shape]; ok {
			out = append(out, name)
		}
	}
	return out
}

// CompatibleTopologies returns the names of the given topologies
// compatible with the units, sorted. In full mode the unit shapes must
// match the topology's slot shapes exactly, so the units alone can build
// it; in partial mode every unit shape must be usable by some slot, even
// if the topology needs further shapes. Unknown topology names are
// skipped; an unknown unit name is an error.
//
// An empty unit list asks a different question: which topologies are
// fillable from the library at all. Full and partial coincide there.
func CompatibleTopologies(names []string, units []string, lib *chem.Library, full bool) ([]string, error) {
	if lib == nil {
		lib = chem.Builtin()
	}

	pool := units
	if len(pool) == 0 {
		pool = lib.Names()
	}
	shapes := make(map[string]struct{}, len(pool))
	for _, name := range pool {
		unit, err := lib.Lookup(name)
		if err != nil {
			return nil, err
		}
		shapes[unit.Shape] = struct{}{}
	}

	var out []string
	for _, name := range names {
		t, err := topology.Lookup(name)
		if err != nil {
			continue
		}
		covered := true
		slotShapes := make(map[string]struct{})
		for _, shape := range t.UniqueShapes() {
			slotShapes[shape] = struct{}{}
			if _, ok := shapes[shape]; !ok {
				covered = false
			}
		}
		if len(units) == 0 {
			if covered {
				out = append(out, name)
			}
			continue
		}
		usable := true
		for shape := range shapes {
			if _, ok := slotShapes[shape]; !ok {
				usable = false
				break
			}
		}
		if (full && covered && usable) || (!full && usable) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out, nil
}
