// Package export serializes assembled frameworks: a JSON document for
// caching and API responses, and an XYZ writer for molecular viewers.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/topoforge/topoforge/pkg/assembly"
	"github.com/topoforge/topoforge/pkg/chem"
	"github.com/topoforge/topoforge/pkg/errors"
	"github.com/topoforge/topoforge/pkg/geom"
	"github.com/topoforge/topoforge/pkg/topology"
)

// Document is the serializable form of an assembled framework. It
// carries enough to rebuild the in-memory Framework against the
// topology registry.
type Document struct {
	ID          string           `json:"id"`
	Topology    string           `json:"topology"`
	Cell        [3]geom.Vec3     `json:"cell"`
	Scale       geom.Vec3        `json:"scale"`
	Unconverged bool             `json:"unconverged,omitempty"`
	Refine      RefineRecord     `json:"refine"`
	Fragments   []FragmentRecord `json:"fragments"`
}

// RefineRecord mirrors assembly.RefineStats.
type RefineRecord struct {
	Iterations int     `json:"iterations"`
	Objective  float64 `json:"objective"`
	Converged  bool    `json:"converged"`
}

// FragmentRecord is one slot's aligned unit plus its placement geometry.
type FragmentRecord struct {
	Slot     int          `json:"slot"`
	Unit     UnitRecord   `json:"unit"`
	Centroid geom.Vec3    `json:"centroid"`
	Offsets  PointsRecord `json:"offsets"`
	Scale    geom.Vec3    `json:"scale"`
}

// UnitRecord is a building unit with atoms in the aligned frame.
type UnitRecord struct {
	Name  string       `json:"name"`
	Shape string       `json:"shape"`
	Atoms []AtomRecord `json:"atoms"`
	Bonds []chem.Bond  `json:"bonds,omitempty"`
	Types []string     `json:"types,omitempty"`
}

// AtomRecord is one atom with its connection tag.
type AtomRecord struct {
	Symbol   string    `json:"symbol"`
	Position geom.Vec3 `json:"position"`
	Tag      int       `json:"tag,omitempty"`
}

// PointsRecord is a tagged point cloud.
type PointsRecord struct {
	Points []geom.Vec3 `json:"points"`
	Tags   []int       `json:"tags"`
}

// FromFramework captures a framework into its serializable form.
func FromFramework(fw *assembly.Framework) Document {
	doc := Document{
		ID:          fw.ID,
		Topology:    fw.Topology.Name,
		Cell:        fw.Cell,
		Scale:       fw.Scale,
		Unconverged: fw.Unconverged,
		Refine: RefineRecord{
			Iterations: fw.RefineStats.Iterations,
			Objective:  fw.RefineStats.Objective,
			Converged:  fw.RefineStats.Converged,
		},
	}
	for _, frag := range fw.Fragments() {
		unit := UnitRecord{
			Name:  frag.Unit.Name,
			Shape: frag.Unit.Shape,
		}
		for _, a := range frag.Unit.Atoms {
			unit.Atoms = append(unit.Atoms, AtomRecord{Symbol: a.Symbol, Position: a.Position, Tag: a.Tag})
		}
		if frag.Unit.Typing != nil {
			unit.Bonds = frag.Unit.Typing.Bonds
			unit.Types = frag.Unit.Typing.Types
		}
		doc.Fragments = append(doc.Fragments, FragmentRecord{
			Slot:     frag.SlotIndex,
			Unit:     unit,
			Centroid: frag.Centroid,
			Offsets:  PointsRecord{Points: frag.Offsets.Points, Tags: frag.Offsets.Tags},
			Scale:    frag.Scale,
		})
	}
	return doc
}

// Framework rebuilds the in-memory framework, resolving the topology by
// name against the built-in registry.
func (d Document) Framework() (*assembly.Framework, error) {
	t, err := topology.Lookup(d.Topology)
	if err != nil {
		return nil, err
	}

	fw := assembly.NewFramework(t)
	for _, rec := range d.Fragments {
		unit := &chem.BuildingUnit{
			Name:  rec.Unit.Name,
			Shape: rec.Unit.Shape,
		}
		for _, a := range rec.Unit.Atoms {
			unit.Atoms = append(unit.Atoms, chem.Atom{Symbol: a.Symbol, Position: a.Position, Tag: a.Tag})
		}
		if rec.Unit.Bonds != nil || rec.Unit.Types != nil {
			unit.Typing = &chem.Typing{Bonds: rec.Unit.Bonds, Types: rec.Unit.Types}
		}
		fw.Append(&assembly.AlignedFragment{
			SlotIndex: rec.Slot,
			Unit:      unit,
			Centroid:  rec.Centroid,
			Offsets:   topology.Fragment{Points: rec.Offsets.Points, Tags: rec.Offsets.Tags},
			Scale:     rec.Scale,
		})
	}

	fw.ID = d.ID
	fw.Cell = d.Cell
	fw.Scale = d.Scale
	fw.Unconverged = d.Unconverged
	fw.RefineStats = assembly.RefineStats{
		Iterations: d.Refine.Iterations,
		Objective:  d.Refine.Objective,
		Converged:  d.Refine.Converged,
	}
	return fw, nil
}

// Marshal serializes a framework to its JSON document form.
func Marshal(fw *assembly.Framework) ([]byte, error) {
	data, err := json.Marshal(FromFramework(fw))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal framework %s", fw.ID)
	}
	return data, nil
}

// Unmarshal parses a JSON document.
func Unmarshal(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse framework document")
	}
	return doc, nil
}

// WriteXYZ writes the framework's placed atoms in XYZ format: an atom
// count, a comment line with the cell vectors, then one atom per line.
// Dummy atoms are included; downstream tools strip or bond them.
func WriteXYZ(w io.Writer, fw *assembly.Framework) error {
	atoms := fw.Atoms()
	if _, err := fmt.Fprintf(w, "%d\n", len(atoms)); err != nil {
		return err
	}
	c := fw.Cell
	if _, err := fmt.Fprintf(w, "%s cell=%.6f %.6f %.6f %.6f %.6f %.6f %.6f %.6f %.6f\n",
		fw.Topology.Name,
		c[0][0], c[0][1], c[0][2],
		c[1][0], c[1][1], c[1][2],
		c[2][0], c[2][1], c[2][2]); err != nil {
		return err
	}
	for _, a := range atoms {
		if _, err := fmt.Fprintf(w, "%-2s %12.6f %12.6f %12.6f\n",
			a.Symbol, a.Position[0], a.Position[1], a.Position[2]); err != nil {
			return err
		}
	}
	return nil
}
