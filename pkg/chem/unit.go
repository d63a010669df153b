// Package chem models rigid molecular building units (SBUs): ordered atoms
// with element symbols and positions, a shape label used for slot
// compatibility, and a distinguished set of dummy connection-point atoms.
//
// Building units are treated as immutable templates. The assembly engine
// never mutates a registered unit; it works on copies obtained via
// [BuildingUnit.Copy].
package chem

import (
	"errors"

	"github.com/topoforge/topoforge/pkg/geom"
)

// Dummy is the placeholder element symbol marking connection points.
// Dummy atoms are attachment markers, not real chemistry.
const Dummy = "X"

var (
	// ErrNoAtoms is returned when a building unit has no atoms.
	ErrNoAtoms = errors.New("building unit has no atoms")

	// ErrNoConnectionPoints is returned when a building unit has no
	// dummy atoms and therefore cannot attach to any slot.
	ErrNoConnectionPoints = errors.New("building unit has no connection points")
)

// Atom is a single atom of a building unit. Tag carries the slot-local
// connection index transferred from the matched slot fragment; it is zero
// until tagging and only meaningful on dummy atoms.
type Atom struct {
	Symbol   string
	Position geom.Vec3
	Tag      int
}

// IsDummy reports whether the atom is a connection placeholder.
func (a Atom) IsDummy() bool { return a.Symbol == Dummy }

// Bond is an undirected bond between two atom indices with a bond order.
type Bond struct {
	A, B  int
	Order float64
}

// Typing holds the precomputed bonding graph and force-field atom types of
// a unit. Presence is explicit: a nil *Typing on a BuildingUnit means the
// information is absent and must be derived by an [Analyzer] at assembly
// time. This replaces ad-hoc per-call metadata probing.
type Typing struct {
	Bonds []Bond
	Types []string
}

// BuildingUnit is a named rigid 3D structure matched to topology slots by
// shape label.
type BuildingUnit struct {
	Name   string
	Shape  string
	Atoms  []Atom
	Typing *Typing
}

// Copy returns a deep copy of the unit. The copy shares nothing with the
// original and may be freely mutated.
func (u *BuildingUnit) Copy() *BuildingUnit {
	out := &BuildingUnit{
		Name:  u.Name,
		Shape: u.Shape,
		Atoms: make([]Atom, len(u.Atoms)),
	}
	copy(out.Atoms, u.Atoms)
	if u.Typing != nil {
		t := &Typing{
			Bonds: make([]Bond, len(u.Typing.Bonds)),
			Types: make([]string, len(u.Typing.Types)),
		}
		copy(t.Bonds, u.Typing.Bonds)
		copy(t.Types, u.Typing.Types)
		out.Typing = t
	}
	return out
}

// Dummies returns the indices of the unit's connection-point atoms in
// atom order.
func (u *BuildingUnit) Dummies() []int {
	var idx []int
	for i, a := range u.Atoms {
		if a.IsDummy() {
			idx = append(idx, i)
		}
	}
	return idx
}

// ConnectionCount returns the number of connection points, which must be
// comparable to the slot fragments the unit is matched against.
func (u *BuildingUnit) ConnectionCount() int {
	return len(u.Dummies())
}

// Positions returns a copy of all atom positions in atom order.
func (u *BuildingUnit) Positions() []geom.Vec3 {
	out := make([]geom.Vec3, len(u.Atoms))
	for i, a := range u.Atoms {
		out[i] = a.Position
	}
	return out
}

// SetPositions overwrites the unit's atom positions. The slice length must
// equal the atom count.
func (u *BuildingUnit) SetPositions(pts []geom.Vec3) error {
	if len(pts) != len(u.Atoms) {
		return geom.ErrCountMismatch
	}
	for i := range u.Atoms {
		u.Atoms[i].Position = pts[i]
	}
	return nil
}

// Validate checks the structural invariants required before registration:
// a non-empty name, a shape label, at least one atom, and at least one
// connection point. Typing, when present, must cover every atom.
func (u *BuildingUnit) Validate() error {
	if u.Name == "" {
		return errors.New("building unit name must not be empty")
	}
	if u.Shape == "" {
		return errors.New("building unit shape must not be empty")
	}
	if len(u.Atoms) == 0 {
		return ErrNoAtoms
	}
	if u.ConnectionCount() == 0 {
		return ErrNoConnectionPoints
	}
	if u.Typing != nil && len(u.Typing.Types) != len(u.Atoms) {
		return errors.New("typing must cover every atom")
	}
	return nil
}
