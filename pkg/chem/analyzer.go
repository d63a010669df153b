package chem

import (
	"fmt"
)

// Analyzer derives a bonding graph and force-field atom types for units
// whose stored metadata lacks them. Implementations must not mutate the
// input atoms.
type Analyzer interface {
	Analyze(atoms []Atom) (*Typing, error)
}

// covalentRadii holds single-bond covalent radii in angstroms for the
// elements used by the built-in library, plus common organic elements.
var covalentRadii = map[string]float64{
	"H":  0.31,
	"C":  0.76,
	"N":  0.71,
	"O":  0.66,
	"Si": 1.11,
	"P":  1.07,
	"S":  1.05,
	"Zn": 1.22,
	"Cu": 1.32,
	"Fe": 1.32,
	// Dummy atoms bond to nothing under distance analysis; they are
	// attachment markers resolved by tagging, not chemistry.
	Dummy: 0,
}

// CovalentAnalyzer derives bonds from interatomic distances against summed
// covalent radii. It is the default bonding/typing collaborator used when a
// building unit carries no precomputed Typing.
type CovalentAnalyzer struct {
	// Slack widens the bond acceptance window: a bond is emitted when the
	// distance is below (r1+r2)·Slack. Zero means the default of 1.15.
	Slack float64
}

// Analyze derives bonds and per-atom types. The type of an atom is its
// element symbol suffixed with its derived coordination number; dummy
// atoms keep the bare placeholder symbol.
func (c *CovalentAnalyzer) Analyze(atoms []Atom) (*Typing, error) {
	slack := c.Slack
	if slack == 0 {
		slack = 1.15
	}

	coordination := make([]int, len(atoms))
	var bonds []Bond
	for i := 0; i < len(atoms); i++ {
		ri, ok := covalentRadii[atoms[i].Symbol]
		if !ok {
			return nil, fmt.Errorf("no covalent radius for element %q", atoms[i].Symbol)
		}
		if atoms[i].IsDummy() {
			continue
		}
		for j := i + 1; j < len(atoms); j++ {
			if atoms[j].IsDummy() {
				continue
			}
			rj, ok := covalentRadii[atoms[j].Symbol]
			if !ok {
				return nil, fmt.Errorf("no covalent radius for element %q", atoms[j].Symbol)
			}
			dist := atoms[i].Position.Sub(atoms[j].Position).Norm()
			if dist > 0 && dist < (ri+rj)*slack {
				bonds = append(bonds, Bond{A: i, B: j, Order: 1})
				coordination[i]++
				coordination[j]++
			}
		}
	}

	types := make([]string, len(atoms))
	for i, a := range atoms {
		if a.IsDummy() {
			types[i] = Dummy
			continue
		}
		types[i] = fmt.Sprintf("%s%d", a.Symbol, coordination[i])
	}
	return &Typing{Bonds: bonds, Types: types}, nil
}
