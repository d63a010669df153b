// Package blueprint loads assembly requests from TOML files, so
// reproducible builds can be checked into a repo and replayed by CLI or
// server.
package blueprint

import (
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/topoforge/topoforge/pkg/errors"
	"github.com/topoforge/topoforge/pkg/pipeline"
)

// Blueprint mirrors the TOML document layout.
//
//	topology = "pcu"
//	seed = 42
//	formats = ["json", "xyz"]
//
//	[[units]]
//	name = "zinc_octahedral"
//
//	[[units]]
//	name = "benzene_linear"
//	weight = 2.0
//
//	[assignment]
//	0 = "zinc_octahedral"
//
//	[refine]
//	max_iterations = 1000
//	tolerance = 1e-9
//
// The optional assignment table pins individual slots to named units;
// unpinned slots draw from the unit candidates.
type Blueprint struct {
	Topology   string            `toml:"topology"`
	Seed       uint64            `toml:"seed"`
	Formats    []string          `toml:"formats"`
	Units      []Unit            `toml:"units"`
	Assignment map[string]string `toml:"assignment"`
	Refine     Refine            `toml:"refine"`
}

// Unit is one candidate building unit entry.
type Unit struct {
	Name   string  `toml:"name"`
	Weight float64 `toml:"weight"`
}

// Refine carries the optional refinement overrides.
type Refine struct {
	MaxIterations int     `toml:"max_iterations"`
	Tolerance     float64 `toml:"tolerance"`
}

// Load reads and validates a blueprint file. The filename must be a
// plain .toml name; the directory part is accepted but not trusted
// beyond being split off for validation.
func Load(path string) (pipeline.Options, error) {
	if err := errors.ValidateBlueprintFilename(filepath.Base(path)); err != nil {
		return pipeline.Options{}, err
	}

	var bp Blueprint
	if _, err := toml.DecodeFile(path, &bp); err != nil {
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidBlueprint, err, "parse %s", path)
	}
	return bp.Options()
}

// Parse decodes a blueprint from TOML bytes.
func Parse(data []byte) (pipeline.Options, error) {
	var bp Blueprint
	if err := toml.Unmarshal(data, &bp); err != nil {
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidBlueprint, err, "parse blueprint")
	}
	return bp.Options()
}

// Options converts the blueprint to validated pipeline options.
func (bp Blueprint) Options() (pipeline.Options, error) {
	opts := pipeline.Options{
		Topology:      bp.Topology,
		Seed:          bp.Seed,
		Formats:       bp.Formats,
		MaxIterations: bp.Refine.MaxIterations,
		Tolerance:     bp.Refine.Tolerance,
	}
	for _, u := range bp.Units {
		opts.Units = append(opts.Units, pipeline.UnitChoice{Name: u.Name, Weight: u.Weight})
	}
	if len(bp.Assignment) > 0 {
		opts.Assignment = make(map[int]string, len(bp.Assignment))
		for slot, name := range bp.Assignment {
			idx, err := strconv.Atoi(slot)
			if err != nil {
				return pipeline.Options{}, errors.New(errors.ErrCodeInvalidBlueprint,
					"assignment key %q is not a slot index", slot)
			}
			opts.Assignment[idx] = name
		}
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}
