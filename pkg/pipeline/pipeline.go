// Package pipeline provides the core assembly pipeline for topoforge.
//
// This package implements the complete select → assemble → refine pipeline
// that can be used by CLI and API components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Select: Assign building units to topology slots by shape label
//  2. Assemble: Align each unit onto its slot and collect the framework
//  3. Refine: Optimize the global cell scale over the connection sites
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Topology: "pcu",
//	    Units: []pipeline.UnitChoice{
//	        {Name: "zinc_octahedral"},
//	        {Name: "benzene_linear"},
//	    },
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	xyz := result.Artifacts["xyz"]
package pipeline

import (
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/topoforge/topoforge/pkg/assembly"
	"github.com/topoforge/topoforge/pkg/cache"
	"github.com/topoforge/topoforge/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultMaxIterations is the default refinement budget.
	DefaultMaxIterations = assembly.DefaultRefineIterations

	// DefaultTolerance is the default refinement convergence tolerance.
	DefaultTolerance = assembly.DefaultRefineTolerance

	// DefaultWorkers is the default slot alignment concurrency.
	DefaultWorkers = assembly.DefaultWorkers
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatXYZ  = "xyz"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatXYZ:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// UnitChoice names a building unit offered to the selection stage, with
// an optional draw weight. A zero weight means the uniform default.
type UnitChoice struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight,omitempty"`
}

// Options contains all configuration for the assembly pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Selection options
	Topology string       `json:"topology"`
	Units    []UnitChoice `json:"units"`
	Seed     uint64       `json:"seed,omitempty"`

	// Assignment pins specific slots to named units, bypassing the
	// random draw for those slots. A fully pinned request needs no
	// Units at all.
	Assignment map[int]string `json:"assignment,omitempty"`

	// Refinement options
	MaxIterations int     `json:"max_iterations,omitempty"`
	Tolerance     float64 `json:"tolerance,omitempty"`

	// Runtime options
	Workers int  `json:"workers,omitempty"`
	Refresh bool `json:"refresh,omitempty"`

	// Output options
	Formats []string `json:"formats,omitempty"`

	// Logger is not serialized.
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Framework is the assembled, refined framework.
	Framework *assembly.Framework

	// Artifacts contains serialized outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the framework came from cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SlotCount    int
	AtomCount    int
	SelectTime   time.Duration
	AssembleTime time.Duration
	RefineTime   time.Duration
}

// CacheInfo tracks cache usage for a pipeline run.
type CacheInfo struct {
	FrameworkHit bool // Whether the framework came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid format: %q (must be one of: json, xyz)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateTopologyName(o.Topology); err != nil {
		return err
	}
	if len(o.Units) == 0 && len(o.Assignment) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one unit or slot assignment is required")
	}
	for _, u := range o.Units {
		if err := errors.ValidateUnitName(u.Name); err != nil {
			return err
		}
		if err := errors.ValidateWeight(u.Weight); err != nil {
			return err
		}
	}
	for _, name := range o.Assignment {
		if err := errors.ValidateUnitName(name); err != nil {
			return err
		}
	}
	if err := errors.ValidateRefineBudget(o.MaxIterations); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// Candidates converts the unit choices to the matcher's candidate form.
func (o *Options) Candidates() []assembly.Candidate {
	out := make([]assembly.Candidate, len(o.Units))
	for i, u := range o.Units {
		out[i] = assembly.Candidate{Name: u.Name, Weight: u.Weight}
	}
	return out
}

// SelectionKeyOpts returns cache key options for the selection stage.
func (o *Options) SelectionKeyOpts() cache.SelectionKeyOpts {
	entries := make([]string, len(o.Units))
	for i, u := range o.Units {
		entries[i] = u.Name + ":" + strconv.FormatFloat(u.Weight, 'g', -1, 64)
	}
	slices.Sort(entries)

	pins := make([]string, 0, len(o.Assignment))
	for slot, name := range o.Assignment {
		pins = append(pins, strconv.Itoa(slot)+"="+name)
	}
	slices.Sort(pins)

	return cache.SelectionKeyOpts{
		Seed:       o.Seed,
		Candidates: entries,
		Assignment: pins,
	}
}

// FrameworkKeyOpts returns cache key options for the assembled framework.
func (o *Options) FrameworkKeyOpts() cache.FrameworkKeyOpts {
	return cache.FrameworkKeyOpts{
		MaxIterations: o.MaxIterations,
		Tolerance:     o.Tolerance,
	}
}
