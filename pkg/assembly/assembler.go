package assembly

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/topoforge/topoforge/pkg/chem"
	"github.com/topoforge/topoforge/pkg/errors"
	"github.com/topoforge/topoforge/pkg/observability"
	"github.com/topoforge/topoforge/pkg/topology"
)

// DefaultWorkers bounds slot alignment concurrency when the caller does
// not set one. Alignment is CPU-bound linear algebra, so a small fixed
// pool behaves well across machine sizes.
const DefaultWorkers = 4

// Assembler builds frameworks from a topology and a slot→unit
// assignment. It is stateless apart from its collaborators; a single
// Assembler can serve concurrent Assemble calls.
type Assembler struct {
	// Analyzer derives bonds and atom types for units that carry none.
	// Nil means chem.CovalentAnalyzer with default slack.
	Analyzer chem.Analyzer

	// Logger receives per-stage progress. Nil means log.Default().
	Logger *log.Logger

	// Workers bounds concurrent slot alignments. Zero means
	// DefaultWorkers.
	Workers int
}

// NewAssembler creates an assembler with defaults filled in.
func NewAssembler(logger *log.Logger) *Assembler {
	if logger == nil {
		logger = log.Default()
	}
	return &Assembler{
		Analyzer: &chem.CovalentAnalyzer{},
		Logger:   logger,
		Workers:  DefaultWorkers,
	}
}

// Assemble aligns every assigned unit onto its slot and collects the
// results into a framework. The assignment must cover every slot of the
// topology exactly.
//
// Failure is all-or-nothing: if any slot fails to align, no framework is
// returned. Slots are aligned concurrently; the accumulated scale seed is
// a commutative sum, so the result does not depend on completion order.
func (a *Assembler) Assemble(ctx context.Context, t *topology.Topology, assignment map[int]*chem.BuildingUnit) (*Framework, error) {
	if t == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil topology")
	}
	if err := a.checkAssignment(t, assignment); err != nil {
		return nil, err
	}

	logger := a.Logger
	if logger == nil {
		logger = log.Default()
	}

	fw := NewFramework(t)
	start := time.Now()
	observability.Assembly().OnAlignStart(ctx, t.Name, t.SlotCount())

	g, gctx := errgroup.WithContext(ctx)
	workers := a.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	g.SetLimit(workers)

	for _, slot := range t.Slots() {
		unit := assignment[slot.Index]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			frag, err := a.alignSlot(slot, unit)
			if err != nil {
				return err
			}
			fw.Append(frag)
			logger.Debug("aligned slot",
				"slot", slot.Index,
				"unit", unit.Name,
				"scale", frag.Scale)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		observability.Assembly().OnAlignComplete(ctx, t.Name, 0, time.Since(start), err)
		return nil, err
	}

	if err := fw.CheckGeometry(); err != nil {
		observability.Assembly().OnAlignComplete(ctx, t.Name, 0, time.Since(start), err)
		return nil, err
	}

	observability.Assembly().OnAlignComplete(ctx, t.Name, fw.AtomCount(), time.Since(start), nil)
	logger.Info("assembled framework",
		"topology", t.Name,
		"slots", fw.FragmentCount(),
		"atoms", fw.AtomCount(),
		"duration", time.Since(start))
	return fw, nil
}

// alignSlot aligns one unit onto one slot, deriving typing first when the
// unit carries none.
func (a *Assembler) alignSlot(slot topology.Slot, unit *chem.BuildingUnit) (*AlignedFragment, error) {
	u := unit
	if u.Typing == nil {
		analyzer := a.Analyzer
		if analyzer == nil {
			analyzer = &chem.CovalentAnalyzer{}
		}
		typing, err := analyzer.Analyze(u.Atoms)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidUnit, err, "derive typing for %q", u.Name)
		}
		u = u.Copy()
		u.Typing = typing
	}
	return Align(slot, u)
}

// checkAssignment verifies the assignment covers the topology: every slot
// has a unit, every unit's shape matches its slot, and no extra indices
// appear.
func (a *Assembler) checkAssignment(t *topology.Topology, assignment map[int]*chem.BuildingUnit) error {
	for _, slot := range t.Slots() {
		unit, ok := assignment[slot.Index]
		if !ok || unit == nil {
			return errors.New(errors.ErrCodeShapeMismatch, "no unit assigned to slot %d", slot.Index)
		}
		if unit.Shape != slot.Shape {
			return errors.New(errors.ErrCodeShapeMismatch,
				"unit %q has shape %q but slot %d expects %q",
				unit.Name, unit.Shape, slot.Index, slot.Shape)
		}
	}
	for idx := range assignment {
		if _, ok := t.Slot(idx); !ok {
			return errors.New(errors.ErrCodeInvalidInput, "assignment references unknown slot %d", idx)
		}
	}
	return nil
}
