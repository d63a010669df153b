package assembly

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/optimize"

	"github.com/topoforge/topoforge/pkg/errors"
	"github.com/topoforge/topoforge/pkg/geom"
	"github.com/topoforge/topoforge/pkg/observability"
)

// RefineOptions controls the global scale optimization.
type RefineOptions struct {
	// MaxIterations bounds the optimizer. Zero means
	// DefaultRefineIterations. Exhausting the budget is not an error:
	// the framework keeps the best scale found and is flagged
	// unconverged.
	MaxIterations int

	// Tolerance is the absolute objective-convergence threshold. Zero
	// means DefaultRefineTolerance.
	Tolerance float64
}

const (
	DefaultRefineIterations = 500
	DefaultRefineTolerance  = 1e-8
)

// scalePair is one tag-matched correspondence between an unscaled slot
// connection offset and the aligned unit atom that landed on it.
type scalePair struct {
	offset geom.Vec3
	atom   geom.Vec3
}

// Refine optimizes the framework's global anisotropic scale so the
// slots' connection offsets, stretched by the scale, best overlay the
// aligned units' connection atoms. The accumulated per-slot estimate
// seeds the search.
//
// On return the framework's Scale, Cell, and RefineStats are updated.
// Non-convergence within the iteration budget is reported through the
// Unconverged flag, never as an error; the best scale found so far is
// kept.
func Refine(ctx context.Context, fw *Framework, opts RefineOptions, logger *log.Logger) error {
	if fw == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil framework")
	}
	if fw.FragmentCount() == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "framework has no fragments to refine against")
	}
	if err := errors.ValidateRefineBudget(opts.MaxIterations); err != nil {
		return err
	}
	if opts.MaxIterations == 0 {
		opts.MaxIterations = DefaultRefineIterations
	}
	if opts.Tolerance == 0 {
		opts.Tolerance = DefaultRefineTolerance
	}
	if logger == nil {
		logger = log.Default()
	}

	pairs, err := collectPairs(fw)
	if err != nil {
		return err
	}

	seed := fw.ScaleSeed()
	start := time.Now()
	observability.Assembly().OnRefineStart(ctx, fw.Topology.Name, opts.MaxIterations)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			s := geom.Vec3{x[0], x[1], x[2]}
			var sum float64
			for _, p := range pairs {
				d := p.offset.Mul(s).Sub(p.atom)
				sum += d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
			}
			return sum
		},
	}
	settings := &optimize.Settings{
		MajorIterations: opts.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   opts.Tolerance,
			Iterations: 20,
		},
	}

	scale := seed
	converged := false
	iterations := 0
	objective := problem.Func([]float64{seed[0], seed[1], seed[2]})

	result, optErr := optimize.Minimize(problem, []float64{seed[0], seed[1], seed[2]}, settings, &optimize.NelderMead{})
	if result != nil {
		scale = geom.Vec3{result.X[0], result.X[1], result.X[2]}
		iterations = result.MajorIterations
		objective = result.F
		converged = optErr == nil && result.Status != optimize.IterationLimit
	}
	if optErr != nil {
		// Budget exhaustion and stalled simplices surface as errors
		// from the optimizer; the best point found is still usable.
		logger.Warn("scale refinement did not converge",
			"topology", fw.Topology.Name,
			"iterations", iterations,
			"err", optErr)
		converged = false
	}

	fw.Scale = scale
	for i := range fw.Cell {
		fw.Cell[i] = fw.Topology.Cell[i].Mul(scale)
	}
	fw.Unconverged = !converged
	fw.RefineStats = RefineStats{
		Iterations: iterations,
		Objective:  objective,
		Converged:  converged,
	}
	if err := fw.CheckGeometry(); err != nil {
		return err
	}

	observability.Assembly().OnRefineComplete(ctx, fw.Topology.Name, iterations, converged, time.Since(start))
	logger.Info("refined scale",
		"topology", fw.Topology.Name,
		"scale", scale,
		"objective", objective,
		"iterations", iterations,
		"converged", converged)
	return nil
}

// collectPairs gathers the tag-matched (offset, atom) correspondences
// across every aligned fragment.
func collectPairs(fw *Framework) ([]scalePair, error) {
	var pairs []scalePair
	for _, frag := range fw.Fragments() {
		byTag := make(map[int]geom.Vec3, len(frag.Offsets.Points))
		for i, tag := range frag.Offsets.Tags {
			byTag[tag] = frag.Offsets.Points[i]
		}
		for _, idx := range frag.Unit.Dummies() {
			atom := frag.Unit.Atoms[idx]
			offset, ok := byTag[atom.Tag]
			if !ok {
				return nil, errors.New(errors.ErrCodeInternal,
					"slot %d: connection atom tagged %d has no matching fragment point",
					frag.SlotIndex, atom.Tag)
			}
			pairs = append(pairs, scalePair{offset: offset, atom: atom.Position})
		}
	}
	if len(pairs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no connection correspondences to refine")
	}
	return pairs, nil
}
