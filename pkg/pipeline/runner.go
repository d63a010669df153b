package pipeline

import (
	"bytes"
	"context"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/topoforge/topoforge/pkg/assembly"
	"github.com/topoforge/topoforge/pkg/cache"
	"github.com/topoforge/topoforge/pkg/chem"
	"github.com/topoforge/topoforge/pkg/export"
	"github.com/topoforge/topoforge/pkg/observability"
	"github.com/topoforge/topoforge/pkg/topology"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Library *chem.Library
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Library: chem.Builtin(),
	}
}

// Execute runs the complete select → assemble → refine pipeline with
// caching. The assembled framework is cached as a whole: selection is
// deterministic given the seed, so the framework key covers every input
// that changes the result.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	selectionHash := r.Keyer.SelectionKey(opts.Topology, opts.SelectionKeyOpts())
	cacheKey := r.Keyer.FrameworkKey(selectionHash, opts.FrameworkKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if doc, err := export.Unmarshal(data); err == nil {
				if fw, err := doc.Framework(); err == nil {
					observability.Cache().OnCacheHit(ctx, "framework")
					result.Framework = fw
					result.CacheInfo.FrameworkHit = true
					result.Stats.SlotCount = fw.FragmentCount()
					result.Stats.AtomCount = fw.AtomCount()
					if err := r.render(result, opts); err != nil {
						return nil, err
					}
					return result, nil
				}
			}
			// Corrupt entry: recompute and overwrite.
		}
		observability.Cache().OnCacheMiss(ctx, "framework")
	}

	fw, err := r.assemble(ctx, opts, &result.Stats)
	if err != nil {
		return nil, err
	}
	result.Framework = fw
	result.Stats.SlotCount = fw.FragmentCount()
	result.Stats.AtomCount = fw.AtomCount()

	// Cache the result
	if data, err := export.Marshal(fw); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.FrameworkTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "framework", len(data))
		}
	}

	if err := r.render(result, opts); err != nil {
		return nil, err
	}
	return result, nil
}

// Assemble runs the three pipeline stages without consulting the cache.
func (r *Runner) Assemble(ctx context.Context, opts Options) (*assembly.Framework, error) {
	return r.assemble(ctx, opts, &Stats{})
}

// assemble is the uncached select → assemble → refine sequence,
// recording per-stage timings into stats.
func (r *Runner) assemble(ctx context.Context, opts Options, stats *Stats) (*assembly.Framework, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	net, err := topology.Lookup(opts.Topology)
	if err != nil {
		return nil, err
	}

	// Stage 1: Select
	selectStart := time.Now()
	observability.Assembly().OnSelectStart(ctx, opts.Topology, len(opts.Units))
	matcher := assembly.NewMatcher(r.Library)
	rng := rand.New(rand.NewPCG(opts.Seed, 0))
	selection, err := matcher.SelectAssigned(net, opts.Candidates(), opts.Assignment, rng)
	observability.Assembly().OnSelectComplete(ctx, opts.Topology, len(selection), time.Since(selectStart), err)
	if err != nil {
		return nil, err
	}
	stats.SelectTime = time.Since(selectStart)
	opts.Logger.Info("selected units",
		"topology", opts.Topology,
		"slots", len(selection),
		"seed", opts.Seed,
		"duration", stats.SelectTime)

	// Stage 2: Assemble
	assembleStart := time.Now()
	assembler := assembly.NewAssembler(opts.Logger)
	assembler.Workers = opts.Workers
	fw, err := assembler.Assemble(ctx, net, selection)
	if err != nil {
		return nil, err
	}
	stats.AssembleTime = time.Since(assembleStart)
	opts.Logger.Info("assembled framework",
		"id", fw.ID,
		"atoms", fw.AtomCount(),
		"duration", stats.AssembleTime)

	// Stage 3: Refine
	refineStart := time.Now()
	err = assembly.Refine(ctx, fw, assembly.RefineOptions{
		MaxIterations: opts.MaxIterations,
		Tolerance:     opts.Tolerance,
	}, opts.Logger)
	if err != nil {
		return nil, err
	}
	stats.RefineTime = time.Since(refineStart)
	opts.Logger.Info("refined cell",
		"scale", fw.Scale,
		"converged", fw.RefineStats.Converged,
		"duration", stats.RefineTime)

	return fw, nil
}

// render serializes the framework into the requested formats.
func (r *Runner) render(result *Result, opts Options) error {
	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			data, err := export.Marshal(result.Framework)
			if err != nil {
				return err
			}
			result.Artifacts[FormatJSON] = data
		case FormatXYZ:
			var buf bytes.Buffer
			if err := export.WriteXYZ(&buf, result.Framework); err != nil {
				return err
			}
			result.Artifacts[FormatXYZ] = buf.Bytes()
		}
	}
	return nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
