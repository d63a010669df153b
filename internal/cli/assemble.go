package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/topoforge/topoforge/pkg/blueprint"
	"github.com/topoforge/topoforge/pkg/pipeline"
)

// assembleCommand creates the assemble command, the main entry point of
// the CLI.
func (c *CLI) assembleCommand() *cobra.Command {
	var (
		blueprintPath string
		unitsStr      []string
		assignStr     []string
		formatsStr    string
		output        string
		noCache       bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "assemble [topology]",
		Short: "Assemble a framework from a topology and building units",
		Long: `Assemble a framework structure by aligning building units onto a
topology template.

Each topology slot draws a building unit of matching shape from the
given candidates, the unit is rigidly aligned onto the slot, and the
unit cell is rescaled so the connection points meet.

Units are given as name or name:weight; weights bias the random draw.
The seed makes runs reproducible. Results are cached locally for
faster subsequent runs.

Alternatively, pass --blueprint with a TOML request file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if blueprintPath != "" {
				loaded, err := blueprint.Load(blueprintPath)
				if err != nil {
					return err
				}
				loaded.Refresh = opts.Refresh
				opts = loaded
			} else {
				if len(args) == 0 {
					return fmt.Errorf("topology argument or --blueprint is required")
				}
				opts.Topology = args[0]
				units, err := parseUnits(unitsStr)
				if err != nil {
					return err
				}
				opts.Units = units
				assignment, err := parseAssignment(assignStr)
				if err != nil {
					return err
				}
				opts.Assignment = assignment
				opts.Formats = parseFormats(formatsStr)
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runAssemble(cmd.Context(), opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if cached")

	// Assembly flags
	cmd.Flags().StringVar(&blueprintPath, "blueprint", "", "TOML blueprint file (replaces topology and unit flags)")
	cmd.Flags().StringArrayVarP(&unitsStr, "unit", "u", nil, "building unit candidate, name or name:weight (repeatable)")
	cmd.Flags().StringArrayVar(&assignStr, "assign", nil, "pin a slot to a unit, slot:name (repeatable)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed for unit selection (default 42)")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-iterations", 0, "refinement iteration budget")
	cmd.Flags().Float64Var(&opts.Tolerance, "tolerance", 0, "refinement convergence tolerance")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent slot alignments")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), xyz (comma-separated)")

	return cmd
}

// runAssemble executes the pipeline and writes the artifacts.
func (c *CLI) runAssemble(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		printError("Assembly failed")
		return err
	}
	prog.done(fmt.Sprintf("Assembled %d atoms on %s", result.Stats.AtomCount, opts.Topology))

	fw := result.Framework
	printSuccess("Framework %s", fw.ID)
	printStats(result.Stats.SlotCount, result.Stats.AtomCount, result.CacheInfo.FrameworkHit)
	printKeyValue("scale", fmt.Sprintf("%.4f %.4f %.4f", fw.Scale[0], fw.Scale[1], fw.Scale[2]))
	if fw.Unconverged {
		printWarning("Refinement hit its iteration budget; result is best-effort")
		printDetail("Retry with a larger --max-iterations or a different --seed")
	}

	return writeArtifacts(result.Artifacts, opts, output)
}

// parseUnits parses repeated --unit flags of the form name or name:weight.
func parseUnits(entries []string) ([]pipeline.UnitChoice, error) {
	var out []pipeline.UnitChoice
	for _, entry := range entries {
		name, weightStr, hasWeight := strings.Cut(entry, ":")
		choice := pipeline.UnitChoice{Name: name}
		if hasWeight {
			w, err := strconv.ParseFloat(weightStr, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid unit weight in %q: %w", entry, err)
			}
			choice.Weight = w
		}
		out = append(out, choice)
	}
	return out, nil
}

// parseAssignment parses repeated --assign flags of the form slot:name.
func parseAssignment(entries []string) (map[int]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[int]string, len(entries))
	for _, entry := range entries {
		slotStr, name, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("invalid assignment %q: want slot:name", entry)
		}
		slot, err := strconv.Atoi(slotStr)
		if err != nil {
			return nil, fmt.Errorf("invalid slot index in %q: %w", entry, err)
		}
		out[slot] = name
	}
	return out, nil
}

// writeArtifacts writes each rendered format to disk and prints the paths.
func writeArtifacts(artifacts map[string][]byte, opts pipeline.Options, output string) error {
	base := output
	if base == "" {
		base = "framework"
	}

	for _, format := range opts.Formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base
		if len(opts.Formats) > 1 || filepath.Ext(path) == "" {
			path = strings.TrimSuffix(base, filepath.Ext(base)) + "." + format
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
