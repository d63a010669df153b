package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/topoforge/topoforge/pkg/assembly"
	"github.com/topoforge/topoforge/pkg/topology"
)

// topologiesCommand creates the topologies listing command.
func (c *CLI) topologiesCommand() *cobra.Command {
	var (
		compatibleOnly bool
		unitsStr       []string
		partial        bool
	)

	cmd := &cobra.Command{
		Use:   "topologies",
		Short: "List available topology templates",
		Long: `List the built-in topology templates.

With --unit, only nets compatible with the given units are shown: by
default the unit shapes must cover the net's slot shapes exactly, so
the listed nets can be built from those units alone. --partial relaxes
that to nets where every given unit is usable somewhere, even if the
net needs further shapes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := topology.Names()
			if compatibleOnly || len(unitsStr) > 0 {
				var err error
				names, err = assembly.CompatibleTopologies(names, unitsStr, nil, !partial)
				if err != nil {
					return err
				}
			}

			printNewline()
			fmt.Println(StyleTitle.Render("Topologies"))
			printNewline()
			for _, name := range names {
				t, err := topology.Lookup(name)
				if err != nil {
					continue
				}
				fmt.Printf("  %s  %s\n",
					StyleHighlight.Render(fmt.Sprintf("%-8s", name)),
					StyleDim.Render(fmt.Sprintf("%d slots · %s", t.SlotCount(), strings.Join(t.UniqueShapes(), ", "))))
			}
			printNewline()
			printNextStep("Assemble one", "topoforge assemble pcu -u zinc_octahedral -u benzene_linear")
			return nil
		},
	}

	cmd.Flags().BoolVar(&compatibleOnly, "compatible", false, "only nets fillable from the built-in unit library")
	cmd.Flags().StringArrayVarP(&unitsStr, "unit", "u", nil, "only nets compatible with this unit (repeatable)")
	cmd.Flags().BoolVar(&partial, "partial", false, "with --unit, accept nets needing further shapes")

	return cmd
}
