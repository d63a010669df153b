package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/topoforge/topoforge/pkg/assembly"
	"github.com/topoforge/topoforge/pkg/chem"
	"github.com/topoforge/topoforge/pkg/topology"
)

// unitsCommand creates the building-unit listing command.
func (c *CLI) unitsCommand() *cobra.Command {
	var forTopology string

	cmd := &cobra.Command{
		Use:   "units",
		Short: "List available building units",
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := chem.Builtin()

			names := lib.Names()
			if forTopology != "" {
				t, err := topology.Lookup(forTopology)
				if err != nil {
					return err
				}
				names = assembly.CompatibleUnits(t, lib)
			}

			printNewline()
			fmt.Println(StyleTitle.Render("Building units"))
			printNewline()
			for _, name := range names {
				u, err := lib.Lookup(name)
				if err != nil {
					continue
				}
				fmt.Printf("  %s  %s\n",
					StyleHighlight.Render(fmt.Sprintf("%-20s", name)),
					StyleDim.Render(fmt.Sprintf("%s · %d connections · %d atoms", u.Shape, u.ConnectionCount(), len(u.Atoms))))
			}
			printNewline()
			return nil
		},
	}

	cmd.Flags().StringVar(&forTopology, "topology", "", "only units whose shape fits the given net")

	return cmd
}
