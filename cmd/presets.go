package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chazu/urdfkit/pkg/urdf/presets"
)

func newPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the predefined materials",
		Long: `List the materials available to (preset "name") in scripts. Names are
matched case-insensitively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tRGBA")
			for _, p := range presets.All() {
				fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Color)
			}
			return w.Flush()
		},
	}
}
