package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newLayoutsCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List supported statement layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			layouts := newService(cfg, logger, false).Extractor().Layouts()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, l := range layouts.All() {
				fmt.Fprintf(tw, "%s\t%s\n", l.Name(), l.Description())
			}
			return tw.Flush()
		},
	}
}
