package main

import (
	"fmt"

	"github.com/aretw0/statescript/internal/presentation/graph"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <graph|file>",
		Short: "Export the graph visualization",
		Long: `Outputs a Mermaid diagram (graph TD) of the graph. Unless --no-overlay is
set, the graph is built first and nodes with warnings and dropped connections
are highlighted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			noOverlay, _ := cmd.Flags().GetBool("no-overlay")

			eng, closeStore, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			g, err := resolveGraph(cmd.Context(), eng, args[0])
			if err != nil {
				return err
			}

			var overlay *graph.GraphOverlay
			if !noOverlay {
				res, err := eng.Compile(cmd.Context(), g)
				if err != nil {
					return fmt.Errorf("build failed: %w", err)
				}
				overlay = graph.OverlayFromWarnings(res.Warnings)
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, eng.Registry(), overlay))
			return err
		},
	}
	cmd.Flags().Bool("no-overlay", false, "Skip the build and draw the graph as authored")
	return cmd
}
