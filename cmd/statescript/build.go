package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <graph|file>",
		Short: "Build a graph and report warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			strict, _ := cmd.Flags().GetBool("strict")

			eng, closeStore, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			g, err := resolveGraph(cmd.Context(), eng, args[0])
			if err != nil {
				return err
			}
			res, err := eng.Compile(cmd.Context(), g)
			if err != nil {
				return fmt.Errorf("build failed: %w", err)
			}
			sum := res.Summary()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(sum); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "Built %s: %d nodes, %d connections (%d dropped)\n",
					sum.Graph, sum.Nodes, sum.Connections, sum.Dropped)
				for _, w := range sum.Warnings {
					fmt.Fprintf(out, "  ⚠ [%s] %s\n", w.Reason, w)
				}
			}

			if strict && len(sum.Warnings) > 0 {
				return fmt.Errorf("%d warnings in strict mode", len(sum.Warnings))
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the build report as JSON")
	cmd.Flags().Bool("strict", false, "Fail when the build raises any warning")
	return cmd
}
