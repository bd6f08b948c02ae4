package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/statescript/pkg/domain"
	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two revisions of a graph",
		Long:  `Lists added, removed and changed nodes, connections and variables. Node positions are ignored.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			eng, closeStore, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			before, err := resolveGraph(cmd.Context(), eng, args[0])
			if err != nil {
				return err
			}
			after, err := resolveGraph(cmd.Context(), eng, args[1])
			if err != nil {
				return err
			}

			diff := domain.Diff(before, after)
			out := cmd.OutOrStdout()
			if asJSON {
				if diff == nil {
					diff = &domain.GraphDiff{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(diff)
			}
			printDiff(out, diff)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the diff as JSON")
	return cmd
}

func printDiff(w io.Writer, diff *domain.GraphDiff) {
	if diff == nil {
		fmt.Fprintln(w, "no changes")
		return
	}
	for _, id := range diff.AddedNodes {
		fmt.Fprintf(w, "+ node %s\n", id)
	}
	for _, id := range diff.RemovedNodes {
		fmt.Fprintf(w, "- node %s\n", id)
	}
	for _, id := range diff.ChangedNodes {
		fmt.Fprintf(w, "~ node %s\n", id)
	}
	for _, c := range diff.AddedConnections {
		fmt.Fprintf(w, "+ connection %s\n", c)
	}
	for _, c := range diff.RemovedConnections {
		fmt.Fprintf(w, "- connection %s\n", c)
	}
	for _, name := range diff.VariableNames() {
		if diff.Variables[name] == nil {
			fmt.Fprintf(w, "- variable %s\n", name)
		} else {
			fmt.Fprintf(w, "~ variable %s\n", name)
		}
	}
}
