package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/aretw0/statescript/pkg/domain"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild graphs as they change",
		Long:  `Watches the store (store=loam) and rebuilds each changed graph, printing its build report.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, closeStore, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			changes, err := eng.Watch(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Watching for changes... (Ctrl+C to stop)")
			last := map[string]*domain.Graph{}
			for name := range changes {
				g, err := eng.Load(ctx, name)
				if err != nil {
					fmt.Fprintf(out, "❌ %s: %v\n", name, err)
					continue
				}
				printDiff(out, domain.Diff(last[name], g))
				last[name] = g

				res, err := eng.Compile(ctx, g)
				if err != nil {
					fmt.Fprintf(out, "❌ %s: %v\n", name, err)
					continue
				}
				sum := res.Summary()
				fmt.Fprintf(out, "🔄 %s: %d nodes, %d connections, %d warnings\n",
					name, sum.Nodes, sum.Connections, len(sum.Warnings))
			}
			return nil
		},
	}
	return cmd
}
