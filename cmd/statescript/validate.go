package main

import (
	"fmt"

	"github.com/aretw0/statescript/internal/validator"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [graph|file]...",
		Short: "Check graphs for consistency",
		Long: `Lints graphs without building them: node ids, runtime types, resolvers,
variable references, dangling connections and unreachable nodes.
With no arguments every graph in the store is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, closeStore, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := cmd.Context()
			if len(args) == 0 {
				if args, err = eng.ListGraphs(ctx); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, arg := range args {
				g, err := resolveGraph(ctx, eng, arg)
				if err != nil {
					fmt.Fprintf(out, "❌ %s: %v\n", arg, err)
					failed++
					continue
				}
				issues := validator.ValidateGraph(g, eng.Registry())
				if validator.Err(issues) != nil {
					failed++
					fmt.Fprintf(out, "❌ %s\n", arg)
				} else {
					fmt.Fprintf(out, "✅ %s\n", arg)
				}
				for _, issue := range issues {
					fmt.Fprintf(out, "   %s\n", issue)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d graphs failed validation", failed, len(args))
			}
			return nil
		},
	}
	return cmd
}
