package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/statescript/pkg/ports"
	"github.com/spf13/cobra"
)

func newPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push <file>...",
		Short: "Save graph documents into the store",
		Long: `Parses each file and saves it into the selected store under its base
name (or --name for a single file). Useful to seed a Redis store.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			if name != "" && len(args) > 1 {
				return fmt.Errorf("--name needs exactly one file")
			}

			eng, closeStore, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			store, ok := eng.Loader().(ports.GraphStore)
			if !ok {
				return fmt.Errorf("the selected store is read-only")
			}

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				if _, err := eng.Parse(data); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				target := name
				if target == "" {
					base := filepath.Base(path)
					target = strings.TrimSuffix(base, filepath.Ext(base))
				}
				if err := store.SaveGraph(cmd.Context(), target, data); err != nil {
					return fmt.Errorf("failed to save %s: %w", target, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", target)
			}
			return nil
		},
	}
	cmd.Flags().String("name", "", "Store the graph under this name")
	return cmd
}
