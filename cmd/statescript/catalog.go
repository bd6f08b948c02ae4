package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/statescript/internal/presentation/tui"
	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/registry"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the registered node types",
		Long:  `Prints every node type the builder can instantiate, grouped by category, with port labels and properties.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			category, _ := cmd.Flags().GetString("category")
			asJSON, _ := cmd.Flags().GetBool("json")

			eng, closeStore, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			types := eng.Catalog()
			if category != "" {
				c := domain.Category(category)
				if !c.Valid() {
					return fmt.Errorf("%w: %s", domain.ErrInvalidCategory, category)
				}
				types = eng.Registry().ByCategory(c)
			}
			if types == nil {
				types = []registry.NodeType{}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(types)
			}

			md := tui.CatalogMarkdown(types)
			if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				width, _, err := term.GetSize(int(f.Fd()))
				if err != nil {
					width = 0
				}
				if rendered, err := tui.NewRenderer(width)(md); err == nil {
					md = rendered
				}
			}
			_, err = fmt.Fprint(out, md)
			return err
		},
	}
	cmd.Flags().String("category", "", "Only list one category: entry, exit, action, condition or state")
	cmd.Flags().Bool("json", false, "Print the catalog as JSON")
	return cmd
}
