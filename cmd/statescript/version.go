package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/statescript"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of statescript",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "statescript version %s\n", strings.TrimSpace(statescript.Version))
		},
	}
}
