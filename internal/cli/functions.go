package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowmesh/flowmesh/engine/runtime"
)

func FunctionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the registered builtin functions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng := runtime.New()
			for _, name := range eng.ListFunctions() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
