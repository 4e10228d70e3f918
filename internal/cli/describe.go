package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowmesh/flowmesh/engine/workflow"
)

func DescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <workflow.yaml>",
		Short: "Print the structural view of a workflow document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := workflow.LoadFile(args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(wf.Describe(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
