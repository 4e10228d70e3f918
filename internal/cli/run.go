package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowmesh/flowmesh/engine/core"
	"github.com/flowmesh/flowmesh/engine/runtime"
	"github.com/flowmesh/flowmesh/engine/workflow"
	"github.com/flowmesh/flowmesh/pkg/config"
)

func RunCmd() *cobra.Command {
	var inputs []string

	cmd := &cobra.Command{
		Use:   "run <workflow.yaml>",
		Short: "Execute a workflow document and print the result envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			wf, err := workflow.LoadFile(args[0])
			if err != nil {
				return err
			}
			eng := runtime.New()
			name := wf.Metadata.Name
			if name == "" {
				name = args[0]
			}
			name, err = eng.Load(wf, name)
			if err != nil {
				return err
			}
			overrides, err := parseInputs(inputs)
			if err != nil {
				return err
			}
			result, err := eng.Run(cmd.Context(), name, overrides, &workflow.RunOptions{
				MaxInFlight: cfg.Engine.MaxInFlight,
				Timeout:     cfg.Engine.RunTimeout,
				BackoffBase: cfg.Engine.RetryBackoffBase,
				BackoffCap:  cfg.Engine.RetryBackoffCap,
			})
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "input override as key=value (repeatable)")
	return cmd
}

func parseInputs(pairs []string) (core.Input, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(core.Input, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid input override %q: want key=value", pair)
		}
		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err == nil {
			out[key] = parsed
			continue
		}
		out[key] = value
	}
	return out, nil
}
