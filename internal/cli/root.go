// Package cli wires the flowmesh commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/flowmesh/flowmesh/pkg/logger"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "flowmesh",
		Short: "Run declarative LLM workflows",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logLevel, logJSON, logSource, err := logger.GetLoggerConfig(cmd)
			if err != nil {
				logLevel, logJSON, logSource = "info", false, false
			}
			logger.SetupLogger(logLevel, logJSON, logSource)
		},
	}
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("log-json", false, "emit logs as JSON")
	root.PersistentFlags().Bool("log-source", false, "include source locations in logs")

	root.AddCommand(
		RunCmd(),
		DescribeCmd(),
		FunctionsCmd(),
	)
	return root
}
