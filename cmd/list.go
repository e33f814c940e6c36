package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [paths...]",
		Short: "Show per-file function and instrumentation counts",
		Long: `Scans the given paths and prints a table with the number of functions,
the number already instrumented and the number still missing a marker
per file. No file is modified.

` + pathArgsHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig()
			if err != nil {
				return err
			}

			configureLogger("", viper.GetBool(logVerboseKey))

			return workflow.List(cmd.Context(), parsePaths(args), cfg)
		},
	}
}

// listCmd represents the list command.
var listCmd = newListCmd()

func init() {
	rootCmd.AddCommand(listCmd)
}
