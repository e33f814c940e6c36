package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tracefix.dev/pkg/tracefix/internal/domain"
	m "tracefix.dev/pkg/tracefix/internal/model"
)

var textFlag string
var diffFlag bool
var parallelFlag int

// newActionCmd builds one of the check/fix/strip subcommands; they share
// every flag and differ only in the action handed to the pipeline.
func newActionCmd(action m.Action, short string, long string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(action) + " [paths...]",
		Short: short,
		Long:  long + "\n\n" + pathArgsHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig()
			if err != nil {
				return err
			}

			configureLogger("", viper.GetBool(logVerboseKey))

			if cmd.Flags().Changed(textFlagName) {
				return runOnText(cmd, textFlag, action, cfg)
			}

			// The flag wins over the config file; check/fix/strip share
			// the flag variable, so the viper key is read here instead of
			// being bound three times.
			threads := viper.GetInt(parallelConfigKey)
			if cmd.Flags().Changed(parallelFlagName) {
				threads = parallelFlag
			}

			_, err = workflow.Apply(cmd.Context(), domain.Args{
				Paths:   parsePaths(args),
				Action:  action,
				Config:  cfg,
				Threads: threads,
				DryRun:  diffFlag,
			})

			return err
		},
	}

	configureActionFlags(cmd)

	return cmd
}

func configureActionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&textFlag, textFlagName, "", "process the given source text instead of paths")
	cmd.Flags().BoolVar(&diffFlag, diffFlagName, false, "print a unified diff instead of writing files")
	cmd.Flags().IntVarP(&parallelFlag, parallelFlagName, "p", defaultParallel,
		"number of parallel workers")
}

// runOnText applies the action to a literal snippet: mismatch lines for
// check, the rewritten text on stdout for fix/strip.
func runOnText(cmd *cobra.Command, text string, action m.Action, cfg *m.Config) error {
	ctx := context.Background()
	if cmd.Context() != nil {
		ctx = cmd.Context()
	}

	outcome, err := domain.Run(text, action, cfg)
	if err != nil {
		return err
	}

	ui.DisplayWarnings(ctx, outcome.Warnings)

	if action == m.ActionCheck {
		for _, mismatch := range outcome.Mismatches {
			cmd.Println(mismatch.String())
		}

		if outcome.Failed() {
			return domain.ErrMismatches
		}

		return nil
	}

	ui.DisplayText(outcome.Text)

	return nil
}
