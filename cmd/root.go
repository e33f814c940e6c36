package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tracefix.dev/pkg/tracefix/internal/adapter"
	"tracefix.dev/pkg/tracefix/internal/controller"
	"tracefix.dev/pkg/tracefix/internal/domain"
	m "tracefix.dev/pkg/tracefix/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var workflow domain.Workflow
var ui controller.UI

// skipNames is a root-level flag forcing parameter names into every
// synthesized skip list.
var skipNames []string

// suffixFlag is appended inside the synthesized attribute's argument list.
var suffixFlag string

// logInstrumentFlag selects the log_instrument marker form.
var logInstrumentFlag bool

// excludePatterns filters files and function names for all commands.
var excludePatterns []string

// verboseFlag raises the log level to debug.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	workflow = domain.NewWorkflow(fsAdapter, ui)
}

const pathArgsHelp = `Paths may name files or directories; directories are scanned recursively
for .rs files (build.rs is always skipped). With no paths the current
directory is used. Pass --text to process a literal source snippet instead.`

const rootLongDescription = `Tracefix keeps tracing instrumentation consistent across a Rust codebase.
It locates every function definition and checks, inserts or removes the
#[tracing::instrument(...)] attribute while leaving every other byte of the
source untouched.

` + pathArgsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "tracefix",
		Short:        "Rust tracing instrumentation linter and fixer",
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringArrayVar(&skipNames, skipFlagName, viper.GetStringSlice(skipConfigKey),
		"parameter name always added to the skip list (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(skipFlagName), skipConfigKey)

	cmd.PersistentFlags().StringVar(&suffixFlag, suffixFlagName, viper.GetString(suffixConfigKey),
		"extra macro arguments appended inside the synthesized attribute")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(suffixFlagName), suffixConfigKey)

	cmd.PersistentFlags().BoolVar(&logInstrumentFlag, logInstrumentFlagName, viper.GetBool(logInstrumentConfigKey),
		"synthesize #[log_instrument::instrument] instead of the tracing form")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logInstrumentFlagName), logInstrumentConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey),
		"exclude files or functions matching glob (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().BoolVar(&verboseFlag, verboseFlagName, viper.GetBool(logVerboseKey),
		"log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Mismatches found by check map to exit code 2 so CI can tell them apart
// from I/O and configuration failures.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, domain.ErrMismatches) {
			os.Exit(2)
		}

		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

// buildConfig assembles and validates the run configuration from viper.
// Validation failures are configuration errors and abort before any
// document is touched.
func buildConfig() (*m.Config, error) {
	cfg := &m.Config{
		Skip:          viper.GetStringSlice(skipConfigKey),
		Suffix:        viper.GetString(suffixConfigKey),
		Exclude:       viper.GetStringSlice(excludeConfigKey),
		LogInstrument: viper.GetBool(logInstrumentConfigKey),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
