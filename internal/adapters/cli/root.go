package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "krpsim",
		Short: "krpsim - discrete-cycle resource-flow optimizer",
		Long: `krpsim simulates a process graph toward one or more target resources,
choosing one runnable process per cycle via the graph analyzer, phase
controller, scoring engine, and bottleneck detector.

Examples:
  krpsim run resources/pomme.krpsim 1000
  krpsim verify resources/pomme.krpsim <run-id>
  krpsim config validate resources/pomme.krpsim`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "app-config", "", "Path to application config file (database, logging)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewVerifyCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
