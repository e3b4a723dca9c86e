package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krpsim/krpsim-go/internal/application/simulate"
	"github.com/krpsim/krpsim-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect application configuration and process files",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigValidateCommand())

	return cmd
}

// newConfigShowCommand prints the effective application configuration
// (database, optimizer defaults, logging), the way the teacher's own
// "config show" reports its system configuration.
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective application configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Warning: failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault(configPath)
			}

			fmt.Println("krpsim Configuration")
			fmt.Println("=====================")

			fmt.Println("Database:")
			fmt.Printf("  Type:             %s\n", cfg.Database.Type)
			if cfg.Database.Type == "sqlite" {
				fmt.Printf("  Path:             %s\n", cfg.Database.Path)
			} else {
				fmt.Printf("  Host:             %s\n", cfg.Database.Host)
				fmt.Printf("  Port:             %d\n", cfg.Database.Port)
				fmt.Printf("  Database:         %s\n", cfg.Database.Name)
			}
			fmt.Printf("  Max Connections:  %d\n", cfg.Database.Pool.MaxOpen)

			fmt.Println("\nOptimizer:")
			fmt.Printf("  Horizon:          %d\n", cfg.Optimizer.Horizon)
			fmt.Printf("  Targets:          %v\n", cfg.Optimizer.Targets)

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:           %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:           %s\n", cfg.Logging.Output)

			return nil
		},
	}
	return cmd
}

// newConfigValidateCommand parses a process file and reports whether it
// would initialize the optimizer successfully, without running any cycles.
func newConfigValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <process-file>",
		Short: "Parse and validate a process file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := simulate.ParseConfigFile(args[0])
			if err != nil {
				return fmt.Errorf("invalid process file: %w", err)
			}

			builder := simulate.DiscoverThenInitialize(loaded.Targets, 1, loaded.Stocks)
			for _, p := range loaded.Processes {
				builder.Add(p)
			}
			if _, err := builder.Finalize(cmd.Context()); err != nil {
				return fmt.Errorf("invalid process graph: %w", err)
			}

			fmt.Printf("OK: %d processes, %d stocks, targets %v\n", len(loaded.Processes), len(loaded.Stocks), loaded.Targets)
			return nil
		},
	}
	return cmd
}
