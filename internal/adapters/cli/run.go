package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/krpsim/krpsim-go/internal/adapters/metrics"
	"github.com/krpsim/krpsim-go/internal/adapters/persistence"
	"github.com/krpsim/krpsim-go/internal/application/common"
	"github.com/krpsim/krpsim-go/internal/application/simulate"
	"github.com/krpsim/krpsim-go/internal/infrastructure/config"
	"github.com/krpsim/krpsim-go/internal/infrastructure/database"
)

var (
	persistTraces  bool
	enableMetrics  bool
	printEveryStep bool
)

// NewRunCommand builds the "krpsim run" command: run, printing each selected
// cycle as "<cycle>:<process>", then print the final stocks, matching the
// original CLI's "process name then final stock report" output shape.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <config-file> <horizon>",
		Short: "Run the optimizer for a fixed number of cycles",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			horizon, err := strconv.Atoi(args[1])
			if err != nil || horizon <= 0 {
				return fmt.Errorf("horizon must be a positive integer, got %q", args[1])
			}

			loaded, err := simulate.ParseConfigFile(args[0])
			if err != nil {
				return fmt.Errorf("parse config file: %w", err)
			}

			ctx := common.WithLogger(context.Background(), common.StdoutLogger{})
			driver, err := simulate.NewDriver(ctx, loaded.Processes, loaded.Targets, horizon, loaded.Stocks)
			if err != nil {
				return fmt.Errorf("initialize optimizer: %w", err)
			}

			if enableMetrics {
				metrics.InitRegistry()
				collector := metrics.NewOptimizerMetricsCollector()
				if err := collector.Register(); err != nil {
					return fmt.Errorf("register metrics: %w", err)
				}
				driver.WithMetrics(collector)
			}

			for cycle := 0; cycle < horizon; cycle++ {
				name, selected := driver.Step(cycle)
				if printEveryStep && selected {
					fmt.Printf("%d:%s\n", cycle, name)
				}
			}

			fmt.Println("Final stocks:")
			for resource, qty := range driver.Stocks() {
				fmt.Printf("  %s => %d\n", resource, qty)
			}

			if persistTraces {
				if err := persistRun(cmd.Context(), loaded, horizon, driver); err != nil {
					return fmt.Errorf("persist run: %w", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&persistTraces, "persist", false, "Persist decision traces to the configured database")
	cmd.Flags().BoolVar(&enableMetrics, "metrics", false, "Register and populate Prometheus metrics during the run")
	cmd.Flags().BoolVar(&printEveryStep, "print-steps", true, "Print each selected process as \"<cycle>:<process>\"")

	return cmd
}

func persistRun(ctx context.Context, loaded *simulate.LoadedConfig, horizon int, driver *simulate.Driver) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load application config: %w", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	runRepo := persistence.NewGormRunRepository(db, nil)
	traceRepo := persistence.NewGormDecisionTraceRepository(db, nil)

	if err := runRepo.Create(ctx, string(driver.RunID()), horizon, loaded.Targets); err != nil {
		return err
	}
	traces := driver.Traces()
	if err := traceRepo.AppendBatch(ctx, traces); err != nil {
		return err
	}
	enteredCashFlowMode := false
	for _, trace := range traces {
		if trace.CashFlowMode {
			enteredCashFlowMode = true
			break
		}
	}
	return runRepo.MarkFinished(ctx, string(driver.RunID()), horizon-1, enteredCashFlowMode)
}
