package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krpsim/krpsim-go/internal/adapters/persistence"
	"github.com/krpsim/krpsim-go/internal/application/simulate"
	"github.com/krpsim/krpsim-go/internal/application/verify"
	"github.com/krpsim/krpsim-go/internal/domain/optimizer"
	"github.com/krpsim/krpsim-go/internal/infrastructure/config"
	"github.com/krpsim/krpsim-go/internal/infrastructure/database"
)

// NewVerifyCommand builds the "krpsim verify" command: replay a persisted
// run's decision traces against the process list and report whether every
// selection was actually runnable from the stocks recorded just before it.
func NewVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <config-file> <run-id>",
		Short: "Replay a persisted run's decision trace and check it for violations",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := simulate.ParseConfigFile(args[0])
			if err != nil {
				return fmt.Errorf("parse config file: %w", err)
			}
			byName := make(map[optimizer.ProcessName]*optimizer.Process, len(loaded.Processes))
			for _, p := range loaded.Processes {
				byName[p.Name()] = p
			}

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load application config: %w", err)
			}
			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer database.Close(db)

			traceRepo := persistence.NewGormDecisionTraceRepository(db, nil)
			traces, err := traceRepo.ForRun(cmd.Context(), simulate.RunID(args[1]))
			if err != nil {
				return fmt.Errorf("load decision trace: %w", err)
			}
			if len(traces) == 0 {
				return fmt.Errorf("no decision trace found for run %q", args[1])
			}

			report := verify.Replay(traces, byName)
			if report.OK() {
				fmt.Printf("OK: %d cycles replayed, no violations\n", len(traces))
				return nil
			}

			fmt.Printf("KO: %d violation(s) found\n", len(report.Violations))
			for _, v := range report.Violations {
				fmt.Printf("  cycle %d, process %q: %s\n", v.Cycle, v.Process, v.Reason)
			}
			return fmt.Errorf("trace verification failed")
		},
	}

	return cmd
}
