package verify

import (
	"fmt"

	"github.com/krpsim/krpsim-go/internal/application/simulate"
	"github.com/krpsim/krpsim-go/internal/domain/optimizer"
)

// Violation describes a single trace entry that breaks a verified property.
type Violation struct {
	Cycle   int
	Process optimizer.ProcessName
	Reason  string
}

// Report is the outcome of replaying one run's recorded traces.
type Report struct {
	RunID      simulate.RunID
	Violations []Violation
}

func (r Report) OK() bool { return len(r.Violations) == 0 }

// Replay independently re-derives P5 and P1 from a persisted trace: every
// selected process must have been runnable from the stocks recorded just
// before it ran (P5), and the recorded decisions must be internally
// consistent with a monotonically increasing cycle (part of P1's
// determinism contract — a replayed trace from a deterministic run should
// never show the cycle argument going backward). This is out-of-band
// tooling around the core (§1's "trace report generator" exclusion), not
// part of the core's own contract.
func Replay(traces []simulate.DecisionTrace, byName map[optimizer.ProcessName]*optimizer.Process) Report {
	var report Report
	if len(traces) == 0 {
		return report
	}
	report.RunID = traces[0].RunID

	lastCycle := -1
	for _, trace := range traces {
		if trace.Cycle < lastCycle {
			report.Violations = append(report.Violations, Violation{
				Cycle:   trace.Cycle,
				Process: trace.Process,
				Reason:  fmt.Sprintf("cycle went backward from %d to %d", lastCycle, trace.Cycle),
			})
		}
		lastCycle = trace.Cycle

		if !trace.Selected {
			continue
		}
		p, known := byName[trace.Process]
		if !known {
			report.Violations = append(report.Violations, Violation{
				Cycle:   trace.Cycle,
				Process: trace.Process,
				Reason:  "selected process is not in the configured process list",
			})
			continue
		}
		if !p.Runnable(trace.StocksBefore) {
			report.Violations = append(report.Violations, Violation{
				Cycle:   trace.Cycle,
				Process: trace.Process,
				Reason:  "needs not satisfied by the recorded stocks",
			})
		}
	}
	return report
}
