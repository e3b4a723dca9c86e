package simulate

import "github.com/krpsim/krpsim-go/internal/domain/optimizer"

// RunID labels one simulation run for tracing and metrics.
type RunID string

// DecisionTrace records one Select call's inputs and outcome, the unit
// persisted by internal/adapters/persistence and replayed by
// internal/application/verify.
type DecisionTrace struct {
	RunID        RunID
	Cycle        int
	StocksBefore optimizer.Stocks
	Process      optimizer.ProcessName
	Selected     bool
	Phase        optimizer.Phase
	CashFlowMode bool
}

func copyStocks(s optimizer.Stocks) optimizer.Stocks {
	out := make(optimizer.Stocks, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
