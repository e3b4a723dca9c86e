package verify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krpsim/krpsim-go/internal/application/simulate"
	"github.com/krpsim/krpsim-go/internal/domain/optimizer"
)

func buildProcesses() []*optimizer.Process {
	buy := optimizer.NewProcess("buy", map[string]int{"euro": 100}, map[string]int{"item": 1}, 1)
	sell := optimizer.NewProcess("sell", map[string]int{"item": 1}, map[string]int{"euro": 300}, 1)
	return []*optimizer.Process{buy, sell}
}

func byNameOf(processes []*optimizer.Process) map[optimizer.ProcessName]*optimizer.Process {
	out := make(map[optimizer.ProcessName]*optimizer.Process, len(processes))
	for _, p := range processes {
		out[p.Name()] = p
	}
	return out
}

func TestReplay_CleanRunHasNoViolations(t *testing.T) {
	processes := buildProcesses()
	d, err := simulate.NewDriver(context.Background(), processes, []string{"euro"}, 10, optimizer.Stocks{"euro": 1000})
	require.NoError(t, err)
	d.Run(10)

	report := Replay(d.Traces(), byNameOf(processes))
	assert.True(t, report.OK(), "violations: %+v", report.Violations)
	assert.Equal(t, d.RunID(), report.RunID)
}

func TestReplay_FlagsSelectionUnaffordableFromRecordedStocks(t *testing.T) {
	processes := buildProcesses()
	byName := byNameOf(processes)

	traces := []simulate.DecisionTrace{
		{
			RunID:        "run-1",
			Cycle:        0,
			StocksBefore: optimizer.Stocks{"euro": 0},
			Process:      "buy",
			Selected:     true,
			Phase:        optimizer.PhaseGathering,
		},
	}

	report := Replay(traces, byName)
	require.False(t, report.OK())
	assert.Equal(t, "buy", string(report.Violations[0].Process))
}

func TestReplay_FlagsCycleGoingBackward(t *testing.T) {
	processes := buildProcesses()
	byName := byNameOf(processes)

	traces := []simulate.DecisionTrace{
		{RunID: "run-1", Cycle: 5, StocksBefore: optimizer.Stocks{}, Selected: false},
		{RunID: "run-1", Cycle: 3, StocksBefore: optimizer.Stocks{}, Selected: false},
	}

	report := Replay(traces, byName)
	require.False(t, report.OK())
	assert.Contains(t, report.Violations[0].Reason, "backward")
}

func TestReplay_EmptyTraceListIsOK(t *testing.T) {
	report := Replay(nil, map[optimizer.ProcessName]*optimizer.Process{})
	assert.True(t, report.OK())
	assert.Empty(t, report.RunID)
}

func TestReplay_FlagsUnknownProcessName(t *testing.T) {
	traces := []simulate.DecisionTrace{
		{RunID: "run-1", Cycle: 0, StocksBefore: optimizer.Stocks{"euro": 1000}, Process: "ghost", Selected: true},
	}
	report := Replay(traces, map[optimizer.ProcessName]*optimizer.Process{})
	require.False(t, report.OK())
	assert.Contains(t, report.Violations[0].Reason, "not in the configured process list")
}
