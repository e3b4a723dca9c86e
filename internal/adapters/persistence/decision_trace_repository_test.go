package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krpsim/krpsim-go/internal/adapters/persistence"
	"github.com/krpsim/krpsim-go/internal/application/simulate"
	"github.com/krpsim/krpsim-go/internal/domain/optimizer"
	"github.com/krpsim/krpsim-go/test/helpers"
)

func TestDecisionTraceRepository_AppendBatchAndForRun(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormDecisionTraceRepository(db, nil)

	traces := []simulate.DecisionTrace{
		{
			RunID:        "run-1",
			Cycle:        0,
			StocksBefore: optimizer.Stocks{"euro": 1000},
			Process:      "buy",
			Selected:     true,
			Phase:        optimizer.PhaseGathering,
			CashFlowMode: false,
		},
		{
			RunID:        "run-1",
			Cycle:        1,
			StocksBefore: optimizer.Stocks{"euro": 900, "item": 1},
			Process:      "sell",
			Selected:     true,
			Phase:        optimizer.PhaseSelling,
			CashFlowMode: false,
		},
	}

	require.NoError(t, repo.AppendBatch(context.Background(), traces))

	found, err := repo.ForRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, optimizer.ProcessName("buy"), found[0].Process)
	assert.Equal(t, 1000, found[0].StocksBefore["euro"])
	assert.Equal(t, optimizer.PhaseSelling, found[1].Phase)
}

func TestDecisionTraceRepository_AppendBatchEmptyIsNoop(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormDecisionTraceRepository(db, nil)

	require.NoError(t, repo.AppendBatch(context.Background(), nil))

	found, err := repo.ForRun(context.Background(), "missing-run")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestRunRepository_CreateAndMarkFinished(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRunRepository(db, nil)

	require.NoError(t, repo.Create(context.Background(), "run-1", 1000, []string{"euro"}))
	require.NoError(t, repo.MarkFinished(context.Background(), "run-1", 999, true))

	model, err := repo.Get(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, 999, model.FinalCycle)
	assert.True(t, model.EnteredCashFlowMode)
	assert.Equal(t, "euro", model.Targets)
}
