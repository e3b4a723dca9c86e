package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoringEngine_BaseEfficiencyForEmptyNeeds(t *testing.T) {
	work := NewProcess("work", map[string]int{}, map[string]int{"euro": 1}, 1)
	a, err := NewGraphAnalyzer().Analyze([]*Process{work}, []string{"euro"}, 10)
	require.NoError(t, err)

	se := NewScoringEngine(NewPhaseController())
	score := se.baseEfficiency(work, a)
	assert.Equal(t, 100000.0, score)
}

// Scenario 3 — reservation: a high-value target producer should comfortably
// outscore a process that never touches the target at all.
func TestScoringEngine_HighValueTargetProducerOutscoresNonTargetProcess(t *testing.T) {
	sellCheap := NewProcess("sell_cheap", map[string]int{"euro": 1}, map[string]int{"junk": 1}, 1)
	buyElite := NewProcess("buy_elite", map[string]int{"euro": 100}, map[string]int{"gem": 1}, 1)

	a, err := NewGraphAnalyzer().Analyze([]*Process{sellCheap, buyElite}, []string{"gem"}, 10)
	require.NoError(t, err)
	require.True(t, a.HighValue[buyElite.Name()])

	stocks := Stocks{"euro": 200}
	se := NewScoringEngine(NewPhaseController())
	cheapScore := se.Score(sellCheap, stocks, a, PhaseProduction, false)
	eliteScore := se.Score(buyElite, stocks, a, PhaseProduction, false)
	assert.Less(t, cheapScore, eliteScore)
}

// Reservation penalty fires when a process directly competes with high-value
// demand for a target resource that is running low.
func TestScoringEngine_ReservationPenalizesStarvedTargetConsumer(t *testing.T) {
	junkBuyer := NewProcess("junk_buyer", map[string]int{"gem": 1}, map[string]int{"junk": 1}, 1)
	buyElite := NewProcess("buy_elite", map[string]int{"euro": 100}, map[string]int{"gem": 1}, 1)
	a, err := NewGraphAnalyzer().Analyze([]*Process{junkBuyer, buyElite}, []string{"gem"}, 10)
	require.NoError(t, err)

	factor := NewScoringEngine(NewPhaseController()).targetReservationPenalty(junkBuyer, Stocks{"gem": 0}, a, PhaseProduction, false)
	assert.Less(t, factor, 1.0)
}

func TestScoringEngine_GatheringPhaseSkipsReservationPenalty(t *testing.T) {
	sellCheap := NewProcess("sell_cheap", map[string]int{"euro": 1}, map[string]int{"junk": 1}, 1)
	buyElite := NewProcess("buy_elite", map[string]int{"euro": 100}, map[string]int{"gem": 1}, 1)
	a, err := NewGraphAnalyzer().Analyze([]*Process{sellCheap, buyElite}, []string{"gem"}, 10)
	require.NoError(t, err)

	se := NewScoringEngine(NewPhaseController())
	stocks := Stocks{"euro": 5}
	got := se.targetReservationPenalty(sellCheap, stocks, a, PhaseGathering, false)
	assert.Equal(t, 1.0, got)
}

func TestScoringEngine_CashFlowModeSkipsReservationPenalty(t *testing.T) {
	sellCheap := NewProcess("sell_cheap", map[string]int{"euro": 1}, map[string]int{"junk": 1}, 1)
	buyElite := NewProcess("buy_elite", map[string]int{"euro": 100}, map[string]int{"gem": 1}, 1)
	a, err := NewGraphAnalyzer().Analyze([]*Process{sellCheap, buyElite}, []string{"gem"}, 10)
	require.NoError(t, err)

	se := NewScoringEngine(NewPhaseController())
	got := se.targetReservationPenalty(sellCheap, Stocks{"euro": 5}, a, PhaseProduction, true)
	assert.Equal(t, 1.0, got)
}

// Scenario 5 — conversion-loop guard: a mutual pair (split/rejoin) that
// undoes itself should be penalized relative to an unaffected producer.
func TestScoringEngine_ConversionLoopGuardPenalizesMutualPair(t *testing.T) {
	split := NewProcess("split", map[string]int{"egg": 1}, map[string]int{"yolk": 1, "white": 1}, 1)
	rejoin := NewProcess("rejoin", map[string]int{"yolk": 1, "white": 1}, map[string]int{"egg": 1}, 1)
	use := NewProcess("use", map[string]int{"yolk": 10}, map[string]int{"euro": 1000}, 1)

	a, err := NewGraphAnalyzer().Analyze([]*Process{split, rejoin, use}, []string{"euro"}, 1000)
	require.NoError(t, err)
	require.True(t, a.HighValue[use.Name()])

	factor := NewScoringEngine(NewPhaseController()).conversionLoopFactor(rejoin, a)
	assert.Less(t, factor, 1.0)
}

func TestScoringEngine_IsGatherer(t *testing.T) {
	work := NewProcess("work", map[string]int{}, map[string]int{"euro": 1}, 1)
	smelt := NewProcess("smelt", map[string]int{"ore": 3}, map[string]int{"bar": 1}, 1)
	a := &Analysis{Targets: []string{"euro"}}
	assert.True(t, isGatherer(work, a))
	assert.False(t, isGatherer(smelt, a))
}
