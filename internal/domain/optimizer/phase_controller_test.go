package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseController_StaysGatheringEarlyWithLowRatio(t *testing.T) {
	forge := NewProcess("forge", map[string]int{"bar": 5}, map[string]int{"sword": 1001}, 1)
	a, err := NewGraphAnalyzer().Analyze([]*Process{forge}, []string{"sword"}, 1000)
	require.NoError(t, err)

	c := NewPhaseController()
	phase := c.DetectPhase(0, Stocks{}, a, 1000, false)
	assert.Equal(t, PhaseGathering, phase)
}

func TestPhaseController_ForcesProductionAfterGatheringLimit(t *testing.T) {
	forge := NewProcess("forge", map[string]int{"bar": 5}, map[string]int{"sword": 1001}, 1)
	a, err := NewGraphAnalyzer().Analyze([]*Process{forge}, []string{"sword"}, 1000)
	require.NoError(t, err)

	c := NewPhaseController()
	phase := c.DetectPhase(a.GatheringLimitCycle+1, Stocks{}, a, 1000, false)
	assert.Equal(t, PhaseProduction, phase)
}

func TestPhaseController_SellingWhenHighValueRunnable(t *testing.T) {
	forge := NewProcess("forge", map[string]int{"bar": 5}, map[string]int{"sword": 1001}, 1)
	a, err := NewGraphAnalyzer().Analyze([]*Process{forge}, []string{"sword"}, 1000)
	require.NoError(t, err)

	c := NewPhaseController()
	phase := c.DetectPhase(10, Stocks{"bar": 100}, a, 1000, false)
	assert.Equal(t, PhaseSelling, phase)
}

func TestPhaseController_EffectiveReserveScalesByPhase(t *testing.T) {
	c := NewPhaseController()
	assert.Equal(t, 1, c.EffectiveReserve(1000, PhaseGathering))
	assert.Equal(t, 100, c.EffectiveReserve(1000, PhaseProduction))
	assert.Equal(t, 500, c.EffectiveReserve(1000, PhaseConversion))
	assert.Equal(t, 1000, c.EffectiveReserve(1000, PhaseSelling))
}
