package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBottleneckDetector_ReturnsNoneWhenNoShortage(t *testing.T) {
	dig := NewProcess("dig", map[string]int{}, map[string]int{"ore": 1}, 1)
	forge := NewProcess("forge", map[string]int{"ore": 5}, map[string]int{"sword": 1001}, 1)
	a, err := NewGraphAnalyzer().Analyze([]*Process{dig, forge}, []string{"sword"}, 1000)
	require.NoError(t, err)

	stocks := Stocks{"ore": a.BulkTargets["ore"] + 100}
	_, ok := NewBottleneckDetector().Detect([]*Process{dig, forge}, a, stocks, PhaseProduction)
	assert.False(t, ok)
}

func TestBottleneckDetector_PrioritizesProducerOfShortResource(t *testing.T) {
	dig := NewProcess("dig", map[string]int{}, map[string]int{"ore": 1}, 1)
	forge := NewProcess("forge", map[string]int{"ore": 5}, map[string]int{"sword": 1001}, 1)
	a, err := NewGraphAnalyzer().Analyze([]*Process{dig, forge}, []string{"sword"}, 1000)
	require.NoError(t, err)

	stocks := Stocks{"ore": 0}
	proc, ok := NewBottleneckDetector().Detect([]*Process{dig}, a, stocks, PhaseProduction)
	require.True(t, ok)
	assert.Equal(t, dig.Name(), proc.Name())
}

func TestBottleneckDetector_OnlyConsidersRunnableCandidates(t *testing.T) {
	dig := NewProcess("dig", map[string]int{}, map[string]int{"ore": 1}, 1)
	forge := NewProcess("forge", map[string]int{"ore": 5}, map[string]int{"sword": 1001}, 1)
	a, err := NewGraphAnalyzer().Analyze([]*Process{dig, forge}, []string{"sword"}, 1000)
	require.NoError(t, err)

	stocks := Stocks{"ore": 0}
	// No runnable processes given, even though dig would otherwise resolve
	// the ore shortage: the detector must not invent a candidate outside
	// what the caller reports as currently runnable.
	_, ok := NewBottleneckDetector().Detect(nil, a, stocks, PhaseProduction)
	assert.False(t, ok)
}
