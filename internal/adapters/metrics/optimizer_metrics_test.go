package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krpsim/krpsim-go/internal/application/simulate"
	"github.com/krpsim/krpsim-go/internal/domain/optimizer"
)

func TestOptimizerMetricsCollector_RegisterAndRecordSelection(t *testing.T) {
	Registry = nil
	InitRegistry()
	t.Cleanup(func() { Registry = nil })

	collector := NewOptimizerMetricsCollector()
	require.NoError(t, collector.Register())

	buy := optimizer.NewProcess("buy", map[string]int{"euro": 100}, map[string]int{"item": 1}, 1)
	sell := optimizer.NewProcess("sell", map[string]int{"item": 1}, map[string]int{"euro": 300}, 1)

	d, err := simulate.NewDriver(context.Background(), []*optimizer.Process{buy, sell}, []string{"euro"}, 10, optimizer.Stocks{"euro": 1000})
	require.NoError(t, err)
	d.WithMetrics(collector)
	d.Run(10)

	families, err := Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestOptimizerMetricsCollector_RegisterIsNoopWithoutRegistry(t *testing.T) {
	Registry = nil
	collector := NewOptimizerMetricsCollector()
	assert.NoError(t, collector.Register())
}
