package simulate

import (
	"context"

	"github.com/krpsim/krpsim-go/internal/domain/optimizer"
)

// IncrementalBuilder accumulates a process list learned incrementally (e.g.
// from a streaming config parser) and hands the full list to Initialize only
// once, preserving the core's full-list-at-Initialize contract. This is the
// Go analogue of the Python implementation's lazy analysis accumulation,
// kept out of the core itself per the core's typed-reimplementation
// contract.
type IncrementalBuilder struct {
	processes []*optimizer.Process
	targets   []string
	horizon   int
	stocks    optimizer.Stocks
}

// DiscoverThenInitialize starts an IncrementalBuilder for callers that only
// learn the process list piece by piece.
func DiscoverThenInitialize(targets []string, horizon int, initialStocks optimizer.Stocks) *IncrementalBuilder {
	return &IncrementalBuilder{targets: targets, horizon: horizon, stocks: initialStocks}
}

// Add appends a discovered process. Safe to call repeatedly before Finalize.
func (b *IncrementalBuilder) Add(p *optimizer.Process) {
	b.processes = append(b.processes, p)
}

// Finalize builds a Driver from everything accumulated so far.
func (b *IncrementalBuilder) Finalize(ctx context.Context) (*Driver, error) {
	return NewDriver(ctx, b.processes, b.targets, b.horizon, b.stocks)
}
