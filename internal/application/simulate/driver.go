package simulate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/krpsim/krpsim-go/internal/application/common"
	"github.com/krpsim/krpsim-go/internal/domain/optimizer"
)

// MetricsRecorder is the subset of internal/adapters/metrics.OptimizerMetricsCollector
// the Driver depends on, kept as an interface so the application layer
// never imports the adapters package directly.
type MetricsRecorder interface {
	RecordSelection(runID string, name optimizer.ProcessName, selected bool, opt *optimizer.Optimizer)
}

const longHorizonTraceThreshold = 50000

type inFlight struct {
	process     *optimizer.Process
	completesAt int
}

// Driver is the application-layer simulation loop: it owns the stock
// vector, applies the needs/results delta for whatever the core selects,
// tracks in-flight delayed completions, and records a DecisionTrace per
// cycle. None of this belongs to the core (§6): the core only ever sees
// (cycle, stocks) and returns a name.
type Driver struct {
	runID RunID
	opt   *optimizer.Optimizer

	byName  map[optimizer.ProcessName]*optimizer.Process
	stocks  optimizer.Stocks
	pending []inFlight

	logger   common.RunLogger
	throttle *rate.Sometimes
	metrics  MetricsRecorder

	traces []DecisionTrace
}

// NewDriver initializes the core and returns a ready-to-run Driver.
func NewDriver(ctx context.Context, processes []*optimizer.Process, targets []string, horizon int, initialStocks optimizer.Stocks) (*Driver, error) {
	opt := optimizer.NewOptimizer()
	if err := opt.Initialize(processes, targets, horizon); err != nil {
		return nil, fmt.Errorf("initialize optimizer: %w", err)
	}

	byName := make(map[optimizer.ProcessName]*optimizer.Process, len(processes))
	for _, p := range processes {
		byName[p.Name()] = p
	}

	every := 1
	if horizon > longHorizonTraceThreshold {
		every = 200
	}

	return &Driver{
		runID:    RunID(uuid.NewString()),
		opt:      opt,
		byName:   byName,
		stocks:   copyStocks(initialStocks),
		logger:   common.LoggerFromContext(ctx),
		throttle: &rate.Sometimes{Every: every},
	}, nil
}

func (d *Driver) RunID() RunID { return d.runID }

// WithMetrics attaches a metrics recorder; every subsequent Step reports its
// outcome to it. Nil disables reporting.
func (d *Driver) WithMetrics(recorder MetricsRecorder) *Driver {
	d.metrics = recorder
	return d
}

// Stocks returns the current stock vector. Callers must not mutate the
// returned map.
func (d *Driver) Stocks() optimizer.Stocks { return d.stocks }

// Traces returns every DecisionTrace recorded so far.
func (d *Driver) Traces() []DecisionTrace { return d.traces }

// Run advances the simulation for the given number of cycles, calling Step
// once per cycle.
func (d *Driver) Run(horizon int) {
	for cycle := 0; cycle < horizon; cycle++ {
		d.Step(cycle)
	}
}

// Step applies completions due this cycle, consults the core, applies the
// chosen process's needs, and schedules its results for completion after
// its delay.
func (d *Driver) Step(cycle int) (optimizer.ProcessName, bool) {
	d.completePending(cycle)

	before := copyStocks(d.stocks)
	name, ok := d.opt.Select(cycle, d.stocks)

	if ok {
		p := d.byName[name]
		for r, qty := range p.Needs() {
			d.stocks[r] -= qty
		}
		d.pending = append(d.pending, inFlight{process: p, completesAt: cycle + p.Delay()})
	}

	d.recordTrace(cycle, name, ok, before)
	return name, ok
}

func (d *Driver) completePending(cycle int) {
	remaining := d.pending[:0]
	for _, pending := range d.pending {
		if pending.completesAt > cycle {
			remaining = append(remaining, pending)
			continue
		}
		for r, qty := range pending.process.Results() {
			d.stocks[r] += qty
		}
	}
	d.pending = remaining
}

func (d *Driver) recordTrace(cycle int, name optimizer.ProcessName, ok bool, before optimizer.Stocks) {
	trace := DecisionTrace{
		RunID:        d.runID,
		Cycle:        cycle,
		StocksBefore: before,
		Process:      name,
		Selected:     ok,
		Phase:        d.opt.Phase(),
		CashFlowMode: d.opt.CashFlowMode(),
	}
	d.traces = append(d.traces, trace)

	if d.metrics != nil {
		d.metrics.RecordSelection(string(d.runID), name, ok, d.opt)
	}

	d.throttle.Do(func() {
		d.logger.Log("debug", "decision", map[string]interface{}{
			"run_id":         string(d.runID),
			"cycle":          cycle,
			"process":        string(name),
			"selected":       ok,
			"phase":          d.opt.Phase().String(),
			"cash_flow_mode": d.opt.CashFlowMode(),
		})
	})
}
