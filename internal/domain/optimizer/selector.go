package optimizer

import (
	"sort"

	"github.com/krpsim/krpsim-go/pkg/utils"
)

const stuckThreshold = 3

// Optimizer is the single entry point the simulator talks to: an explicit
// value carrying immutable analysis and mutable phase state. Multiple
// optimizers may coexist; none share phase state (§5).
type Optimizer struct {
	analysis *Analysis
	horizon  int

	currentPhase       Phase
	stuckCounter       int
	cashFlowMode       bool
	everHighValueReady bool
	lastScore          float64
	lastBottleneckHit  bool

	graph       *GraphAnalyzer
	phases      *PhaseController
	scoring     *ScoringEngine
	bottlenecks *BottleneckDetector
}

func NewOptimizer() *Optimizer {
	phases := NewPhaseController()
	return &Optimizer{
		currentPhase: PhaseGathering,
		graph:        NewGraphAnalyzer(),
		phases:       phases,
		scoring:      NewScoringEngine(phases),
		bottlenecks:  NewBottleneckDetector(),
	}
}

// Initialize runs the Graph Analyzer once and resets phase state. It is the
// only operation that may fail.
func (o *Optimizer) Initialize(processes []*Process, targets []string, horizon int) error {
	analysis, err := o.graph.Analyze(processes, targets, horizon)
	if err != nil {
		return err
	}
	o.analysis = analysis
	o.horizon = horizon
	o.currentPhase = PhaseGathering
	o.stuckCounter = 0
	o.cashFlowMode = false
	o.everHighValueReady = false
	return nil
}

// Select implements the ten-step per-cycle procedure of §4.5.
func (o *Optimizer) Select(cycle int, stocks Stocks) (ProcessName, bool) {
	if o.analysis == nil || len(o.analysis.allProcesses) == 0 {
		return "", false
	}

	o.lastScore = 0
	o.lastBottleneckHit = false

	runnable := filterRunnable(o.analysis.allProcesses, stocks)
	if len(runnable) == 0 {
		o.stuckCounter++
		return "", false
	}

	if o.analysis.Degraded {
		// §7 NoHighValue mode: no process was ever classified high-value, so
		// the phase machine has nothing to transition toward and stays
		// permanently Gathering.
		o.currentPhase = PhaseGathering
	} else {
		if o.phases.canExecuteHighValue(stocks, o.analysis) {
			o.everHighValueReady = true
		}
		o.currentPhase = o.phases.DetectPhase(cycle, stocks, o.analysis, o.horizon, o.everHighValueReady)
	}

	if proc, ok := o.bottlenecks.Detect(runnable, o.analysis, stocks, o.currentPhase); ok {
		o.stuckCounter = 0
		o.lastBottleneckHit = true
		return proc.Name(), true
	}

	if best, ok := o.scoreAndSelect(runnable, stocks); ok {
		o.stuckCounter = 0
		o.cashFlowMode = false
		return best.Name(), true
	}

	o.stuckCounter++
	if o.stuckCounter >= stuckThreshold && !o.cashFlowMode {
		o.cashFlowMode = true
		if best, ok := o.scoreAndSelect(runnable, stocks); ok {
			return best.Name(), true
		}
	}
	return "", false
}

// Phase reports the current phase, mainly for the application layer's
// logging/metrics, not part of the core's contract with the simulator.
func (o *Optimizer) Phase() Phase { return o.currentPhase }

// CashFlowMode reports whether the stall-recovery mode is currently active.
func (o *Optimizer) CashFlowMode() bool { return o.cashFlowMode }

// StuckCounter reports the number of consecutive "none" selections.
func (o *Optimizer) StuckCounter() int { return o.stuckCounter }

// LastScore reports the winning score from the most recent Select call, 0
// when nothing was selected or the bottleneck detector short-circuited
// scoring entirely. Exposed for the application layer's metrics, not part
// of the core's contract.
func (o *Optimizer) LastScore() float64 { return o.lastScore }

// LastBottleneckHit reports whether the most recent Select call was decided
// by the bottleneck detector's short circuit rather than by scoring.
func (o *Optimizer) LastBottleneckHit() bool { return o.lastBottleneckHit }

func filterRunnable(processes []*Process, stocks Stocks) []*Process {
	out := make([]*Process, 0, len(processes))
	for _, p := range processes {
		if p.Runnable(stocks) {
			out = append(out, p)
		}
	}
	return out
}

type scoredProcess struct {
	process  *Process
	score    float64
	critical bool
	depth    int
}

// scoreAndSelect implements steps 4-8 of §4.5: score every runnable process,
// apply the high-value and critical-resource boosts, sort by the documented
// tuple, and return the top candidate if its score is positive.
func (o *Optimizer) scoreAndSelect(runnable []*Process, stocks Stocks) (*Process, bool) {
	a := o.analysis
	results := make([]scoredProcess, 0, len(runnable))

	for _, p := range runnable {
		score := o.scoring.Score(p, stocks, a, o.currentPhase, o.cashFlowMode)

		if a.HighValue[p.Name()] {
			switch {
			case canExecuteBulk(p, stocks, a.BulkMultiplier):
				if o.currentPhase == PhaseConversion || o.currentPhase == PhaseSelling {
					score *= 10000000.0
				} else {
					score *= 1000000.0
				}
			case p.Runnable(stocks):
				score *= 100.0
			}
		}

		critical, depth := criticalResourceBoost(p, stocks, a, o.currentPhase, o.phases, &score)

		results = append(results, scoredProcess{
			process:  p,
			score:    utils.ClampScore(score),
			critical: critical,
			depth:    depth,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		ri, rj := results[i], results[j]
		if ri.critical != rj.critical {
			return ri.critical
		}
		if ri.depth != rj.depth {
			return ri.depth < rj.depth
		}
		if ri.score != rj.score {
			return ri.score > rj.score
		}
		return ri.process.Name() < rj.process.Name()
	})

	if len(results) == 0 || results[0].score <= 0 {
		return nil, false
	}
	o.lastScore = results[0].score
	return results[0].process, true
}

// canExecuteBulk reports whether a high-value process could run again at
// full bulk scale from current stocks, i.e. every need is covered at
// bulkMultiplier times its base requirement.
func canExecuteBulk(p *Process, stocks Stocks, bulkMultiplier int) bool {
	for r, qty := range p.Needs() {
		if stocks.Get(r) < qty*bulkMultiplier {
			return false
		}
	}
	return true
}

// criticalResourceBoost implements step 6: any process producing a resource
// still below its bulk target earns a shortage-proportional multiplier and
// is flagged for the step-7 sort key. depth is the shallowest value-chain
// depth among the boosted outputs, used as the tie-break sort key; 0 when
// the process earned no boost (such processes already sort after every
// boosted one, because the critical flag is compared first).
// A gatherer that still needs the liquidity target but hasn't banked the
// phase-scaled reserve for it (E.3) earns no boost at all.
func criticalResourceBoost(p *Process, stocks Stocks, a *Analysis, phase Phase, phases *PhaseController, score *float64) (bool, int) {
	if isGatherer(p, a) && !liquidityReserveSatisfied(p, stocks, a, phase, phases) {
		return false, 0
	}

	critical := false
	depth := 0
	for r := range p.Results() {
		bt, ok := a.BulkTargets[r]
		if !ok {
			continue
		}
		cur := stocks.Get(r)
		if cur >= bt {
			continue
		}
		shortage := float64(bt - cur)
		boost := 100.0 + utils.MinFloat(shortage/10.0, 1000.0)
		*score *= boost
		critical = true
		if d, ok := a.ValueChainDepth[r]; ok {
			if depth == 0 || d < depth {
				depth = d
			}
		}
	}
	return critical, depth
}
