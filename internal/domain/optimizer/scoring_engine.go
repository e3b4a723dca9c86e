package optimizer

import "github.com/krpsim/krpsim-go/pkg/utils"

// ScoringEngine is the pure multi-step function of §4.3: base efficiency,
// target-production bonus, bulk-target modifiers, reservation penalties, and
// phase multipliers, composed in order, clamped finite and non-negative at
// every step.
type ScoringEngine struct {
	phases *PhaseController
}

func NewScoringEngine(phases *PhaseController) *ScoringEngine {
	return &ScoringEngine{phases: phases}
}

// Score produces a non-negative real score for a candidate process. It takes
// no cycle argument; every cycle-dependent decision already lives in phase.
func (se *ScoringEngine) Score(p *Process, stocks Stocks, a *Analysis, phase Phase, cashFlowMode bool) float64 {
	score := se.baseEfficiency(p, a)
	score += se.targetProductionBonus(p, a)
	score = utils.ClampScore(score)

	// §7 NoHighValue mode neutralizes steps 3-5; nothing to reserve or ration
	// when no process has been classified high-value.
	if !a.Degraded {
		score = utils.ClampScore(score * se.bulkConsumptionPenalty(p, stocks, a))
		score = utils.ClampScore(score * se.bulkProductionBonus(p, stocks, a))
		score = utils.ClampScore(score * se.scarcityMultiplier(p, stocks, a))
		score = utils.ClampScore(score * se.targetReservationPenalty(p, stocks, a, phase, cashFlowMode))
	}
	score = utils.ClampScore(score * se.phaseMultiplier(p, stocks, a, phase, cashFlowMode))
	score = utils.ClampScore(score * se.conversionLoopFactor(p, a))

	return score
}

// Step 1 — base efficiency.
func (se *ScoringEngine) baseEfficiency(p *Process, a *Analysis) float64 {
	outputValue := 0
	for _, t := range a.Targets {
		outputValue += p.Results()[t]
	}
	inputCost := p.InputCost()

	switch {
	case len(p.Needs()) == 0:
		return 100000
	case inputCost > 0:
		return (float64(outputValue) / float64(inputCost)) * 100
	default:
		return float64(outputValue) * 100
	}
}

// Step 2 — target-production bonus.
func (se *ScoringEngine) targetProductionBonus(p *Process, a *Analysis) float64 {
	np := 0
	for _, t := range a.Targets {
		np += p.Net(t)
	}
	bonus := float64(np) * 50000
	switch {
	case np > 10000:
		bonus *= 200
	case np > 1000:
		bonus *= 80
	case np > 100:
		bonus *= 30
	case np > 0:
		bonus *= 10
	}
	return bonus
}

// Step 3 — bulk-consumption penalty.
func (se *ScoringEngine) bulkConsumptionPenalty(p *Process, stocks Stocks, a *Analysis) float64 {
	consumesBulk := false
	for r := range p.Needs() {
		if bt, ok := a.BulkTargets[r]; ok && stocks.Get(r) < bt {
			consumesBulk = true
			break
		}
	}
	if !consumesBulk {
		return 1.0
	}
	for _, t := range a.Targets {
		if stocks.Get(t) < a.TargetReserveNeeded[t] && p.Net(t) > 0 {
			return 1.0
		}
	}
	return 0.0001
}

// Step 4 — bulk-production bonus.
func (se *ScoringEngine) bulkProductionBonus(p *Process, stocks Stocks, a *Analysis) float64 {
	factor := 1.0
	for r := range p.Results() {
		bt, ok := a.BulkTargets[r]
		if !ok || bt == 0 {
			continue
		}
		cur := stocks.Get(r)
		if cur < bt {
			shortage := float64(bt-cur) / float64(bt)
			factor *= 1000 + shortage*100000
		} else {
			factor *= 0.0001
		}
	}
	return factor
}

// Step 4b (supplemented, E.3) — value-chain scarcity multiplier, independent
// of whether a resource has a bulk target at all.
func (se *ScoringEngine) scarcityMultiplier(p *Process, stocks Stocks, a *Analysis) float64 {
	factor := 1.0
	for r := range p.Results() {
		if !a.ValueChainResources[r] {
			continue
		}
		switch cur := stocks.Get(r); {
		case cur == 0:
			factor *= 5.0
		case cur < 10:
			factor *= 3.0
		case cur < 30:
			factor *= 2.0
		}
	}
	return factor
}

// Step 5 — target-reservation penalty.
func (se *ScoringEngine) targetReservationPenalty(p *Process, stocks Stocks, a *Analysis, phase Phase, cashFlowMode bool) float64 {
	if phase == PhaseGathering || cashFlowMode {
		return 1.0
	}
	factor := 1.0
	producesValueChain := a.producesAny(p, a.ValueChainResources)
	for _, t := range a.Targets {
		need, ok := p.Needs()[t]
		if !ok {
			continue
		}
		available := stocks.Get(t) - a.TargetReserveNeeded[t]
		if available < need {
			switch {
			case a.HighValue[p.Name()]:
				// factor 1.0, no penalty
			case producesValueChain:
				factor *= 1.0 / 1000
			default:
				factor *= 1.0 / 10000000
			}
			continue
		}
		switch {
		case available < 100:
			factor *= 1.0 / 10000
		case available < 1000:
			factor *= 1.0 / 1000
		case available < 10000:
			factor *= 1.0 / 100
		default:
			factor *= 1.0 / 10
		}
	}
	return factor
}

// isGatherer matches §4.3 step 6: needs(p) is empty or every need is an
// effective target resource (the process only ever "buys" with target
// currency, never consumes an intermediate).
func isGatherer(p *Process, a *Analysis) bool {
	if len(p.Needs()) == 0 {
		return true
	}
	for r := range p.Needs() {
		if !a.isTarget(r) {
			return false
		}
	}
	return true
}

// liquidityReserveSatisfied gates a gatherer's "produces critical input"
// standing (E.3's euro-reserve-aware gating) behind the phase-scaled
// liquidity reserve: a gatherer that still needs the run's liquidity target
// only counts as supplying a critical input once enough of that target is
// already banked. A process that doesn't need the liquidity target at all,
// or a run with no liquidity target, is never gated.
func liquidityReserveSatisfied(p *Process, stocks Stocks, a *Analysis, phase Phase, phases *PhaseController) bool {
	if a.LiquidityTarget == "" {
		return true
	}
	if _, needsIt := p.Needs()[a.LiquidityTarget]; !needsIt {
		return true
	}
	reserve := phases.EffectiveReserve(a.TargetReserveNeeded[a.LiquidityTarget], phase)
	return stocks.Get(a.LiquidityTarget) >= reserve
}

// Step 6 — phase multipliers.
func (se *ScoringEngine) phaseMultiplier(p *Process, stocks Stocks, a *Analysis, phase Phase, cashFlowMode bool) float64 {
	gatherer := isGatherer(p, a)
	if cashFlowMode && gatherer {
		return 2.0
	}

	highValue := a.HighValue[p.Name()]
	depth, hasDepth := a.minDepthOfResults(p)
	depth1 := hasDepth && depth == 1
	depthDeep := hasDepth && depth >= 2

	factor := 1.0
	switch phase {
	case PhaseGathering:
		if gatherer && liquidityReserveSatisfied(p, stocks, a, phase, se.phases) {
			factor *= 2.0
		}
	case PhaseProduction:
		if gatherer {
			factor *= 0.0001
		}
		if depthDeep {
			factor *= 50.0
		}
	case PhaseConversion:
		if gatherer {
			factor *= 0.000001
		}
		if depth1 {
			factor *= 500.0
		} else if depthDeep {
			factor *= 100.0
		}
	case PhaseSelling:
		if highValue {
			factor *= 10000000.0
		}
		if gatherer {
			factor *= 0.00000001
		}
	}
	return factor
}

// producesBulkNeeded reports whether p produces any resource that has a bulk
// target in the analysis (used to moderate the loop guard). Current stock
// levels are not consulted.
func (se *ScoringEngine) producesBulkNeeded(p *Process, a *Analysis) bool {
	for r := range p.Results() {
		if _, ok := a.BulkTargets[r]; ok {
			return true
		}
	}
	return false
}

// Step 7 — conversion-loop guard, plus a penalty for a process that consumes
// one of its own outputs.
func (se *ScoringEngine) conversionLoopFactor(p *Process, a *Analysis) float64 {
	factor := 1.0
	bulkNeeded := se.producesBulkNeeded(p, a)

	for r := range p.Results() {
		if _, ok := p.Needs()[r]; ok {
			if bulkNeeded {
				factor *= 0.5
			} else {
				factor *= 0.01
			}
			break
		}
	}

	if a.HighValue[p.Name()] {
		return factor
	}
	if createsMutualLoop(p, a) {
		if bulkNeeded {
			factor *= 0.5
		} else {
			factor *= 0.00001
		}
	}
	return factor
}

// createsMutualLoop reports whether p consumes a resource produced by some
// other non-high-value process q, where q in turn consumes a resource
// produced by p — the direct-pair guard of §4.3 step 7.
func createsMutualLoop(p *Process, a *Analysis) bool {
	for need := range p.Needs() {
		for _, q := range a.producersOf[need] {
			if q.Name() == p.Name() || a.HighValue[q.Name()] {
				continue
			}
			for out := range p.Results() {
				if _, ok := q.Needs()[out]; ok {
					return true
				}
			}
		}
	}
	return false
}
