package optimizer

// PhaseController is the per-cycle state machine of §4.2: four phases driven
// by stock ratios, cycle index, and executability, evaluated fresh every
// cycle so a run may move backward if conditions relax.
type PhaseController struct{}

func NewPhaseController() *PhaseController { return &PhaseController{} }

// DetectPhase implements the five ordered rules of §4.2.
func (c *PhaseController) DetectPhase(cycle int, stocks Stocks, a *Analysis, horizon int, everHighValueRunnable bool) Phase {
	canExecuteHV := c.canExecuteHighValue(stocks, a)
	ratio := c.valueChainStockRatio(stocks, a)

	if horizon > longHorizonThreshold && cycle >= int(0.8*float64(horizon)) && everHighValueRunnable {
		return PhaseSelling
	}
	if canExecuteHV {
		return PhaseSelling
	}
	if cycle > 1000 || ratio > 0.2 {
		return PhaseConversion
	}
	if cycle > 500 || ratio > 0.02 {
		return PhaseProduction
	}
	if cycle > a.GatheringLimitCycle {
		return PhaseProduction
	}
	return PhaseGathering
}

func (c *PhaseController) canExecuteHighValue(stocks Stocks, a *Analysis) bool {
	for name := range a.HighValue {
		if a.byName[name].Runnable(stocks) {
			return true
		}
	}
	return false
}

func (c *PhaseController) valueChainStockRatio(stocks Stocks, a *Analysis) float64 {
	stock, target := 0, 0
	for r := range a.ValueChainResources {
		stock += stocks.Get(r)
	}
	for _, bt := range a.BulkTargets {
		target += bt
	}
	if target == 0 {
		return 0
	}
	return float64(stock) / float64(target)
}

// EffectiveReserve scales a flat reserve by the phase-specific fraction of
// §E.3's supplemented "euro-reserve-aware" gating: 0.1% Gathering, 10%
// Production, 50% Conversion, 100% Selling/default.
func (c *PhaseController) EffectiveReserve(reserve int, phase Phase) int {
	var fraction float64
	switch phase {
	case PhaseGathering:
		fraction = 0.001
	case PhaseProduction:
		fraction = 0.1
	case PhaseConversion:
		fraction = 0.5
	default:
		fraction = 1.0
	}
	return int(float64(reserve) * fraction)
}
