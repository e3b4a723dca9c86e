package optimizer

import (
	"sort"

	"github.com/krpsim/krpsim-go/pkg/utils"
)

const (
	longHorizonThreshold        = 50000
	defaultGatheringLimitCycle  = 300
	longHorizonGatheringLimit   = 500
	maxDepthIterations          = 10
	maxBulkTargetRecursionDepth = 3
)

// GraphAnalyzer performs the one-shot static pass over the process list that
// produces an immutable Analysis bundle. It holds no state of its own across
// calls; every Analyze invocation on the same inputs produces byte-identical
// output (P1's "same inputs, same output" extends to this layer too).
type GraphAnalyzer struct{}

func NewGraphAnalyzer() *GraphAnalyzer { return &GraphAnalyzer{} }

// Analyze validates the process graph and builds the Analysis artifact
// bundle. It returns *InvalidConfigError for a malformed graph.
func (g *GraphAnalyzer) Analyze(processes []*Process, targets []string, horizon int) (*Analysis, error) {
	if err := g.validate(processes, targets); err != nil {
		return nil, err
	}

	a := &Analysis{
		HighValue:              map[ProcessName]bool{},
		ValueChainResources:    map[string]bool{},
		ValueChainDepth:        map[string]int{},
		BulkTargets:            map[string]int{},
		IntermediateNeeds:      map[ProcessName]map[string]int{},
		TargetReserveNeeded:    map[string]int{},
		MaxProductionForTarget: map[string]int{},
		allProcesses:           processes,
		byName:                 map[ProcessName]*Process{},
		producersOf:            map[string][]*Process{},
	}

	for _, p := range processes {
		a.byName[p.Name()] = p
		for r := range p.Results() {
			a.producersOf[r] = append(a.producersOf[r], p)
		}
	}

	a.Targets, a.TimeOptimization = stripTimeTarget(targets)
	a.GatheringLimitCycle = defaultGatheringLimitCycle
	if horizon > longHorizonThreshold {
		a.GatheringLimitCycle = longHorizonGatheringLimit
	}
	a.ExecutionMultiplier = executionMultiplier(horizon)

	g.classifyHighValue(a, processes)
	if len(a.HighValue) == 0 {
		a.Degraded = true
		return a, nil
	}

	g.trackDependencies(a, processes)
	g.calculateDepth(a, processes)
	g.calculateBulkMultiplier(a, processes, horizon)
	g.calculateBulkTargets(a, processes)
	g.calculateTargetReserves(a, processes)
	g.calculateLiquidityTarget(a, processes)

	return a, nil
}

func (g *GraphAnalyzer) validate(processes []*Process, targets []string) error {
	// A zero-process graph degrades to "always selects none" (EmptyProcessList)
	// rather than failing validation - there is no process to have touched any
	// target, so the unknown-target check below does not apply here.
	if len(processes) == 0 {
		return nil
	}

	seen := map[ProcessName]bool{}
	touched := map[string]bool{}
	for _, p := range processes {
		if p.Delay() <= 0 {
			return NewInvalidConfigError(ReasonNonPositiveDelay, string(p.Name()))
		}
		if seen[p.Name()] {
			return NewInvalidConfigError(ReasonDuplicateName, string(p.Name()))
		}
		seen[p.Name()] = true
		for r := range p.Needs() {
			touched[r] = true
		}
		for r := range p.Results() {
			touched[r] = true
		}
	}
	for _, t := range targets {
		if t == "time" {
			continue
		}
		if !touched[t] {
			return NewInvalidConfigError(ReasonUnknownTarget, t)
		}
	}
	return nil
}

func stripTimeTarget(targets []string) ([]string, bool) {
	out := make([]string, 0, len(targets))
	hasTime := false
	for _, t := range targets {
		if t == "time" {
			hasTime = true
			continue
		}
		out = append(out, t)
	}
	return out, hasTime
}

func executionMultiplier(horizon int) float64 {
	switch {
	case horizon > longHorizonThreshold:
		return 5.0
	case horizon > 10000:
		return 2.0
	default:
		return 1.0
	}
}

// classifyHighValue implements spec §4.1's five-way disjunction.
func (g *GraphAnalyzer) classifyHighValue(a *Analysis, processes []*Process) {
	maxNet := map[string]int{}
	for _, t := range a.Targets {
		maxNet[t] = 0
	}
	for _, p := range processes {
		for _, t := range a.Targets {
			maxNet[t] = utils.Max(maxNet[t], p.Net(t))
		}
	}
	a.MaxProductionForTarget = maxNet

	for _, p := range processes {
		inputCost := p.InputCost()
		for _, t := range a.Targets {
			net := p.Net(t)
			mt := maxNet[t]
			switch {
			case net > 1000:
				a.HighValue[p.Name()] = true
			case mt > 0 && float64(net) >= 0.5*float64(mt):
				a.HighValue[p.Name()] = true
			case mt > 0 && net == mt:
				a.HighValue[p.Name()] = true
			case inputCost > 0 && net > 50*inputCost:
				a.HighValue[p.Name()] = true
			case p.Results()[t] > 10000:
				a.HighValue[p.Name()] = true
			}
		}
	}
}

// trackDependencies walks the needs of every high-value process recursively
// via producer lookup, guarded by a visited-resource set, collecting every
// encountered resource into ValueChainResources.
func (g *GraphAnalyzer) trackDependencies(a *Analysis, processes []*Process) {
	visited := map[string]bool{}
	var walk func(resource string)
	walk = func(resource string) {
		if visited[resource] {
			return
		}
		visited[resource] = true
		a.ValueChainResources[resource] = true
		for _, producer := range a.producersOf[resource] {
			for need := range producer.Needs() {
				walk(need)
			}
		}
	}
	for name := range a.HighValue {
		for need := range a.byName[name].Needs() {
			walk(need)
		}
		a.IntermediateNeeds[name] = copyIntMap(a.byName[name].Needs())
	}
}

// calculateDepth iteratively propagates depth upstream, bounded at
// maxDepthIterations passes, stopping early once a pass changes nothing.
func (g *GraphAnalyzer) calculateDepth(a *Analysis, processes []*Process) {
	for name := range a.HighValue {
		for need := range a.byName[name].Needs() {
			if cur, ok := a.ValueChainDepth[need]; !ok || cur > 1 {
				a.ValueChainDepth[need] = 1
			}
		}
	}

	for iter := 0; iter < maxDepthIterations; iter++ {
		changed := false
		for depth := 1; depth <= iter+1; depth++ {
			for resource, d := range snapshotDepth(a.ValueChainDepth) {
				if d != depth {
					continue
				}
				for _, producer := range a.producersOf[resource] {
					for need := range producer.Needs() {
						next := depth + 1
						if cur, ok := a.ValueChainDepth[need]; !ok || cur > next {
							a.ValueChainDepth[need] = next
							changed = true
						}
					}
				}
			}
		}
		if !changed {
			break
		}
	}
}

func snapshotDepth(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// calculateBulkMultiplier implements the adaptive-scale table of §4.1.
func (g *GraphAnalyzer) calculateBulkMultiplier(a *Analysis, processes []*Process, horizon int) {
	maxProduction := 0
	for _, p := range processes {
		for _, qty := range p.Results() {
			maxProduction = utils.Max(maxProduction, qty)
		}
	}

	var multiplier int
	switch {
	case maxProduction >= 10000:
		multiplier = 20
	case maxProduction >= 1000:
		multiplier = 10
	case maxProduction >= 100:
		multiplier = 5
	default:
		multiplier = 2
	}
	if horizon > longHorizonThreshold {
		multiplier *= 5
	}
	a.BulkMultiplier = multiplier
}

// calculateBulkTargets implements the depth-0 direct pass plus the
// reduced-factor upstream recursion up to maxBulkTargetRecursionDepth.
func (g *GraphAnalyzer) calculateBulkTargets(a *Analysis, processes []*Process) {
	for name := range a.HighValue {
		for r, qty := range a.byName[name].Needs() {
			needed := qty * a.BulkMultiplier
			if cur, ok := a.BulkTargets[r]; !ok || needed > cur {
				a.BulkTargets[r] = needed
			}
		}
	}

	for depth := 1; depth <= maxBulkTargetRecursionDepth; depth++ {
		for resource, d := range a.ValueChainDepth {
			if d != depth {
				continue
			}
			bulkAtResource, ok := a.BulkTargets[resource]
			if !ok {
				continue
			}
			for _, producer := range a.producersOf[resource] {
				productionPerRun := producer.Results()[resource]
				if productionPerRun <= 0 {
					continue
				}
				runsNeeded := (bulkAtResource + productionPerRun - 1) / productionPerRun

				for r, needQty := range producer.Needs() {
					// Reduction is keyed on the upstream resource's own
					// depth, not the depth of the resource we propagated
					// from: a depth-2 resource (e.g. ore behind bar) is
					// discounted 50%, a depth-1 resource is not.
					reduction := 1.0
					for i := 0; i < a.ValueChainDepth[r]-1; i++ {
						reduction *= 0.5
					}
					total := int(float64(needQty*runsNeeded) * reduction)
					if total <= 0 {
						continue
					}
					if cur, ok := a.BulkTargets[r]; !ok || total > cur {
						a.BulkTargets[r] = total
					}
				}
			}
		}
	}
}

// calculateTargetReserves implements the max-never-sum rule of §4.1, with a
// 5x factor for value-chain intermediates that run repeatedly. Reserves
// additionally scale by the adaptive execution multiplier (E.3), same as the
// original's `needs[target] * multiplier * execution_multiplier` - unlike
// bulk targets, whose own multiplier is already adaptive and so is not
// composed with it again.
func (g *GraphAnalyzer) calculateTargetReserves(a *Analysis, processes []*Process) {
	for _, t := range a.Targets {
		reserve := 0
		for name := range a.HighValue {
			need := a.byName[name].Needs()[t]
			needed := int(float64(need*a.BulkMultiplier) * a.ExecutionMultiplier)
			reserve = utils.Max(reserve, needed)
		}
		if a.ValueChainResources[t] {
			reserve = utils.Max(reserve, reserve*5)
		}
		a.TargetReserveNeeded[t] = reserve
	}
}

// calculateLiquidityTarget picks the first effective target also consumed by
// a high-value process, the supplemented "euro-reserve" analogue of E.3.
func (g *GraphAnalyzer) calculateLiquidityTarget(a *Analysis, processes []*Process) {
	names := make([]ProcessName, 0, len(a.HighValue))
	for name := range a.HighValue {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	for _, t := range a.Targets {
		for _, name := range names {
			if _, ok := a.byName[name].Needs()[t]; ok {
				a.LiquidityTarget = t
				return
			}
		}
	}
}
