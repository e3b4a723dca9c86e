package optimizer

import "sort"

// bottleneckCandidate pairs a producer with the priority it earns for
// relieving a specific blocking resource.
type bottleneckCandidate struct {
	process  *Process
	priority float64
	resource string
	depth    int
}

// BottleneckDetector implements §4.4: a short-circuit that fires before
// normal scoring whenever a value-chain resource or a high-value process's
// direct input is starved and an affordable producer exists.
type BottleneckDetector struct{}

func NewBottleneckDetector() *BottleneckDetector { return &BottleneckDetector{} }

// Detect returns the process the Selector should run this cycle, or false if
// no bottleneck override applies (ordinary scoring should proceed).
func (d *BottleneckDetector) Detect(runnable []*Process, a *Analysis, stocks Stocks, phase Phase) (*Process, bool) {
	candidates := d.valueChainBottlenecks(a, stocks)
	candidates = append(candidates, d.highValueBlockers(a, stocks, phase)...)
	if len(candidates) == 0 {
		return nil, false
	}

	affordable := d.filterAffordable(candidates, runnable, a)
	if len(affordable) == 0 {
		return nil, false
	}

	sort.SliceStable(affordable, func(i, j int) bool {
		ci, cj := affordable[i], affordable[j]
		if ci.priority != cj.priority {
			return ci.priority > cj.priority
		}
		if ci.depth != cj.depth {
			return ci.depth < cj.depth
		}
		if ci.process.Delay() != cj.process.Delay() {
			return ci.process.Delay() < cj.process.Delay()
		}
		return ci.process.Name() < cj.process.Name()
	})
	return affordable[0].process, true
}

func (d *BottleneckDetector) valueChainBottlenecks(a *Analysis, stocks Stocks) []bottleneckCandidate {
	var out []bottleneckCandidate
	for r := range a.ValueChainResources {
		bt, ok := a.BulkTargets[r]
		if !ok {
			continue
		}
		cur := stocks.Get(r)
		if cur >= bt {
			continue
		}
		urgency := float64(bt-cur) * 1000.0
		downstream := d.downstreamValue(r, a)
		for _, p := range a.producersOf[r] {
			out = append(out, bottleneckCandidate{
				process:  p,
				priority: downstream + urgency,
				resource: r,
				depth:    a.ValueChainDepth[r],
			})
		}
	}
	return out
}

// downstreamValue sums 100 per unit of the resource that each high-value
// process needs directly, falling back to a flat constant for any other
// value-chain resource. The net target production of those consumers is not
// used, and high-value processes that need the resource only through
// intermediate steps do not contribute.
func (d *BottleneckDetector) downstreamValue(resource string, a *Analysis) float64 {
	sum := 0.0
	for _, needs := range a.IntermediateNeeds {
		if qty, ok := needs[resource]; ok {
			sum += float64(qty) * 100.0
		}
	}
	if sum > 0 {
		return sum
	}
	if a.ValueChainResources[resource] {
		return 10.0
	}
	return 0.0
}

func (d *BottleneckDetector) highValueBlockers(a *Analysis, stocks Stocks, phase Phase) []bottleneckCandidate {
	if phase != PhaseConversion && phase != PhaseSelling {
		return nil
	}
	var out []bottleneckCandidate
	for name := range a.HighValue {
		hv := a.byName[name]
		for r, qty := range hv.Needs() {
			need := qty * a.BulkMultiplier
			have := stocks.Get(r)
			if have >= need {
				continue
			}
			priority := 10000000.0 + float64(need-have)*10000.0
			for _, p := range a.producersOf[r] {
				out = append(out, bottleneckCandidate{
					process:  p,
					priority: priority,
					resource: r,
					depth:    a.ValueChainDepth[r],
				})
			}
		}
	}
	return out
}

// filterAffordable restricts candidates to processes runnable right now and
// excludes non-high-value mutual-loop creators unless they produce a resource
// that has a bulk target (the same createsMutualLoop check the Scoring Engine
// uses). Gatherers are not filtered by target reserves here.
func (d *BottleneckDetector) filterAffordable(candidates []bottleneckCandidate, runnable []*Process, a *Analysis) []bottleneckCandidate {
	runnableSet := map[ProcessName]bool{}
	for _, p := range runnable {
		runnableSet[p.Name()] = true
	}

	out := make([]bottleneckCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !runnableSet[c.process.Name()] {
			continue
		}
		bulkNeeded := false
		for r := range c.process.Results() {
			if _, ok := a.BulkTargets[r]; ok {
				bulkNeeded = true
				break
			}
		}
		if !a.HighValue[c.process.Name()] && createsMutualLoop(c.process, a) && !bulkNeeded {
			continue
		}
		out = append(out, c)
	}
	return out
}
