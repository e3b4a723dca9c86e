package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/krpsim/krpsim-go/internal/application/simulate"
	"github.com/krpsim/krpsim-go/internal/application/verify"
	"github.com/krpsim/krpsim-go/internal/domain/optimizer"
)

// optimizerScenarioContext holds state for the process-selection run
// scenarios: a loaded process graph, the horizon to run it for, and the
// driver(s) produced by running it.
type optimizerScenarioContext struct {
	loaded  *simulate.LoadedConfig
	horizon int

	driver      *simulate.Driver
	secondDrive *simulate.Driver

	byName map[optimizer.ProcessName]*optimizer.Process
	err    error
}

func (c *optimizerScenarioContext) reset() {
	c.loaded = nil
	c.horizon = 0
	c.driver = nil
	c.secondDrive = nil
	c.byName = nil
	c.err = nil
}

func (c *optimizerScenarioContext) aProcessFile(doc *godog.DocString) error {
	loaded, err := simulate.ParseConfig(strings.NewReader(doc.Content))
	if err != nil {
		return err
	}
	c.loaded = loaded
	c.byName = make(map[optimizer.ProcessName]*optimizer.Process, len(loaded.Processes))
	for _, p := range loaded.Processes {
		c.byName[p.Name()] = p
	}
	return nil
}

func (c *optimizerScenarioContext) anEmptyProcessListWithTargets(targets string) error {
	c.loaded = &simulate.LoadedConfig{
		Stocks:    optimizer.Stocks{},
		Processes: nil,
		Targets:   strings.Split(targets, ","),
	}
	c.byName = map[optimizer.ProcessName]*optimizer.Process{}
	return nil
}

func (c *optimizerScenarioContext) aHorizonOfCycles(horizon int) error {
	c.horizon = horizon
	return nil
}

func (c *optimizerScenarioContext) iRunTheOptimizer() error {
	driver, err := simulate.NewDriver(context.Background(), c.loaded.Processes, c.loaded.Targets, c.horizon, c.loaded.Stocks)
	if err != nil {
		return err
	}
	driver.Run(c.horizon)
	c.driver = driver
	return nil
}

func (c *optimizerScenarioContext) iRunTheOptimizerTwiceFromTheSameInitialStocks() error {
	first, err := simulate.NewDriver(context.Background(), c.loaded.Processes, c.loaded.Targets, c.horizon, c.loaded.Stocks)
	if err != nil {
		return err
	}
	first.Run(c.horizon)

	second, err := simulate.NewDriver(context.Background(), c.loaded.Processes, c.loaded.Targets, c.horizon, c.loaded.Stocks)
	if err != nil {
		return err
	}
	second.Run(c.horizon)

	c.driver = first
	c.secondDrive = second
	return nil
}

func (c *optimizerScenarioContext) theFinalStockOfShouldBeAtLeast(resource string, minimum int) error {
	got := c.driver.Stocks().Get(resource)
	if got < minimum {
		return fmt.Errorf("expected %s >= %d, got %d", resource, minimum, got)
	}
	return nil
}

func (c *optimizerScenarioContext) theFinalStockOfShouldBeGreaterThan(resource string, floor int) error {
	got := c.driver.Stocks().Get(resource)
	if got <= floor {
		return fmt.Errorf("expected %s > %d, got %d", resource, floor, got)
	}
	return nil
}

func (c *optimizerScenarioContext) everySelectionShouldHaveBeenAffordableWhenItRan() error {
	report := verify.Replay(c.driver.Traces(), c.byName)
	if !report.OK() {
		return fmt.Errorf("replay found violations: %+v", report.Violations)
	}
	return nil
}

func (c *optimizerScenarioContext) theOptimizerNeverSelectsAnUnaffordableProcess() error {
	return c.everySelectionShouldHaveBeenAffordableWhenItRan()
}

func (c *optimizerScenarioContext) theRunNeverEntersCashFlowMode() error {
	for _, trace := range c.driver.Traces() {
		if trace.CashFlowMode {
			return fmt.Errorf("cycle %d entered cash-flow mode unexpectedly", trace.Cycle)
		}
	}
	return nil
}

func (c *optimizerScenarioContext) noCycleSelectsAProcess() error {
	for _, trace := range c.driver.Traces() {
		if trace.Selected {
			return fmt.Errorf("cycle %d unexpectedly selected %q", trace.Cycle, trace.Process)
		}
	}
	return nil
}

func (c *optimizerScenarioContext) bothRunsSelectTheSameProcessOnEveryCycle() error {
	a, b := c.driver.Traces(), c.secondDrive.Traces()
	if len(a) != len(b) {
		return fmt.Errorf("trace length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Process != b[i].Process || a[i].Selected != b[i].Selected {
			return fmt.Errorf("cycle %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
	return nil
}

func (c *optimizerScenarioContext) theStuckCounterNeverExceeds(max int) error {
	// Re-run step by step so we can observe StuckCounter after each cycle,
	// since the Driver doesn't expose per-cycle optimizer state.
	opt := optimizer.NewOptimizer()
	if err := opt.Initialize(c.loaded.Processes, c.loaded.Targets, c.horizon); err != nil {
		return err
	}
	stocks := make(optimizer.Stocks, len(c.loaded.Stocks))
	for k, v := range c.loaded.Stocks {
		stocks[k] = v
	}
	for cycle := 0; cycle < c.horizon; cycle++ {
		opt.Select(cycle, stocks)
		if opt.StuckCounter() > max {
			return fmt.Errorf("cycle %d: stuck counter %d exceeds %d", cycle, opt.StuckCounter(), max)
		}
	}
	return nil
}

// InitializeOptimizerScenarios registers the process-selection run scenarios.
func InitializeOptimizerScenarios(sc *godog.ScenarioContext) {
	c := &optimizerScenarioContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		c.reset()
		return ctx, nil
	})

	sc.Step(`^a process file:$`, c.aProcessFile)
	sc.Step(`^an empty process list with targets "([^"]*)"$`, c.anEmptyProcessListWithTargets)
	sc.Step(`^a horizon of (\d+) cycles$`, c.aHorizonOfCycles)
	sc.Step(`^I run the optimizer$`, c.iRunTheOptimizer)
	sc.Step(`^I run the optimizer twice from the same initial stocks$`, c.iRunTheOptimizerTwiceFromTheSameInitialStocks)
	sc.Step(`^the final stock of "([^"]*)" should be at least (\d+)$`, c.theFinalStockOfShouldBeAtLeast)
	sc.Step(`^the final stock of "([^"]*)" should be greater than (\d+)$`, c.theFinalStockOfShouldBeGreaterThan)
	sc.Step(`^every selection should have been affordable when it ran$`, c.everySelectionShouldHaveBeenAffordableWhenItRan)
	sc.Step(`^the optimizer never selects an unaffordable process$`, c.theOptimizerNeverSelectsAnUnaffordableProcess)
	sc.Step(`^the run never enters cash-flow mode$`, c.theRunNeverEntersCashFlowMode)
	sc.Step(`^no cycle selects a process$`, c.noCycleSelectsAProcess)
	sc.Step(`^both runs select the same process on every cycle$`, c.bothRunsSelectTheSameProcessOnEveryCycle)
	sc.Step(`^the stuck counter never exceeds (\d+)$`, c.theStuckCounterNeverExceeds)
}
