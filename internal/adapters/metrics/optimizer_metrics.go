package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/krpsim/krpsim-go/internal/domain/optimizer"
)

// OptimizerMetricsCollector exposes the process-selection core's live state
// to Prometheus: which phase a run is in, whether it has stalled into
// cash-flow mode, and how selections and scores are distributed over time.
type OptimizerMetricsCollector struct {
	phase            *prometheus.GaugeVec
	stuckCounter     *prometheus.GaugeVec
	cashFlowMode     *prometheus.GaugeVec
	selectionsByName *prometheus.CounterVec
	bottleneckHits   *prometheus.CounterVec
	noSelection      *prometheus.CounterVec
	scoreHistogram   *prometheus.HistogramVec
}

// NewOptimizerMetricsCollector builds an OptimizerMetricsCollector. Call
// Register to attach it to the active registry.
func NewOptimizerMetricsCollector() *OptimizerMetricsCollector {
	return &OptimizerMetricsCollector{
		phase: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "phase",
				Help:      "Current phase by run (1 if active, labeled by phase name)",
			},
			[]string{"run_id", "phase"},
		),
		stuckCounter: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stuck_counter",
				Help:      "Consecutive cycles without a runnable selection, by run",
			},
			[]string{"run_id"},
		),
		cashFlowMode: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cash_flow_mode",
				Help:      "1 if the run is in cash-flow-mode fallback, else 0",
			},
			[]string{"run_id"},
		),
		selectionsByName: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "selections_total",
				Help:      "Total selections by process name and phase",
			},
			[]string{"run_id", "process", "phase"},
		),
		bottleneckHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "bottleneck_overrides_total",
				Help:      "Total selections decided by the bottleneck detector short-circuit",
			},
			[]string{"run_id"},
		),
		noSelection: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "no_selection_total",
				Help:      "Total cycles with no runnable process",
			},
			[]string{"run_id"},
		),
		scoreHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "selection_score",
				Help:      "Distribution of the winning process's score per cycle",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"run_id", "phase"},
		),
	}
}

// Register attaches every collector to the active registry. A no-op when
// metrics are disabled.
func (c *OptimizerMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	collectors := []prometheus.Collector{
		c.phase,
		c.stuckCounter,
		c.cashFlowMode,
		c.selectionsByName,
		c.bottleneckHits,
		c.noSelection,
		c.scoreHistogram,
	}
	for _, collector := range collectors {
		if err := Registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// RecordSelection records one Select outcome, reading the run's non-contractual
// observability accessors (Phase, StuckCounter, CashFlowMode, LastScore,
// LastBottleneckHit) rather than taking them as separate parameters.
func (c *OptimizerMetricsCollector) RecordSelection(runID string, name optimizer.ProcessName, selected bool, opt *optimizer.Optimizer) {
	phase := opt.Phase()

	c.phase.Reset()
	c.phase.WithLabelValues(runID, phase.String()).Set(1)
	c.stuckCounter.WithLabelValues(runID).Set(float64(opt.StuckCounter()))

	cashFlowValue := 0.0
	if opt.CashFlowMode() {
		cashFlowValue = 1.0
	}
	c.cashFlowMode.WithLabelValues(runID).Set(cashFlowValue)

	if !selected {
		c.noSelection.WithLabelValues(runID).Inc()
		return
	}

	if opt.LastBottleneckHit() {
		c.bottleneckHits.WithLabelValues(runID).Inc()
	}

	c.selectionsByName.WithLabelValues(runID, string(name), phase.String()).Inc()
	c.scoreHistogram.WithLabelValues(runID, phase.String()).Observe(opt.LastScore())
}
