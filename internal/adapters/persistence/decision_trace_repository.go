package persistence

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/krpsim/krpsim-go/internal/application/simulate"
	"github.com/krpsim/krpsim-go/internal/domain/optimizer"
	"github.com/krpsim/krpsim-go/internal/domain/shared"
)

// DecisionTraceRepository persists and replays per-cycle selection traces.
type DecisionTraceRepository interface {
	Append(ctx context.Context, trace simulate.DecisionTrace) error
	AppendBatch(ctx context.Context, traces []simulate.DecisionTrace) error
	ForRun(ctx context.Context, runID simulate.RunID) ([]simulate.DecisionTrace, error)
}

// GormDecisionTraceRepository is a GORM-backed implementation of
// DecisionTraceRepository.
type GormDecisionTraceRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormDecisionTraceRepository builds a GormDecisionTraceRepository. A nil
// clock falls back to the real wall clock.
func NewGormDecisionTraceRepository(db *gorm.DB, clock shared.Clock) *GormDecisionTraceRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormDecisionTraceRepository{db: db, clock: clock}
}

func (r *GormDecisionTraceRepository) Append(ctx context.Context, trace simulate.DecisionTrace) error {
	model, err := toModel(trace, r.clock)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *GormDecisionTraceRepository) AppendBatch(ctx context.Context, traces []simulate.DecisionTrace) error {
	if len(traces) == 0 {
		return nil
	}
	models := make([]*DecisionTraceModel, 0, len(traces))
	for _, trace := range traces {
		model, err := toModel(trace, r.clock)
		if err != nil {
			return err
		}
		models = append(models, model)
	}
	return r.db.WithContext(ctx).CreateInBatches(models, 200).Error
}

func (r *GormDecisionTraceRepository) ForRun(ctx context.Context, runID simulate.RunID) ([]simulate.DecisionTrace, error) {
	var models []DecisionTraceModel
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", string(runID)).
		Order("cycle ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	traces := make([]simulate.DecisionTrace, 0, len(models))
	for _, model := range models {
		trace, err := fromModel(model)
		if err != nil {
			return nil, err
		}
		traces = append(traces, trace)
	}
	return traces, nil
}

func toModel(trace simulate.DecisionTrace, clock shared.Clock) (*DecisionTraceModel, error) {
	stocksJSON, err := json.Marshal(trace.StocksBefore)
	if err != nil {
		return nil, err
	}
	return &DecisionTraceModel{
		RunID:        string(trace.RunID),
		Cycle:        trace.Cycle,
		Process:      string(trace.Process),
		Selected:     trace.Selected,
		Phase:        trace.Phase.String(),
		CashFlowMode: trace.CashFlowMode,
		StocksBefore: string(stocksJSON),
		CreatedAt:    clock.Now(),
	}, nil
}

func fromModel(model DecisionTraceModel) (simulate.DecisionTrace, error) {
	stocks := map[string]int{}
	if model.StocksBefore != "" {
		if err := json.Unmarshal([]byte(model.StocksBefore), &stocks); err != nil {
			return simulate.DecisionTrace{}, err
		}
	}
	return simulate.DecisionTrace{
		RunID:        simulate.RunID(model.RunID),
		Cycle:        model.Cycle,
		Process:      optimizer.ProcessName(model.Process),
		Selected:     model.Selected,
		Phase:        optimizer.Phase(model.Phase),
		CashFlowMode: model.CashFlowMode,
		StocksBefore: stocks,
	}, nil
}
