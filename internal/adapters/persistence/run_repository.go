package persistence

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/krpsim/krpsim-go/internal/domain/shared"
)

// RunRepository persists one row per simulation run.
type RunRepository interface {
	Create(ctx context.Context, runID string, horizon int, targets []string) error
	MarkFinished(ctx context.Context, runID string, finalCycle int, enteredCashFlowMode bool) error
	Get(ctx context.Context, runID string) (*RunModel, error)
}

// GormRunRepository is a GORM-backed implementation of RunRepository.
type GormRunRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormRunRepository builds a GormRunRepository. A nil clock falls back to
// the real wall clock.
func NewGormRunRepository(db *gorm.DB, clock shared.Clock) *GormRunRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormRunRepository{db: db, clock: clock}
}

func (r *GormRunRepository) Create(ctx context.Context, runID string, horizon int, targets []string) error {
	model := &RunModel{
		RunID:     runID,
		Horizon:   horizon,
		Targets:   strings.Join(targets, ","),
		CreatedAt: r.clock.Now(),
	}
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *GormRunRepository) MarkFinished(ctx context.Context, runID string, finalCycle int, enteredCashFlowMode bool) error {
	return r.db.WithContext(ctx).
		Model(&RunModel{}).
		Where("run_id = ?", runID).
		Updates(map[string]interface{}{
			"final_cycle":            finalCycle,
			"entered_cash_flow_mode": enteredCashFlowMode,
		}).Error
}

func (r *GormRunRepository) Get(ctx context.Context, runID string) (*RunModel, error) {
	var model RunModel
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&model).Error; err != nil {
		return nil, err
	}
	return &model, nil
}
