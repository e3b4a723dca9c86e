package persistence

import "time"

// RunModel persists one simulation run's identity and terminal outcome.
type RunModel struct {
	ID                  uint      `gorm:"primaryKey"`
	RunID               string    `gorm:"uniqueIndex;size:64;not null"`
	Horizon             int       `gorm:"not null"`
	Targets             string    `gorm:"size:512"` // comma-joined target resource names
	FinalCycle          int
	EnteredCashFlowMode bool
	CreatedAt           time.Time
}

// DecisionTraceModel persists one DecisionTrace row for replay and audit.
type DecisionTraceModel struct {
	ID           uint   `gorm:"primaryKey"`
	RunID        string `gorm:"index;size:64;not null"`
	Cycle        int    `gorm:"index;not null"`
	Process      string `gorm:"size:128"`
	Selected     bool
	Phase        string `gorm:"size:32"`
	CashFlowMode bool
	StocksBefore string `gorm:"type:text"` // JSON-encoded resource->quantity snapshot
	CreatedAt    time.Time
}
