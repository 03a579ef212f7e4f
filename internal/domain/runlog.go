package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
)

// RunLog is the audit record of one execution attempt. It is created in the
// running state and finalized exactly once into success or failed; a retry is
// always a brand-new RunLog, never a resumed one.
type RunLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;"`
	WorkflowID uuid.UUID `gorm:"type:uuid;index;not null"`

	Status      RunStatus `gorm:"type:varchar(10);index;default:'running'"`
	StartedAt   time.Time `gorm:"index;not null"`
	CompletedAt *time.Time

	OptionsUpdated int `gorm:"default:0"`
	OptionsFailed  int `gorm:"default:0"`

	ErrorMessage string         `gorm:"type:text"`
	Details      datatypes.JSON `gorm:"type:jsonb"`
}

func (RunLog) TableName() string {
	return "naver_inventory_workflow_logs"
}

// --- FACTORY ---
func NewRunLog(workflowID uuid.UUID, startedAt time.Time) *RunLog {
	return &RunLog{
		ID:         uuid.New(),
		WorkflowID: workflowID,
		Status:     RunRunning,
		StartedAt:  startedAt,
	}
}

// --- METHODS ---
func (l *RunLog) IsFinished() bool {
	return l.Status == RunSuccess || l.Status == RunFailed
}

// Summary renders the human-readable outcome shown as the workflow's
// last_run_message.
func (l *RunLog) Summary() string {
	if l.Status == RunFailed && l.ErrorMessage != "" {
		return l.ErrorMessage
	}
	return fmt.Sprintf("%d succeeded, %d failed", l.OptionsUpdated, l.OptionsFailed)
}
