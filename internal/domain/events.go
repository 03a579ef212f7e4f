package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunCompletedEvent is published to Redis Pub/Sub when a run finalizes, so
// the dashboard can refresh without polling the log table.
type RunCompletedEvent struct {
	WorkflowID     uuid.UUID `json:"workflow_id"`
	RunLogID       uuid.UUID `json:"run_log_id"`
	Status         RunStatus `json:"status"`
	OptionsUpdated int       `json:"options_updated"`
	OptionsFailed  int       `json:"options_failed"`
	CompletedAt    time.Time `json:"completed_at"`
}
