package dto

import (
	"time"

	"github.com/google/uuid"

	"stockflow/internal/domain"
)

type WorkflowResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	ScheduleType      string     `json:"schedule_type"`
	ScheduleTime      string     `json:"schedule_time"`
	ScheduleDays      []int      `json:"schedule_days,omitempty"`
	AllocationPercent int        `json:"allocation_percent"`
	IsActive          bool       `json:"is_active"`
	NextRunAt         time.Time  `json:"next_run_at"`
	LastRunAt         *time.Time `json:"last_run_at,omitempty"`
	LastRunStatus     string     `json:"last_run_status,omitempty"`
	LastRunMessage    string     `json:"last_run_message,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func NewWorkflowResponse(w *domain.Workflow) WorkflowResponse {
	return WorkflowResponse{
		ID:                w.ID,
		Name:              w.Name,
		Description:       w.Description,
		ScheduleType:      string(w.ScheduleType),
		ScheduleTime:      w.ScheduleTime,
		ScheduleDays:      []int(w.ScheduleDays),
		AllocationPercent: w.AllocationPercent,
		IsActive:          w.IsActive,
		NextRunAt:         w.NextRunAt,
		LastRunAt:         w.LastRunAt,
		LastRunStatus:     w.LastRunStatus,
		LastRunMessage:    w.LastRunMessage,
		CreatedAt:         w.CreatedAt,
	}
}

type RunLogResponse struct {
	ID             uuid.UUID  `json:"id"`
	WorkflowID     uuid.UUID  `json:"workflow_id"`
	Status         string     `json:"status"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	OptionsUpdated int        `json:"options_updated"`
	OptionsFailed  int        `json:"options_failed"`
	ErrorMessage   string     `json:"error_message,omitempty"`
}

func NewRunLogResponse(l *domain.RunLog) RunLogResponse {
	return RunLogResponse{
		ID:             l.ID,
		WorkflowID:     l.WorkflowID,
		Status:         string(l.Status),
		StartedAt:      l.StartedAt,
		CompletedAt:    l.CompletedAt,
		OptionsUpdated: l.OptionsUpdated,
		OptionsFailed:  l.OptionsFailed,
		ErrorMessage:   l.ErrorMessage,
	}
}

func NewRunLogResponses(logs []domain.RunLog) []RunLogResponse {
	out := make([]RunLogResponse, 0, len(logs))
	for i := range logs {
		out = append(out, NewRunLogResponse(&logs[i]))
	}
	return out
}
