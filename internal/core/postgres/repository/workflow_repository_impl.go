package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stockflow/internal/core/ports"
	"stockflow/internal/domain"
)

type workflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository creates a new instance of WorkflowRepository
func NewWorkflowRepository(db *gorm.DB) ports.WorkflowRepository {
	return &workflowRepository{db: db}
}

func (r *workflowRepository) Create(ctx context.Context, workflow *domain.Workflow) error {
	return r.db.WithContext(ctx).Create(workflow).Error
}

func (r *workflowRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workflow, error) {
	var workflow domain.Workflow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&workflow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrWorkflowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *workflowRepository) List(ctx context.Context) ([]domain.Workflow, error) {
	var workflows []domain.Workflow
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&workflows).Error
	return workflows, err
}

func (r *workflowRepository) ListDue(ctx context.Context, now time.Time) ([]domain.Workflow, error) {
	var workflows []domain.Workflow
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND next_run_at <= ?", true, now).
		Order("next_run_at ASC").
		Find(&workflows).Error
	return workflows, err
}

func (r *workflowRepository) Update(ctx context.Context, workflow *domain.Workflow) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Workflow{}).
		Where("id = ?", workflow.ID).
		Updates(map[string]interface{}{
			"name":               workflow.Name,
			"description":        workflow.Description,
			"schedule_type":      workflow.ScheduleType,
			"schedule_time":      workflow.ScheduleTime,
			"schedule_days":      workflow.ScheduleDays,
			"allocation_percent": workflow.AllocationPercent,
			"next_run_at":        workflow.NextRunAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrWorkflowNotFound
	}
	return nil
}

func (r *workflowRepository) UpdateActive(ctx context.Context, id uuid.UUID, active bool, nextRunAt *time.Time) error {
	updates := map[string]interface{}{"is_active": active}
	if nextRunAt != nil {
		updates["next_run_at"] = *nextRunAt
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Workflow{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrWorkflowNotFound
	}
	return nil
}

// UpdateRunSummary writes the last_run_* display fields together with the
// recomputed next_run_at in one statement, so the scheduler can never observe
// a completed run that is still due.
func (r *workflowRepository) UpdateRunSummary(ctx context.Context, id uuid.UUID, runAt time.Time, status domain.RunStatus, message string, nextRunAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Workflow{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_run_at":      runAt,
			"last_run_status":  string(status),
			"last_run_message": message,
			"next_run_at":      nextRunAt,
		}).Error
}

func (r *workflowRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workflow_id = ?", id).Delete(&domain.RunLog{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&domain.Workflow{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrWorkflowNotFound
		}
		return nil
	})
}
