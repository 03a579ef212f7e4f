package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stockflow/internal/core/ports"
	"stockflow/internal/domain"
)

type runLogRepository struct {
	db *gorm.DB
}

// NewRunLogRepository creates a new instance of RunLogRepository
func NewRunLogRepository(db *gorm.DB) ports.RunLogRepository {
	return &runLogRepository{db: db}
}

func (r *runLogRepository) Create(ctx context.Context, log *domain.RunLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// Finalize applies the single allowed post-creation transition. The status
// guard in the WHERE clause keeps finalized logs append-only: a second
// finalize attempt matches no rows instead of rewriting history.
func (r *runLogRepository) Finalize(ctx context.Context, log *domain.RunLog) error {
	result := r.db.WithContext(ctx).
		Model(&domain.RunLog{}).
		Where("id = ? AND status = ?", log.ID, domain.RunRunning).
		Updates(map[string]interface{}{
			"status":          log.Status,
			"completed_at":    log.CompletedAt,
			"options_updated": log.OptionsUpdated,
			"options_failed":  log.OptionsFailed,
			"error_message":   log.ErrorMessage,
			"details":         log.Details,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *runLogRepository) ListByWorkflow(ctx context.Context, workflowID uuid.UUID, limit int) ([]domain.RunLog, error) {
	var logs []domain.RunLog
	err := r.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Order("started_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *runLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.RunLog, error) {
	var logs []domain.RunLog
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
