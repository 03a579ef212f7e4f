package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stockflow/internal/domain"
)

// WorkflowRepository is the durable store of workflow definitions.
type WorkflowRepository interface {
	Create(ctx context.Context, workflow *domain.Workflow) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Workflow, error)

	// List returns all workflows, newest first.
	List(ctx context.Context) ([]domain.Workflow, error)

	// ListDue returns active workflows whose next_run_at has passed. A
	// workflow mid-run is never returned because next_run_at only advances
	// when its run completes.
	ListDue(ctx context.Context, now time.Time) ([]domain.Workflow, error)

	Update(ctx context.Context, workflow *domain.Workflow) error

	// UpdateActive flips is_active; nextRunAt recompute on reactivation is
	// the caller's job so the same cadence fields drive both.
	UpdateActive(ctx context.Context, id uuid.UUID, active bool, nextRunAt *time.Time) error

	// UpdateRunSummary persists the post-run bookkeeping: last_run_* display
	// fields and the recomputed next_run_at. Only the Executor calls this.
	UpdateRunSummary(ctx context.Context, id uuid.UUID, runAt time.Time, status domain.RunStatus, message string, nextRunAt time.Time) error

	// Delete removes the workflow and cascades to its run logs.
	Delete(ctx context.Context, id uuid.UUID) error
}

// RunLogRepository is the append-mostly store of execution attempts.
type RunLogRepository interface {
	Create(ctx context.Context, log *domain.RunLog) error

	// Finalize is the single allowed post-creation mutation: the
	// running -> {success|failed} transition with its outcome fields.
	Finalize(ctx context.Context, log *domain.RunLog) error

	ListByWorkflow(ctx context.Context, workflowID uuid.UUID, limit int) ([]domain.RunLog, error)

	// ListRecent returns the newest run logs across all workflows.
	ListRecent(ctx context.Context, limit int) ([]domain.RunLog, error)
}

// StockSource reads the warehouse-available quantity per SKU. Always read
// fresh per run; a cached snapshot would silently misallocate.
type StockSource interface {
	WarehouseStock(ctx context.Context) (map[string]int, error)
}

// ListingSource reads the options currently listed on the channel.
type ListingSource interface {
	ListingOptions(ctx context.Context) ([]domain.ListingOption, error)
}

// MarketplaceGateway applies planned quantities to the external channel, one
// listing per call, reporting per-option outcomes.
type MarketplaceGateway interface {
	ApplyQuantities(ctx context.Context, update domain.ListingUpdate) ([]domain.OptionResult, error)
}

// RunLock guarantees at most one in-flight run per workflow, covering manual
// triggers racing the scheduler loop.
type RunLock interface {
	// Acquire returns false without blocking when the workflow is already
	// running.
	Acquire(ctx context.Context, workflowID uuid.UUID, ttl time.Duration) (bool, error)
	Release(ctx context.Context, workflowID uuid.UUID) error
}

// RunEventBus broadcasts finalized runs to interested consumers.
type RunEventBus interface {
	PublishRunCompleted(ctx context.Context, event domain.RunCompletedEvent) error
}
