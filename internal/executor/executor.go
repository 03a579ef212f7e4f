package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"stockflow/internal/core/ports"
	"stockflow/internal/domain"
	"stockflow/internal/metrics"
	"stockflow/internal/planner"
	"stockflow/internal/schedule"
)

// Extra lock TTL beyond the run deadline so the lock outlives a run that
// spends its full budget, but still expires if the process dies mid-run.
const lockSlack = time.Minute

// Executor drives one workflow run through its state machine:
// run log created running, allocation planned and applied, run log finalized
// into success or failed, schedule advanced. It guarantees the run log is
// finalized and next_run_at advanced on every path after step 3, including
// gateway failures and timeouts.
type Executor struct {
	workflows  ports.WorkflowRepository
	runLogs    ports.RunLogRepository
	stock      ports.StockSource
	listings   ports.ListingSource
	gateway    ports.MarketplaceGateway
	lock       ports.RunLock
	events     ports.RunEventBus
	metrics    *metrics.Metrics
	runTimeout time.Duration
	now        func() time.Time
}

func NewExecutor(
	workflows ports.WorkflowRepository,
	runLogs ports.RunLogRepository,
	stock ports.StockSource,
	listings ports.ListingSource,
	gateway ports.MarketplaceGateway,
	lock ports.RunLock,
	events ports.RunEventBus,
	m *metrics.Metrics,
	runTimeout time.Duration,
) *Executor {
	return &Executor{
		workflows:  workflows,
		runLogs:    runLogs,
		stock:      stock,
		listings:   listings,
		gateway:    gateway,
		lock:       lock,
		events:     events,
		metrics:    m,
		runTimeout: runTimeout,
		now:        time.Now,
	}
}

// Execute performs one run of the workflow. It returns the finalized run log;
// an error is returned only for failures before a run log exists (unknown
// workflow, lock contention), which leave no trace in the history.
func (e *Executor) Execute(ctx context.Context, workflowID uuid.UUID) (*domain.RunLog, error) {
	// 1. LOAD: nothing to attribute a run log to if the workflow is gone.
	workflow, err := e.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	// 2. LOCK: at most one in-flight run per workflow, covering manual
	// triggers racing the scheduler loop.
	acquired, err := e.lock.Acquire(ctx, workflow.ID, e.runTimeout+lockSlack)
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !acquired {
		return nil, domain.ErrRunInProgress
	}
	// Bookkeeping below must complete even when ctx is cancelled mid-run.
	persistCtx := context.WithoutCancel(ctx)
	defer e.lock.Release(persistCtx, workflow.ID)

	// 3. RUN LOG: created running, finalized exactly once below.
	run := domain.NewRunLog(workflow.ID, e.now().UTC())
	if err := e.runLogs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run log: %w", err)
	}
	log.Printf("Executor: workflow %s (%s) run %s started", workflow.Name, workflow.ID, run.ID)

	// 4. APPLY: bounded by the run deadline; a hung gateway degrades to a
	// failed run instead of blocking the scheduler.
	runCtx, cancel := context.WithTimeout(ctx, e.runTimeout)
	defer cancel()
	updated, failed, details, runErr := e.apply(runCtx, workflow)

	// 5. FINALIZE: the only post-creation mutation of the run log.
	completedAt := e.now().UTC()
	run.CompletedAt = &completedAt
	run.OptionsUpdated = updated
	run.OptionsFailed = failed
	run.Details = details
	switch {
	case runErr != nil:
		run.Status = domain.RunFailed
		run.ErrorMessage = runErr.Error()
	case failed > 0:
		run.Status = domain.RunFailed
	default:
		run.Status = domain.RunSuccess
	}

	if err := e.runLogs.Finalize(persistCtx, run); err != nil {
		log.Printf("Executor: failed to finalize run %s: %v", run.ID, err)
	}

	// 6. RESCHEDULE: unconditional, using the cadence currently stored on
	// the workflow. A failed run must not stall the recurring schedule.
	nextRunAt := schedule.NextRunAt(workflow.Spec(), e.now())
	if err := e.workflows.UpdateRunSummary(persistCtx, workflow.ID, run.StartedAt, run.Status, run.Summary(), nextRunAt); err != nil {
		log.Printf("Executor: failed to update workflow %s run summary: %v", workflow.ID, err)
	}

	e.metrics.ObserveRun(string(run.Status), updated, failed)
	e.publish(persistCtx, run)

	log.Printf("Executor: workflow %s run %s finished: %s (%s), next run %s",
		workflow.Name, run.ID, run.Status, run.Summary(), nextRunAt.Format(time.RFC3339))
	return run, nil
}

// apply reads fresh state, plans the diff and pushes it listing by listing.
// A failing listing never aborts the others; its options are counted failed
// and processing continues.
func (e *Executor) apply(ctx context.Context, workflow *domain.Workflow) (updated, failed int, details datatypes.JSON, err error) {
	// Snapshots are read per run, never cached: stale stock would silently
	// misallocate inventory.
	stock, err := e.stock.WarehouseStock(ctx)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("load warehouse stock: %w", err)
	}
	options, err := e.listings.ListingOptions(ctx)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("load listing options: %w", err)
	}

	changes := planner.Plan(workflow.AllocationPercent, stock, options)
	updates := planner.Group(changes)
	details, _ = json.Marshal(map[string]int{"updates": len(changes), "listings": len(updates)})

	// An empty plan is a successful run, not a skip: the schedule still
	// advances in step 6.
	for _, update := range updates {
		results, callErr := e.gateway.ApplyQuantities(ctx, update)
		if callErr != nil {
			log.Printf("Executor: listing %d update failed: %v", update.ListingID, callErr)
		}
		if len(results) == 0 {
			failed += len(update.Options)
			continue
		}
		for _, result := range results {
			if result.OK {
				updated++
			} else {
				failed++
			}
		}
	}

	return updated, failed, details, nil
}

func (e *Executor) publish(ctx context.Context, run *domain.RunLog) {
	if e.events == nil {
		return
	}
	event := domain.RunCompletedEvent{
		WorkflowID:     run.WorkflowID,
		RunLogID:       run.ID,
		Status:         run.Status,
		OptionsUpdated: run.OptionsUpdated,
		OptionsFailed:  run.OptionsFailed,
		CompletedAt:    *run.CompletedAt,
	}
	if err := e.events.PublishRunCompleted(ctx, event); err != nil {
		log.Printf("Executor: failed to publish run event for %s: %v", run.ID, err)
	}
}
