package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"stockflow/internal/core/ports"
	"stockflow/internal/domain"
)

// Runner is the executor entrypoint the loop dispatches due workflows to.
type Runner interface {
	Execute(ctx context.Context, workflowID uuid.UUID) (*domain.RunLog, error)
}

// Scheduler periodically scans the store for due workflows and runs each in
// its own goroutine. Due workflows are independent and run in parallel; runs
// of the same workflow never overlap because next_run_at only advances when a
// run completes, and the executor's run lock covers manual triggers.
type Scheduler struct {
	workflows ports.WorkflowRepository
	runner    Runner
	interval  time.Duration
	now       func() time.Time
}

func NewScheduler(workflows ports.WorkflowRepository, runner Runner, interval time.Duration) *Scheduler {
	return &Scheduler{
		workflows: workflows,
		runner:    runner,
		interval:  interval,
		now:       time.Now,
	}
}

// Start begins the tick loop. Call this in main.go as a goroutine. On
// cancellation it waits for in-flight runs so no run log is left running.
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("Scheduler started, scanning every %s...", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var inFlight sync.WaitGroup
	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler shutting down, draining in-flight runs...")
			inFlight.Wait()
			log.Println("Scheduler stopped")
			return

		case <-ticker.C:
			s.dispatchDue(ctx, &inFlight)
		}
	}
}

func (s *Scheduler) dispatchDue(ctx context.Context, inFlight *sync.WaitGroup) {
	due, err := s.workflows.ListDue(ctx, s.now().UTC())
	if err != nil {
		log.Printf("Scheduler: due-workflow scan failed: %v", err)
		return
	}

	for _, workflow := range due {
		inFlight.Add(1)
		go func(workflow domain.Workflow) {
			defer inFlight.Done()
			log.Printf("Scheduler: workflow %s (%s) is due, executing...", workflow.Name, workflow.ID)

			run, err := s.runner.Execute(ctx, workflow.ID)
			switch {
			case errors.Is(err, domain.ErrRunInProgress):
				// A manual trigger beat us to it; the run will advance
				// next_run_at when it finishes.
				log.Printf("Scheduler: workflow %s already running, skipping", workflow.ID)
			case errors.Is(err, domain.ErrWorkflowNotFound):
				log.Printf("Scheduler: workflow %s deleted since scan, skipping", workflow.ID)
			case err != nil:
				log.Printf("Scheduler: workflow %s execution error: %v", workflow.ID, err)
			default:
				log.Printf("Scheduler: workflow %s run %s finished with status %s", workflow.ID, run.ID, run.Status)
			}
		}(workflow)
	}
}
