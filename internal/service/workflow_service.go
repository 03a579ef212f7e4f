package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"stockflow/internal/api/dto"
	"stockflow/internal/core/ports"
	"stockflow/internal/domain"
	"stockflow/internal/schedule"
)

// ErrInvalidInput wraps all request validation failures so the handler can
// map them to a 400.
var ErrInvalidInput = errors.New("invalid workflow input")

// Runner is the executor entrypoint used for manual triggers.
type Runner interface {
	Execute(ctx context.Context, workflowID uuid.UUID) (*domain.RunLog, error)
}

type WorkflowService interface {
	List(ctx context.Context) ([]domain.Workflow, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Workflow, error)
	Create(ctx context.Context, req dto.CreateWorkflowRequest) (*domain.Workflow, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateWorkflowRequest) (*domain.Workflow, error)
	Toggle(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	Trigger(ctx context.Context, id uuid.UUID) (*domain.RunLog, error)
	WorkflowLogs(ctx context.Context, id uuid.UUID, limit int) ([]domain.RunLog, error)
	RecentLogs(ctx context.Context, limit int) ([]domain.RunLog, error)
}

// The Implementation
type workflowService struct {
	workflows ports.WorkflowRepository
	runLogs   ports.RunLogRepository
	runner    Runner
	now       func() time.Time
}

// Constructor
func NewWorkflowService(workflows ports.WorkflowRepository, runLogs ports.RunLogRepository, runner Runner) WorkflowService {
	return &workflowService{
		workflows: workflows,
		runLogs:   runLogs,
		runner:    runner,
		now:       time.Now,
	}
}

func (s *workflowService) List(ctx context.Context) ([]domain.Workflow, error) {
	return s.workflows.List(ctx)
}

func (s *workflowService) Get(ctx context.Context, id uuid.UUID) (*domain.Workflow, error) {
	return s.workflows.GetByID(ctx, id)
}

func (s *workflowService) Create(ctx context.Context, req dto.CreateWorkflowRequest) (*domain.Workflow, error) {
	spec, err := parseSpec(req.ScheduleType, req.ScheduleTime, req.ScheduleDays)
	if err != nil {
		return nil, err
	}
	if err := validatePercent(req.AllocationPercent); err != nil {
		return nil, err
	}

	workflow := domain.NewWorkflow(req.Name, spec, *req.AllocationPercent)
	workflow.Description = req.Description
	workflow.NextRunAt = schedule.NextRunAt(spec, s.now())

	if err := s.workflows.Create(ctx, workflow); err != nil {
		return nil, err
	}
	return workflow, nil
}

func (s *workflowService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateWorkflowRequest) (*domain.Workflow, error) {
	spec, err := parseSpec(req.ScheduleType, req.ScheduleTime, req.ScheduleDays)
	if err != nil {
		return nil, err
	}
	if err := validatePercent(req.AllocationPercent); err != nil {
		return nil, err
	}

	workflow, err := s.workflows.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cadenceChanged := workflow.ScheduleType != spec.Type ||
		workflow.ScheduleTime != spec.TimeOfDay() ||
		!equalDays([]int(workflow.ScheduleDays), spec.DayInts())

	workflow.Name = req.Name
	workflow.Description = req.Description
	workflow.ScheduleType = spec.Type
	workflow.ScheduleTime = spec.TimeOfDay()
	workflow.ScheduleDays = datatypes.NewJSONSlice(spec.DayInts())
	workflow.AllocationPercent = *req.AllocationPercent

	// Edits to display fields keep the existing slot; a cadence change must
	// never leave a stale next_run_at behind.
	if cadenceChanged {
		workflow.NextRunAt = schedule.NextRunAt(spec, s.now())
	}

	if err := s.workflows.Update(ctx, workflow); err != nil {
		return nil, err
	}
	return workflow, nil
}

func (s *workflowService) Toggle(ctx context.Context, id uuid.UUID, active bool) error {
	if !active {
		return s.workflows.UpdateActive(ctx, id, false, nil)
	}

	// Reactivation recomputes next_run_at from the stored cadence; the old
	// slot may be long in the past and would fire immediately otherwise.
	workflow, err := s.workflows.GetByID(ctx, id)
	if err != nil {
		return err
	}
	nextRunAt := schedule.NextRunAt(workflow.Spec(), s.now())
	return s.workflows.UpdateActive(ctx, id, true, &nextRunAt)
}

func (s *workflowService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.workflows.Delete(ctx, id)
}

func (s *workflowService) Trigger(ctx context.Context, id uuid.UUID) (*domain.RunLog, error) {
	return s.runner.Execute(ctx, id)
}

func (s *workflowService) WorkflowLogs(ctx context.Context, id uuid.UUID, limit int) ([]domain.RunLog, error) {
	if _, err := s.workflows.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.runLogs.ListByWorkflow(ctx, id, limit)
}

func (s *workflowService) RecentLogs(ctx context.Context, limit int) ([]domain.RunLog, error) {
	return s.runLogs.ListRecent(ctx, limit)
}

func parseSpec(scheduleType, scheduleTime string, days []int) (domain.ScheduleSpec, error) {
	hour, minute, err := domain.ParseScheduleTime(scheduleTime)
	if err != nil {
		return domain.ScheduleSpec{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	spec := domain.ScheduleSpec{Hour: hour, Minute: minute}
	switch domain.ScheduleType(scheduleType) {
	case domain.ScheduleDaily:
		spec.Type = domain.ScheduleDaily

	case domain.ScheduleWeekly:
		spec.Type = domain.ScheduleWeekly
		// An empty day set would silently degrade to the calculator's
		// defensive daily fallback; reject it up front instead.
		if len(days) == 0 {
			return domain.ScheduleSpec{}, fmt.Errorf("%w: weekly schedule requires at least one day", ErrInvalidInput)
		}
		seen := make(map[int]bool)
		for _, day := range days {
			if day < 0 || day > 6 {
				return domain.ScheduleSpec{}, fmt.Errorf("%w: day index %d out of range", ErrInvalidInput, day)
			}
			if !seen[day] {
				seen[day] = true
				spec.Days = append(spec.Days, time.Weekday(day))
			}
		}

	default:
		return domain.ScheduleSpec{}, fmt.Errorf("%w: unknown schedule type %q", ErrInvalidInput, scheduleType)
	}

	return spec, nil
}

func validatePercent(percent *int) error {
	if percent == nil {
		return fmt.Errorf("%w: allocation percent is required", ErrInvalidInput)
	}
	if *percent < 0 || *percent > 100 {
		return fmt.Errorf("%w: allocation percent %d out of range", ErrInvalidInput, *percent)
	}
	return nil
}

func equalDays(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
