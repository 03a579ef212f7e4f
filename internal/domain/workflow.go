package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ScheduleType string

const (
	ScheduleDaily  ScheduleType = "daily"
	ScheduleWeekly ScheduleType = "weekly"
)

var (
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrRunInProgress    = errors.New("workflow run already in progress")
)

// Workflow is a user-configured recurring inventory-allocation job.
type Workflow struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;"`
	Name        string    `gorm:"type:varchar(100);not null"`
	Description string    `gorm:"type:text"`

	// Cadence
	ScheduleType ScheduleType             `gorm:"type:varchar(10);not null"`
	ScheduleTime string                   `gorm:"type:varchar(5);not null"` // "HH:MM" in KST
	ScheduleDays datatypes.JSONSlice[int] `gorm:"type:jsonb"`               // weekday indices, weekly only

	AllocationPercent int  `gorm:"not null"`
	IsActive          bool `gorm:"index;default:true"`

	// Scheduling state
	NextRunAt time.Time `gorm:"index;not null"`

	// Last-run summary, display only. Run logs are the authoritative history.
	LastRunAt      *time.Time
	LastRunStatus  string `gorm:"type:varchar(10)"`
	LastRunMessage string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Workflow) TableName() string {
	return "naver_inventory_workflows"
}

// --- FACTORY ---
func NewWorkflow(name string, spec ScheduleSpec, allocationPercent int) *Workflow {
	return &Workflow{
		ID:                uuid.New(),
		Name:              name,
		ScheduleType:      spec.Type,
		ScheduleTime:      spec.TimeOfDay(),
		ScheduleDays:      datatypes.NewJSONSlice(spec.DayInts()),
		AllocationPercent: allocationPercent,
		IsActive:          true,
	}
}

// --- METHODS ---

// Spec rebuilds the typed cadence from the stored columns. Rows with a
// malformed schedule_time still produce a usable spec (midnight) so the
// calculator's defensive fallback applies instead of an executor crash.
func (w *Workflow) Spec() ScheduleSpec {
	spec := ScheduleSpec{Type: w.ScheduleType}
	spec.Hour, spec.Minute, _ = ParseScheduleTime(w.ScheduleTime)
	for _, d := range w.ScheduleDays {
		if d >= 0 && d <= 6 {
			spec.Days = append(spec.Days, time.Weekday(d))
		}
	}
	return spec
}

// ScheduleSpec is the tagged cadence variant passed to the schedule
// calculator. Days is meaningful only for ScheduleWeekly.
type ScheduleSpec struct {
	Type   ScheduleType
	Hour   int
	Minute int
	Days   []time.Weekday
}

func (s ScheduleSpec) TimeOfDay() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

func (s ScheduleSpec) DayInts() []int {
	if s.Type != ScheduleWeekly {
		return nil
	}
	days := make([]int, 0, len(s.Days))
	for _, d := range s.Days {
		days = append(days, int(d))
	}
	return days
}

// ParseScheduleTime parses an "HH:MM" time-of-day.
func ParseScheduleTime(value string) (hour, minute int, err error) {
	if _, err = fmt.Sscanf(value, "%2d:%2d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid schedule time %q: %w", value, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid schedule time %q", value)
	}
	return hour, minute, nil
}
