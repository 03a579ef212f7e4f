package dto

type CreateWorkflowRequest struct {
	Name              string `json:"name" binding:"required"`
	Description       string `json:"description"`
	ScheduleType      string `json:"schedule_type" binding:"required"`
	ScheduleTime      string `json:"schedule_time" binding:"required"`
	ScheduleDays      []int  `json:"schedule_days"`
	AllocationPercent *int   `json:"allocation_percent" binding:"required"`
}

type UpdateWorkflowRequest struct {
	Name              string `json:"name" binding:"required"`
	Description       string `json:"description"`
	ScheduleType      string `json:"schedule_type" binding:"required"`
	ScheduleTime      string `json:"schedule_time" binding:"required"`
	ScheduleDays      []int  `json:"schedule_days"`
	AllocationPercent *int   `json:"allocation_percent" binding:"required"`
}

type ToggleWorkflowRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
