package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stockflow/internal/api/dto"
	"stockflow/internal/domain"
	"stockflow/internal/service"
)

const defaultLogLimit = 50

type WorkflowHandler struct {
	service service.WorkflowService
}

func NewWorkflowHandler(svc service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{service: svc}
}

// Register wires the workflow routes onto an API group.
func (h *WorkflowHandler) Register(api *gin.RouterGroup) {
	api.GET("/workflows", h.ListWorkflows)
	api.POST("/workflows", h.CreateWorkflow)
	api.GET("/workflows/:id", h.GetWorkflow)
	api.PUT("/workflows/:id", h.UpdateWorkflow)
	api.DELETE("/workflows/:id", h.DeleteWorkflow)
	api.POST("/workflows/:id/toggle", h.ToggleWorkflow)
	api.POST("/workflows/:id/run", h.RunWorkflow)
	api.GET("/workflows/:id/logs", h.WorkflowLogs)
	api.GET("/workflow-logs", h.RecentLogs)
}

func (h *WorkflowHandler) ListWorkflows(c *gin.Context) {
	workflows, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]dto.WorkflowResponse, 0, len(workflows))
	for i := range workflows {
		out = append(out, dto.NewWorkflowResponse(&workflows[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *WorkflowHandler) CreateWorkflow(c *gin.Context) {
	var req dto.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workflow, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewWorkflowResponse(workflow))
}

func (h *WorkflowHandler) GetWorkflow(c *gin.Context) {
	id, ok := workflowID(c)
	if !ok {
		return
	}

	workflow, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewWorkflowResponse(workflow))
}

func (h *WorkflowHandler) UpdateWorkflow(c *gin.Context) {
	id, ok := workflowID(c)
	if !ok {
		return
	}

	var req dto.UpdateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workflow, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewWorkflowResponse(workflow))
}

func (h *WorkflowHandler) DeleteWorkflow(c *gin.Context) {
	id, ok := workflowID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *WorkflowHandler) ToggleWorkflow(c *gin.Context) {
	id, ok := workflowID(c)
	if !ok {
		return
	}

	var req dto.ToggleWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Toggle(c.Request.Context(), id, *req.IsActive); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RunWorkflow triggers one synchronous execution and returns its run log.
// The run is independent of the scheduled one: the run lock rejects it with
// a 409 if a scheduled run is already in flight.
func (h *WorkflowHandler) RunWorkflow(c *gin.Context) {
	id, ok := workflowID(c)
	if !ok {
		return
	}

	run, err := h.service.Trigger(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRunLogResponse(run))
}

func (h *WorkflowHandler) WorkflowLogs(c *gin.Context) {
	id, ok := workflowID(c)
	if !ok {
		return
	}

	logs, err := h.service.WorkflowLogs(c.Request.Context(), id, logLimit(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRunLogResponses(logs))
}

func (h *WorkflowHandler) RecentLogs(c *gin.Context) {
	logs, err := h.service.RecentLogs(c.Request.Context(), logLimit(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRunLogResponses(logs))
}

func workflowID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workflow id"})
		return uuid.Nil, false
	}
	return id, true
}

func logLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", ""))
	if err != nil || limit <= 0 || limit > 200 {
		return defaultLogLimit
	}
	return limit
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrWorkflowNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRunInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
