package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zwaTOx/MultiTasker/internal/domain"
	"github.com/zwaTOx/MultiTasker/internal/tasks"
)

// ListTasks returns the caller's accessible tasks, filtered and sorted from
// query parameters.
func (h *Handler) ListTasks(c *gin.Context) {
	userID := c.GetInt64("user_id")

	filter := tasks.Filter{
		Name:         c.Query("name"),
		AssignedToMe: c.Query("on_me") == "true",
		SortBy:       c.Query("sort_by"),
		SortOrder:    c.Query("sort_order"),
	}
	for _, s := range splitParam(c.Query("status")) {
		filter.Status = append(filter.Status, domain.TaskStatus(s))
	}
	for _, s := range splitParam(c.Query("indicator")) {
		filter.Indicator = append(filter.Indicator, domain.TaskIndicator(s))
	}
	if raw := c.Query("project_id"); raw != "" {
		id, ok := queryID(c, raw)
		if !ok {
			return
		}
		filter.ProjectID = &id
	}
	if raw := c.Query("owner_id"); raw != "" {
		id, ok := queryID(c, raw)
		if !ok {
			return
		}
		filter.OwnerID = &id
	}
	if raw := c.Query("parent_task_id"); raw != "" {
		id, ok := queryID(c, raw)
		if !ok {
			return
		}
		filter.ParentTaskID = &id
	}

	if err := filter.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.tasks.ListAccessible(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) CreateTask(c *gin.Context) {
	userID := c.GetInt64("user_id")
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	var request struct {
		Name         string     `json:"name" binding:"required"`
		Description  string     `json:"description"`
		Indicator    string     `json:"indicator"`
		PerformerID  *int64     `json:"performer_id"`
		ParentTaskID *int64     `json:"parent_task_id"`
		Deadline     *time.Time `json:"deadline"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task name is required"})
		return
	}

	allowed, err := h.guard.CanAccessProject(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !allowed {
		respondError(c, domain.ErrNotFound)
		return
	}

	id, err := h.tasks.Create(c.Request.Context(), userID, projectID, tasks.CreateRequest{
		Name:         request.Name,
		Description:  request.Description,
		Indicator:    domain.TaskIndicator(request.Indicator),
		PerformerID:  request.PerformerID,
		ParentTaskID: request.ParentTaskID,
		Deadline:     request.Deadline,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) GetTask(c *gin.Context) {
	userID := c.GetInt64("user_id")
	taskID, ok := pathID(c, "task_id")
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	allowed, err := h.guard.CanAccessProject(c.Request.Context(), userID, task.ProjectID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !allowed {
		// Same answer as a missing task: ids must not be probeable.
		respondError(c, domain.ErrNotFound)
		return
	}

	detail, err := h.tasks.GetDetail(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	userID := c.GetInt64("user_id")
	taskID, ok := pathID(c, "task_id")
	if !ok {
		return
	}

	var request struct {
		Name        *string    `json:"name"`
		Description *string    `json:"description"`
		Status      *string    `json:"status"`
		Indicator   *string    `json:"indicator"`
		PerformerID *int64     `json:"performer_id"`
		Deadline    *time.Time `json:"deadline"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if _, ok := h.modifiableTask(c, userID, taskID); !ok {
		return
	}

	update := tasks.UpdateRequest{
		Name:        request.Name,
		Description: request.Description,
		PerformerID: request.PerformerID,
		Deadline:    request.Deadline,
	}
	if request.Status != nil {
		s := domain.TaskStatus(*request.Status)
		update.Status = &s
	}
	if request.Indicator != nil {
		i := domain.TaskIndicator(*request.Indicator)
		update.Indicator = &i
	}

	if err := h.tasks.Update(c.Request.Context(), taskID, update); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task updated"})
}

func (h *Handler) DeleteTask(c *gin.Context) {
	userID := c.GetInt64("user_id")
	taskID, ok := pathID(c, "task_id")
	if !ok {
		return
	}

	if _, ok := h.modifiableTask(c, userID, taskID); !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), taskID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// modifiableTask loads the task and enforces write access. Tasks in projects
// the actor cannot see are reported as absent; tasks the actor can see but
// not modify are denied.
func (h *Handler) modifiableTask(c *gin.Context, userID, taskID int64) (domain.Task, bool) {
	task, err := h.tasks.Get(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, err)
		return domain.Task{}, false
	}

	visible, err := h.guard.CanAccessProject(c.Request.Context(), userID, task.ProjectID)
	if err != nil {
		respondError(c, err)
		return domain.Task{}, false
	}
	if !visible {
		respondError(c, domain.ErrNotFound)
		return domain.Task{}, false
	}

	allowed, err := h.guard.CanModifyTask(c.Request.Context(), userID, task)
	if err != nil {
		respondError(c, err)
		return domain.Task{}, false
	}
	if !allowed {
		respondError(c, domain.ErrAccessDenied)
		return domain.Task{}, false
	}
	return task, true
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
