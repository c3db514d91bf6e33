package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zwaTOx/MultiTasker/internal/domain"
)

func (h *Handler) CreateProject(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var request struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project name is required"})
		return
	}

	project, err := h.projects.Create(c.Request.Context(), userID, request.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// ListProjects returns every project the caller can open, optionally
// narrowed to one of the caller's categories.
func (h *Handler) ListProjects(c *gin.Context) {
	userID := c.GetInt64("user_id")

	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
			return
		}
		if _, err := h.categories.Get(c.Request.Context(), userID, categoryID); err != nil {
			respondError(c, err)
			return
		}
		result, err := h.members.ListAccessibleProjectsByCategory(c.Request.Context(), userID, categoryID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	result, err := h.members.ListAccessibleProjects(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListMyProjects returns only the projects the caller owns.
func (h *Handler) ListMyProjects(c *gin.Context) {
	userID := c.GetInt64("user_id")

	result, err := h.projects.ListOwned(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetProject(c *gin.Context) {
	userID := c.GetInt64("user_id")
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	// Unreachable projects are reported as absent so project ids cannot be
	// probed.
	allowed, err := h.guard.CanAccessProject(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !allowed {
		respondError(c, domain.ErrNotFound)
		return
	}

	project, err := h.projects.Get(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) RenameProject(c *gin.Context) {
	userID := c.GetInt64("user_id")
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	var request struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project name is required"})
		return
	}

	if !h.requireManageRights(c, userID, projectID) {
		return
	}
	if err := h.projects.Rename(c.Request.Context(), projectID, request.Name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project renamed"})
}

func (h *Handler) DeleteProject(c *gin.Context) {
	userID := c.GetInt64("user_id")
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	if !h.requireManageRights(c, userID, projectID) {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), projectID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetProjectCategory retags the caller's membership of the project. A null
// category clears the tag.
func (h *Handler) SetProjectCategory(c *gin.Context) {
	userID := c.GetInt64("user_id")
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	var request struct {
		CategoryID *int64 `json:"category_id"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.members.SetCategory(c.Request.Context(), userID, projectID, request.CategoryID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category updated"})
}

// requireManageRights answers project-level management checks, masking
// existence of unknown projects from actors without access.
func (h *Handler) requireManageRights(c *gin.Context, userID, projectID int64) bool {
	if _, err := h.projects.Get(c.Request.Context(), projectID); err != nil {
		respondError(c, err)
		return false
	}
	allowed, err := h.guard.CanManageMembership(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, err)
		return false
	}
	if !allowed {
		respondError(c, domain.ErrAccessDenied)
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

func queryID(c *gin.Context, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}
