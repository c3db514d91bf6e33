package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zwaTOx/MultiTasker/internal/domain"
)

// ListUsers returns either all users, or the members of one project when
// project_id is given.
func (h *Handler) ListUsers(c *gin.Context) {
	userID := c.GetInt64("user_id")

	raw := c.Query("project_id")
	if raw == "" {
		result, err := h.users.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	projectID, ok := queryID(c, raw)
	if !ok {
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
	if _, err := h.projects.Get(c.Request.Context(), projectID); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.members.ListMembers(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// InviteUser dispatches a project invitation to a known user id or to an
// email address, creating a placeholder account for unknown emails.
func (h *Handler) InviteUser(c *gin.Context) {
	userID := c.GetInt64("user_id")
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	var request struct {
		UserID *int64 `json:"user_id"`
		Email  string `json:"email"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if request.UserID == nil && request.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id or email is required"})
		return
	}

	err := h.invites.Invite(c.Request.Context(), userID, projectID, request.UserID, request.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation sent"})
}

// ConfirmInvite accepts an invite token. No session is required: the token
// itself identifies the invited user.
func (h *Handler) ConfirmInvite(c *gin.Context) {
	accepted, err := h.invites.Accept(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":    accepted.UserID,
		"project_id": accepted.ProjectID,
	})
}

func (h *Handler) LeaveProject(c *gin.Context) {
	userID := c.GetInt64("user_id")
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	if err := h.invites.Leave(c.Request.Context(), userID, projectID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) KickUser(c *gin.Context) {
	actorID := c.GetInt64("user_id")
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}
	targetID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	if err := h.invites.Kick(c.Request.Context(), actorID, targetID, projectID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
