package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateCategory(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var request struct {
		Name  string `json:"name" binding:"required"`
		Color string `json:"color"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	}

	created, err := h.categories.Create(c.Request.Context(), userID, request.Name, request.Color)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) ListCategories(c *gin.Context) {
	userID := c.GetInt64("user_id")

	result, err := h.categories.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	userID := c.GetInt64("user_id")
	categoryID, ok := pathID(c, "category_id")
	if !ok {
		return
	}

	var request struct {
		Name  string `json:"name" binding:"required"`
		Color string `json:"color"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	}

	if err := h.categories.Update(c.Request.Context(), userID, categoryID, request.Name, request.Color); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category updated"})
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	userID := c.GetInt64("user_id")
	categoryID, ok := pathID(c, "category_id")
	if !ok {
		return
	}

	if err := h.categories.Delete(c.Request.Context(), userID, categoryID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
