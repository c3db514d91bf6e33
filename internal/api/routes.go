package api

import (
	"github.com/gin-gonic/gin"

	"github.com/zwaTOx/MultiTasker/internal/api/handlers"
	"github.com/zwaTOx/MultiTasker/internal/api/middleware"
	"github.com/zwaTOx/MultiTasker/internal/ratelimit"
	"github.com/zwaTOx/MultiTasker/internal/token"
)

func SetupRouter(deps handlers.Deps, issuer *token.Issuer, rl *ratelimit.RateLimiter) *gin.Engine {
	router := gin.Default()
	h := handlers.NewHandler(deps)

	// Auth routes
	auth := router.Group("/auth")
	auth.Use(middleware.AuthRateLimit(rl))
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/code/verify/:code", h.VerifyResetCode)
	}
	router.POST("/auth/code/send", middleware.RecoveryRateLimit(rl), h.SendResetCode)

	// Invite confirmation authenticates by the invite token itself.
	router.POST("/users/confirm/:token", h.ConfirmInvite)

	// Protected routes
	protected := router.Group("/")
	protected.Use(AuthMiddleware(issuer))
	{
		protected.POST("/auth/password/reset", h.ResetPassword)

		protected.GET("/users", h.ListUsers)

		protected.POST("/projects", h.CreateProject)
		protected.GET("/projects", h.ListProjects)
		protected.GET("/projects/my", h.ListMyProjects)
		protected.GET("/projects/:project_id", h.GetProject)
		protected.PUT("/projects/:project_id", h.RenameProject)
		protected.DELETE("/projects/:project_id", h.DeleteProject)
		protected.PUT("/projects/:project_id/category", h.SetProjectCategory)

		protected.POST("/projects/:project_id/invite", h.InviteUser)
		protected.DELETE("/projects/:project_id/leave", h.LeaveProject)
		protected.DELETE("/projects/:project_id/kick/:user_id", h.KickUser)

		protected.GET("/tasks", h.ListTasks)
		protected.POST("/projects/:project_id/tasks", h.CreateTask)
		protected.GET("/tasks/:task_id", h.GetTask)
		protected.PATCH("/tasks/:task_id", h.UpdateTask)
		protected.DELETE("/tasks/:task_id", h.DeleteTask)

		protected.POST("/categories", h.CreateCategory)
		protected.GET("/categories", h.ListCategories)
		protected.PUT("/categories/:category_id", h.UpdateCategory)
		protected.DELETE("/categories/:category_id", h.DeleteCategory)
	}

	return router
}
