package http

import (
	"time"

	"github.com/labstack/echo/v4"

	middleware "taskhub.com/taskhub/internal/http/middlewares"
	repository "taskhub.com/taskhub/internal/repositories"
)

func Register(e *echo.Echo, h *Handler, references *repository.ReferenceRepository, rateLimitPerMinute int) {
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute))
	e.Use(middleware.Identity(references))

	e.POST("/projects/:projectID/tasks", h.CreateTask)
	e.GET("/projects/:projectID/tasks", h.ListProjectTasks)
	e.GET("/projects/:projectID/references", h.ProjectReferences)

	e.GET("/tasks/:id", h.GetTask)
	e.PATCH("/tasks/:id", h.UpdateTask)
	e.POST("/tasks/:id/complete", h.CompleteTask)

	e.DELETE("/attachments/:id", h.DeleteAttachment)

	e.GET("/dashboard/recently-assigned", h.RecentlyAssigned)
}
