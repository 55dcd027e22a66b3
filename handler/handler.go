// Package handler exposes the HTTP surface over gin.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/tasktrack/middleware"
	"github.com/ncobase/tasktrack/service"
)

// Handler aggregates the route handlers.
type Handler struct {
	Auth *AuthHandler
	User *UserHandler
	Task *TaskHandler

	svc *service.Service
	log *logger.Logger
}

// New creates the handler set on top of the service layer.
func New(svc *service.Service, log *logger.Logger) *Handler {
	return &Handler{
		Auth: NewAuthHandler(svc.Auth, log),
		User: NewUserHandler(svc.User, log),
		Task: NewTaskHandler(svc.Task, log),
		svc:  svc,
		log:  log,
	}
}

// RegisterRoutes mounts all routes. Everything except /auth requires a
// bearer token.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	authed := middleware.Auth(h.svc.Auth, h.svc.User, h.log)

	user := r.Group("/user", authed)
	{
		user.GET("/me", h.User.Me)
	}

	tasks := r.Group("/tasks", authed)
	{
		tasks.GET("", h.Task.List)
		tasks.POST("", h.Task.Create)
		tasks.GET("/:taskId", h.Task.Get)
		tasks.PUT("/:taskId", h.Task.Update)
		tasks.DELETE("/:taskId", h.Task.Delete)

		tasks.GET("/:taskId/subtasks", h.Task.ListSubtasks)
		tasks.POST("/:taskId/subtasks", h.Task.AddSubtasks)
		tasks.PUT("/:taskId/subtasks", h.Task.UpdateSubtasks)
		tasks.DELETE("/:taskId/subtasks/:subTaskId", h.Task.DeleteSubtask)
	}
}
