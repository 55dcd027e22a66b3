package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/ncore/net/resp"
	"github.com/ncobase/tasktrack/data/repository"
	"github.com/ncobase/tasktrack/middleware"
	"github.com/ncobase/tasktrack/service"
	"github.com/ncobase/tasktrack/structs"
)

// TaskHandler serves the task and subtask endpoints. All of them operate on
// the authenticated user's own collection.
type TaskHandler struct {
	tasks *service.TaskService
	log   *logger.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(tasks *service.TaskService, log *logger.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, log: log}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("auth token is required"))
		return
	}

	var body structs.TaskBody
	if !bindJSON(c, &body) {
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, &body)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			resp.Fail(c.Writer, resp.NotFound("user not found"))
		case errors.Is(err, repository.ErrTaskNotFound):
			resp.Fail(c.Writer, resp.NotFound("task not found"))
		default:
			h.log.Error(c.Request.Context(), "failed to create task", "user_id", userID, "error", err)
			resp.Fail(c.Writer, resp.InternalServer("failed to create task"))
		}
		return
	}

	resp.Success(c.Writer, map[string]any{
		"message": "task created successfully",
		"task":    task,
	})
}

// List handles GET /tasks.
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("auth token is required"))
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			resp.Fail(c.Writer, resp.NotFound("user not found"))
			return
		}
		h.log.Error(c.Request.Context(), "failed to fetch tasks", "user_id", userID, "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to fetch tasks"))
		return
	}

	resp.Success(c.Writer, map[string]any{
		"message": "tasks fetched successfully",
		"tasks":   tasks,
	})
}

// Get handles GET /tasks/:taskId.
func (h *TaskHandler) Get(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("auth token is required"))
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), userID, c.Param("taskId"))
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			resp.Fail(c.Writer, resp.NotFound("task not found"))
			return
		}
		h.log.Error(c.Request.Context(), "failed to fetch task", "user_id", userID, "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to fetch task"))
		return
	}

	resp.Success(c.Writer, map[string]any{
		"message": "task fetched successfully",
		"task":    task,
	})
}

// Update handles PUT /tasks/:taskId.
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("auth token is required"))
		return
	}

	var body structs.TaskBody
	if !bindJSON(c, &body) {
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), userID, c.Param("taskId"), &body)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			resp.Fail(c.Writer, resp.NotFound("task not found"))
			return
		}
		h.log.Error(c.Request.Context(), "failed to update task", "user_id", userID, "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to update task"))
		return
	}

	resp.Success(c.Writer, map[string]any{
		"message": "task updated successfully",
		"task":    task,
	})
}

// Delete handles DELETE /tasks/:taskId. The deletion is idempotent and the
// endpoint always reports success; failures are logged server-side only.
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("auth token is required"))
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), userID, c.Param("taskId")); err != nil {
		h.log.Error(c.Request.Context(), "failed to delete task",
			"user_id", userID, "task_id", c.Param("taskId"), "error", err)
	}

	resp.Success(c.Writer, map[string]any{
		"message": "task deleted successfully",
	})
}

// ListSubtasks handles GET /tasks/:taskId/subtasks.
func (h *TaskHandler) ListSubtasks(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("auth token is required"))
		return
	}

	subtasks, err := h.tasks.ListSubtasks(c.Request.Context(), userID, c.Param("taskId"))
	if err != nil {
		h.log.Error(c.Request.Context(), "failed to fetch subtasks", "user_id", userID, "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to fetch subtasks"))
		return
	}

	resp.Success(c.Writer, map[string]any{
		"message": "subtasks fetched successfully",
		"subtask": subtasks,
	})
}

// AddSubtasks handles POST /tasks/:taskId/subtasks.
func (h *TaskHandler) AddSubtasks(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("auth token is required"))
		return
	}

	var req structs.AddSubtasksRequest
	if !bindJSON(c, &req) {
		return
	}

	subtasks, err := h.tasks.AddSubtasks(c.Request.Context(), userID, c.Param("taskId"), &req)
	if err != nil {
		h.log.Error(c.Request.Context(), "failed to create subtasks", "user_id", userID, "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to create subtasks"))
		return
	}

	resp.Success(c.Writer, map[string]any{
		"message": "subtasks created successfully",
		"subtask": subtasks,
	})
}

// UpdateSubtasks handles PUT /tasks/:taskId/subtasks.
func (h *TaskHandler) UpdateSubtasks(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("auth token is required"))
		return
	}

	var req structs.UpdateSubtasksRequest
	if !bindJSON(c, &req) {
		return
	}

	subtasks, err := h.tasks.UpdateSubtasks(c.Request.Context(), userID, c.Param("taskId"), &req)
	if err != nil {
		h.log.Error(c.Request.Context(), "failed to update subtasks", "user_id", userID, "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to update subtasks"))
		return
	}

	resp.Success(c.Writer, map[string]any{
		"message": "subtasks updated successfully",
		"subtask": subtasks,
	})
}

// DeleteSubtask handles DELETE /tasks/:taskId/subtasks/:subTaskId. Like task
// deletion it is idempotent and always reports success.
func (h *TaskHandler) DeleteSubtask(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("auth token is required"))
		return
	}

	if err := h.tasks.DeleteSubtask(c.Request.Context(), userID, c.Param("taskId"), c.Param("subTaskId")); err != nil {
		h.log.Error(c.Request.Context(), "failed to delete subtask",
			"user_id", userID, "task_id", c.Param("taskId"), "subtask_id", c.Param("subTaskId"), "error", err)
	}

	resp.Success(c.Writer, map[string]any{
		"message": "subtask deleted successfully",
	})
}
