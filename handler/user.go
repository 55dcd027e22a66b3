package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/ncore/net/resp"
	"github.com/ncobase/tasktrack/data/repository"
	"github.com/ncobase/tasktrack/middleware"
	"github.com/ncobase/tasktrack/service"
)

// UserHandler serves the authenticated user profile endpoint.
type UserHandler struct {
	users *service.UserService
	log   *logger.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users *service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

// Me handles GET /user/me. The auth middleware already resolved the user,
// so the lookup here re-reads the profile fields by id.
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("auth token is required"))
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			resp.Fail(c.Writer, resp.NotFound("user not found"))
			return
		}
		h.log.Error(c.Request.Context(), "failed to fetch user", "user_id", userID, "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to fetch user"))
		return
	}

	resp.Success(c.Writer, map[string]any{
		"message": "user fetched successfully",
		"user":    user,
	})
}
