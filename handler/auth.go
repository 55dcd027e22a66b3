package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/ncore/net/resp"
	"github.com/ncobase/tasktrack/data/repository"
	"github.com/ncobase/tasktrack/service"
	"github.com/ncobase/tasktrack/structs"
)

// AuthHandler serves the registration and login endpoints.
type AuthHandler struct {
	auth *service.AuthService
	log  *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req structs.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.Register(c.Request.Context(), &req); err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			resp.Fail(c.Writer, &resp.Exception{
				Status:  http.StatusConflict,
				Message: "user already exists",
			})
			return
		}
		h.log.Error(c.Request.Context(), "failed to register user", "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to register user"))
		return
	}

	resp.Success(c.Writer, map[string]any{
		"message": "user created successfully",
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req structs.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			resp.Fail(c.Writer, resp.NotFound("user not found"))
		case errors.Is(err, service.ErrInvalidCredentials):
			resp.Fail(c.Writer, resp.UnAuthorized("invalid email or password"))
		default:
			h.log.Error(c.Request.Context(), "failed to log user in", "error", err)
			resp.Fail(c.Writer, resp.InternalServer("failed to log in"))
		}
		return
	}

	resp.Success(c.Writer, map[string]any{
		"message": "user login successfully",
		"token":   token,
	})
}
