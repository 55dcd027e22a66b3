// Package middleware provides authentication and request middleware.
package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/ncore/net/resp"
	securityjwt "github.com/ncobase/ncore/security/jwt"
	"github.com/ncobase/tasktrack/data/repository"
	"github.com/ncobase/tasktrack/service"
)

const userIDKey = "user_id"

// Auth authenticates the request from the Authorization bearer header and
// attaches the resolved user's id to the context. A missing header is 401,
// a malformed or invalid token 400, and a valid token whose user no longer
// exists 404.
func Auth(auth *service.AuthService, users *service.UserService, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			resp.Fail(c.Writer, resp.UnAuthorized("auth token is required"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			resp.Fail(c.Writer, resp.BadRequest("invalid token"))
			c.Abort()
			return
		}

		claims, err := auth.DecodeToken(parts[1])
		if err != nil {
			logger.Warn(c.Request.Context(), "invalid token", "error", err)
			resp.Fail(c.Writer, resp.BadRequest("invalid token"))
			c.Abort()
			return
		}

		userID := securityjwt.GetPayloadString(claims, "user_id")
		if userID == "" {
			resp.Fail(c.Writer, resp.BadRequest("invalid token"))
			c.Abort()
			return
		}

		// The token is tamper-evident but the user may have gone away since
		// it was issued.
		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				resp.Fail(c.Writer, resp.NotFound("user not found"))
			} else {
				logger.Error(c.Request.Context(), "failed to resolve user", "user_id", userID, "error", err)
				resp.Fail(c.Writer, resp.InternalServer("failed to authenticate"))
			}
			c.Abort()
			return
		}

		c.Set(userIDKey, user.ID.Hex())
		c.Next()
	}
}

// CurrentUserID retrieves the authenticated user's id from the context.
func CurrentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return "", false
	}
	return userID.(string), true
}
