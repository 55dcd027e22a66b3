// Package service contains the business rules for accounts and tasks.
package service

import (
	"time"

	"github.com/ncobase/ncore/config"
	"github.com/ncobase/ncore/logging/logger"
	securityjwt "github.com/ncobase/ncore/security/jwt"
	"github.com/ncobase/tasktrack/data"
)

// Service aggregates all business logic services.
type Service struct {
	Auth *AuthService
	User *UserService
	Task *TaskService
}

// NewService creates a new service instance with all sub-services initialized.
func NewService(d *data.Data, cfg *config.Config, logger *logger.Logger) *Service {
	expire := securityjwt.DefaultAccessTokenExpire
	if cfg.Auth != nil && cfg.Auth.JWT != nil && cfg.Auth.JWT.Expiry > 0 {
		expire = time.Duration(cfg.Auth.JWT.Expiry) * time.Hour
	}

	return &Service{
		Auth: NewAuthService(d.UserRepo, cfg.Auth.JWT.Secret, expire, logger),
		User: NewUserService(d.UserRepo, logger),
		Task: NewTaskService(d.TaskRepo, logger),
	}
}
