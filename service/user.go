package service

import (
	"context"

	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/tasktrack/data/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService handles user lookups outside the authentication flow.
type UserService struct {
	users  repository.UserRepository
	logger *logger.Logger
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, logger *logger.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// GetByID retrieves a user by their id with the password and the embedded
// task collection excluded. A malformed id behaves like a missing user.
func (s *UserService) GetByID(ctx context.Context, id string) (*repository.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrUserNotFound
	}
	return s.users.FindByID(ctx, oid)
}
