package service

import (
	"context"
	"errors"
	"time"

	"github.com/ncobase/ncore/ecode"
	"github.com/ncobase/ncore/logging/logger"
	securityjwt "github.com/ncobase/ncore/security/jwt"
	"github.com/ncobase/tasktrack/data/repository"
	"github.com/ncobase/tasktrack/structs"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmailTaken is returned when registering with an email that exists.
	ErrEmailTaken = errors.New(ecode.AlreadyExist("user"))
	// ErrInvalidCredentials is returned on a password mismatch during login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken covers malformed, expired and tampered tokens alike;
	// callers cannot tell them apart beyond "invalid".
	ErrInvalidToken = errors.New(ecode.FieldIsInvalid("token"))
)

// AuthService hashes and verifies passwords and issues and decodes the
// bearer tokens carrying the user identity claims.
type AuthService struct {
	users  repository.UserRepository
	tokens *securityjwt.TokenManager
	expire time.Duration
	logger *logger.Logger
}

// NewAuthService creates a new auth service. The signing key is process-wide
// configuration; rotating it invalidates all outstanding tokens.
func NewAuthService(users repository.UserRepository, jwtSecret string, expire time.Duration, logger *logger.Logger) *AuthService {
	tokens := securityjwt.NewTokenManager(jwtSecret, &securityjwt.TokenConfig{
		AccessTokenExpiry: expire,
	})

	return &AuthService{
		users:  users,
		tokens: tokens,
		expire: expire,
		logger: logger,
	}
}

// Register creates a new user with a hashed password. The email existence
// check runs first; the unique index backstops the race with a concurrent
// registration.
func (s *AuthService) Register(ctx context.Context, req *structs.RegisterRequest) error {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := &repository.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return ErrEmailTaken
		}
		return err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID.Hex(), "email", req.Email)
	return nil
}

// Login verifies the credentials and returns a signed token. An unknown
// email surfaces as ErrUserNotFound, a wrong password as
// ErrInvalidCredentials; the two are reported differently to the client.
func (s *AuthService) Login(ctx context.Context, req *structs.LoginRequest) (string, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return "", err
	}

	if !s.VerifyPassword(user.Password, req.Password) {
		return "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID.Hex(), "email", req.Email)
	return token, nil
}

// HashPassword runs the plaintext through bcrypt. Invoked only when a
// password value is set, never on unrelated updates.
func (s *AuthService) HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares the hash with the plaintext. Returns false on
// mismatch, never an error.
func (s *AuthService) VerifyPassword(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// IssueToken signs an access token embedding the user's id, name and email.
func (s *AuthService) IssueToken(user *repository.User) (string, error) {
	payload := map[string]any{
		"user_id": user.ID.Hex(),
		"name":    user.Name,
		"email":   user.Email,
	}
	return s.tokens.GenerateAccessToken(user.ID.Hex(), payload, &securityjwt.TokenConfig{Expiry: s.expire})
}

// DecodeToken validates signature and expiry and returns the claims.
// Any validation failure comes back as ErrInvalidToken.
func (s *AuthService) DecodeToken(token string) (map[string]any, error) {
	claims, err := s.tokens.DecodeToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !securityjwt.IsAccessToken(claims) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
