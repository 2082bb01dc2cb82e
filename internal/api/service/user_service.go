package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/apperr"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/models"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/repository"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/session"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/validator"
)

// UserService defines the interface for the identity component: registration,
// session-backed authentication and session resolution.
type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	// Login verifies the credentials and establishes a session. It returns
	// the authenticated user and the session token for the cookie.
	Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error)
	// Logout ends the session. Ending an already-ended session is not an error.
	Logout(ctx context.Context, token string) error
	// Resolve maps a session token to a user id; ok is false for missing,
	// malformed or expired sessions.
	Resolve(ctx context.Context, token string) (int64, bool, error)
	// Current resolves the session and loads the user behind it.
	Current(ctx context.Context, token string) (*models.User, bool, error)
}

type userService struct {
	userRepo repository.UserRepository
	sessions session.Store
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, sessions session.Store) UserService {
	return &userService{userRepo: userRepo, sessions: sessions}
}

// Register handles user registration.
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if err := validator.GetValidator().Struct(req); err != nil {
		return nil, fmt.Errorf("%w: username and password are required", apperr.ErrInvalidInput)
	}

	// Check if user already exists
	existingUser, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, fmt.Errorf("%w: username already exists", apperr.ErrConflict)
	}

	user := &models.User{
		Username: req.Username,
	}
	if err := s.userRepo.CreateUser(ctx, user, req.Password); err != nil {
		return nil, err
	}
	return user, nil
}

// Login handles user login and returns the user and a session token.
func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error) {
	if err := validator.GetValidator().Struct(req); err != nil {
		return nil, "", fmt.Errorf("%w: username and password are required", apperr.ErrInvalidInput)
	}

	user, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", fmt.Errorf("%w: incorrect password", apperr.ErrInvalidCredential)
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}
	return user, token, nil
}

// Logout destroys the session bound to the token, if any.
func (s *userService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Destroy(ctx, token)
}

// Resolve returns the user id of the session behind the token.
func (s *userService) Resolve(ctx context.Context, token string) (int64, bool, error) {
	if token == "" {
		return 0, false, nil
	}
	return s.sessions.Resolve(ctx, token)
}

// Current loads the user of an active session. A session pointing at a user
// that no longer exists resolves to not-authenticated, not an error.
func (s *userService) Current(ctx context.Context, token string) (*models.User, bool, error) {
	userID, ok, err := s.Resolve(ctx, token)
	if err != nil || !ok {
		return nil, false, err
	}
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		return nil, false, nil
	}
	return user, true, nil
}
