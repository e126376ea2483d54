package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"usina-backend/internal/auth"
	"usina-backend/internal/models"
	"usina-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

// ErrInvalidCredentials covers both unknown email and wrong password so the
// login endpoint never reveals which one failed
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserService handles staff accounts and login
type UserService struct {
	users *repositories.UserRepository
	jwt   *auth.JWTManager
}

func NewUserService(users *repositories.UserRepository, jwt *auth.JWTManager) *UserService {
	return &UserService{users: users, jwt: jwt}
}

func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	if req.Name == "" || req.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	role := req.Role
	if role == "" {
		role = "operator"
	}
	if role != "admin" && role != "operator" {
		return nil, fmt.Errorf("%w: role must be 'admin' or 'operator'", ErrValidation)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &models.LoginResponse{Token: token, User: user}, nil
}

func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	user, err := s.users.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return user, err
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) ToggleActive(ctx context.Context, id int) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.users.ToggleActive(ctx, id)
}
