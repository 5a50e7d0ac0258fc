package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/testhub-api/internal/domain/entity"
	"github.com/yourusername/testhub-api/internal/domain/repository"
	apperrors "github.com/yourusername/testhub-api/internal/pkg/errors"
	"github.com/yourusername/testhub-api/pkg/auth"
)

// AuthService handles registration, login and token issuing.
type AuthService struct {
	userRepo     repository.UserRepository
	roleRepo     repository.RoleRepository
	jwtService   *auth.JWTService
	emailService EmailService
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	jwtService *auth.JWTService,
	emailService EmailService,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		jwtService:   jwtService,
		emailService: emailService,
	}
}

// Register creates a new account. Every account gets TEST_TAKER; AUTHOR is
// granted on request. Returns the stored user with roles loaded.
func (s *AuthService) Register(email, password, fullName string, wantsAuthor bool) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	fullName = strings.TrimSpace(fullName)

	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", apperrors.ErrValidation)
	}
	if fullName == "" {
		return nil, fmt.Errorf("%w: full name is required", apperrors.ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, fmt.Errorf("%w: this email is already registered", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	user := &entity.User{
		Email:        email,
		PasswordHash: password, // hashed by the BeforeSave hook
		FullName:     fullName,
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	roles := []string{entity.RoleTestTaker}
	if wantsAuthor {
		roles = append(roles, entity.RoleAuthor)
	}
	for _, role := range roles {
		if err := s.roleRepo.AssignRole(user.ID, role); err != nil {
			return nil, fmt.Errorf("failed to assign role %s: %w", role, err)
		}
	}

	// Welcome email is best-effort; registration never fails because of it.
	if err := s.emailService.SendWelcome(context.Background(), user.Email, user.FullName); err != nil {
		log.Printf("[AuthService] failed to send welcome email to %s: %v", user.Email, err)
	}

	return s.userRepo.GetByID(user.ID)
}

// Login verifies credentials and returns the user plus a signed access token.
func (s *AuthService) Login(email, password string) (*entity.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !user.IsActive || !user.CheckPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.RoleNames())
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// IssueToken issues a fresh token for an already authenticated user.
func (s *AuthService) IssueToken(user *entity.User) (string, error) {
	return s.jwtService.GenerateToken(user.ID, user.Email, user.RoleNames())
}

// GetUser returns the user by id with roles loaded.
func (s *AuthService) GetUser(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}
