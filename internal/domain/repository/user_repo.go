package repository

import (
	"github.com/yourusername/testhub-api/internal/domain/entity"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(user *entity.User) error
	// GetByID returns the user with roles preloaded.
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	Update(user *entity.User) error
}

// RoleRepository defines persistence operations for roles and assignments.
type RoleRepository interface {
	GetByName(name string) (*entity.Role, error)
	// EnsureRole creates the role if it does not exist and returns it.
	EnsureRole(name, description string) (*entity.Role, error)
	// AssignRole grants the named role to the user; assigning an already
	// granted role is a no-op.
	AssignRole(userID uint, roleName string) error
}
