package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/testhub-api/internal/domain/entity"
	apperrors "github.com/yourusername/testhub-api/internal/pkg/errors"
)

// UserRepo implements repository.UserRepository.
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a new user repository.
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create stores a new user.
func (r *UserRepo) Create(user *entity.User) error {
	err := r.db.Create(user).Error
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
	}
	return err
}

// GetByID returns the user with roles preloaded.
func (r *UserRepo) GetByID(id uint) (*entity.User, error) {
	var user entity.User
	err := r.db.Preload("Roles").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns the user with the given email, roles preloaded.
func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	var user entity.User
	err := r.db.Preload("Roles").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Update stores user changes.
func (r *UserRepo) Update(user *entity.User) error {
	return r.db.Save(user).Error
}

// RoleRepo implements repository.RoleRepository.
type RoleRepo struct {
	db *gorm.DB
}

// NewRoleRepo creates a new role repository.
func NewRoleRepo(db *gorm.DB) *RoleRepo {
	return &RoleRepo{db: db}
}

// GetByName returns the role with the given name.
func (r *RoleRepo) GetByName(name string) (*entity.Role, error) {
	var role entity.Role
	err := r.db.Where("name = ?", name).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// EnsureRole creates the role if it does not exist and returns it.
func (r *RoleRepo) EnsureRole(name, description string) (*entity.Role, error) {
	role, err := r.GetByName(name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	role = &entity.Role{Name: name, Description: description}
	if err := r.db.Create(role).Error; err != nil {
		// Lost a race with a concurrent seed; re-read.
		if isUniqueViolation(err) {
			return r.GetByName(name)
		}
		return nil, err
	}
	return role, nil
}

// AssignRole grants the named role to the user. Re-assigning is a no-op.
func (r *RoleRepo) AssignRole(userID uint, roleName string) error {
	role, err := r.GetByName(roleName)
	if err != nil {
		return fmt.Errorf("assign role %q: %w", roleName, err)
	}

	err = r.db.Exec(
		"INSERT INTO user_roles (user_id, role_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		userID, role.ID,
	).Error
	return err
}
