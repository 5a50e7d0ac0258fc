package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/yourusername/testhub-api/internal/config"
	"github.com/yourusername/testhub-api/internal/domain/entity"
	"github.com/yourusername/testhub-api/internal/domain/repository"
	apperrors "github.com/yourusername/testhub-api/internal/pkg/errors"
)

const demoAuthorEmail = "author@testhub.local"

// SeedService provisions the data every fresh deployment needs: the three
// roles, the default admin account and, optionally, demo content.
type SeedService struct {
	userRepo     repository.UserRepository
	roleRepo     repository.RoleRepository
	testRepo     repository.TestRepository
	questionRepo repository.QuestionRepository
	adminCfg     config.AdminConfig
}

// NewSeedService creates a new seed service.
func NewSeedService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	testRepo repository.TestRepository,
	questionRepo repository.QuestionRepository,
	adminCfg config.AdminConfig,
) *SeedService {
	return &SeedService{
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		testRepo:     testRepo,
		questionRepo: questionRepo,
		adminCfg:     adminCfg,
	}
}

// EnsureCoreData creates the role catalog and the default admin account.
// It is idempotent and runs on every startup.
func (s *SeedService) EnsureCoreData() error {
	roles := []struct {
		name, description string
	}{
		{entity.RoleAdmin, "Full access to every test, attempt and user"},
		{entity.RoleAuthor, "Can create and manage own tests"},
		{entity.RoleTestTaker, "Can take published tests and view own results"},
	}
	for _, r := range roles {
		if _, err := s.roleRepo.EnsureRole(r.name, r.description); err != nil {
			return fmt.Errorf("failed to ensure role %s: %w", r.name, err)
		}
	}

	admin, err := s.userRepo.GetByEmail(s.adminCfg.Email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to look up admin account: %w", err)
		}
		admin = &entity.User{
			Email:        s.adminCfg.Email,
			PasswordHash: s.adminCfg.Password,
			FullName:     s.adminCfg.FullName,
			IsActive:     true,
		}
		if err := s.userRepo.Create(admin); err != nil {
			return fmt.Errorf("failed to create admin account: %w", err)
		}
		log.Printf("[SeedService] created admin account %s", admin.Email)
	}

	for _, role := range []string{entity.RoleAdmin, entity.RoleAuthor, entity.RoleTestTaker} {
		if err := s.roleRepo.AssignRole(admin.ID, role); err != nil {
			return fmt.Errorf("failed to assign role %s to admin: %w", role, err)
		}
	}

	return nil
}

// SeedDemoContent creates a demo author with one published sample test.
// It does nothing when the demo author already exists.
func (s *SeedService) SeedDemoContent() error {
	if _, err := s.userRepo.GetByEmail(demoAuthorEmail); err == nil {
		log.Printf("[SeedService] demo content already present, skipping")
		return nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to look up demo author: %w", err)
	}

	author := &entity.User{
		Email:        demoAuthorEmail,
		PasswordHash: "author12345",
		FullName:     "Demo Author",
		IsActive:     true,
	}
	if err := s.userRepo.Create(author); err != nil {
		return fmt.Errorf("failed to create demo author: %w", err)
	}
	for _, role := range []string{entity.RoleAuthor, entity.RoleTestTaker} {
		if err := s.roleRepo.AssignRole(author.ID, role); err != nil {
			return fmt.Errorf("failed to assign role %s to demo author: %w", role, err)
		}
	}

	test := &entity.Test{
		Title:            "Go Basics",
		Description:      "A short sample quiz covering Go fundamentals.",
		Difficulty:       2,
		TimeLimitSeconds: 600,
		IsPublished:      true,
		CreatedBy:        author.ID,
	}
	if err := s.testRepo.Create(test); err != nil {
		return fmt.Errorf("failed to create demo test: %w", err)
	}

	questions := []entity.Question{
		{
			TestID:     test.ID,
			Text:       "Which keyword declares a new variable with inferred type?",
			Type:       entity.QuestionTypeSingleChoice,
			OrderIndex: 1,
			Points:     1,
			Options: []entity.AnswerOption{
				{Text: "var x = 1", IsCorrect: false, OrderIndex: 1},
				{Text: "x := 1", IsCorrect: true, OrderIndex: 2},
				{Text: "let x = 1", IsCorrect: false, OrderIndex: 3},
			},
		},
		{
			TestID:     test.ID,
			Text:       "Select every built-in type below.",
			Type:       entity.QuestionTypeMultipleChoice,
			OrderIndex: 2,
			Points:     2,
			Options: []entity.AnswerOption{
				{Text: "string", IsCorrect: true, OrderIndex: 1},
				{Text: "rune", IsCorrect: true, OrderIndex: 2},
				{Text: "decimal", IsCorrect: false, OrderIndex: 3},
				{Text: "complex128", IsCorrect: true, OrderIndex: 4},
			},
		},
		{
			TestID:     test.ID,
			Text:       "In one sentence, what does a goroutine give you?",
			Type:       entity.QuestionTypeFreeText,
			OrderIndex: 3,
			Points:     1,
		},
	}
	for i := range questions {
		if err := s.questionRepo.Create(&questions[i]); err != nil {
			return fmt.Errorf("failed to create demo question: %w", err)
		}
	}

	log.Printf("[SeedService] seeded demo author %s with test #%d", author.Email, test.ID)
	return nil
}
