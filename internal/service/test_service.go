package service

import (
	"fmt"

	"github.com/yourusername/testhub-api/internal/domain/entity"
	"github.com/yourusername/testhub-api/internal/domain/repository"
	apperrors "github.com/yourusername/testhub-api/internal/pkg/errors"
	"github.com/yourusername/testhub-api/internal/rbac"
)

// TestService holds the business logic around tests and their questions.
type TestService struct {
	testRepo     repository.TestRepository
	questionRepo repository.QuestionRepository
}

// NewTestService creates a new test service.
func NewTestService(
	testRepo repository.TestRepository,
	questionRepo repository.QuestionRepository,
) *TestService {
	return &TestService{
		testRepo:     testRepo,
		questionRepo: questionRepo,
	}
}

// TestInput carries validated fields for creating or updating a test.
type TestInput struct {
	Title            string
	Description      string
	Difficulty       int
	TimeLimitSeconds int
	IsPublished      bool
}

func (in *TestInput) validate() error {
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if in.Difficulty < 1 || in.Difficulty > 5 {
		return fmt.Errorf("%w: difficulty must be between 1 and 5", apperrors.ErrValidation)
	}
	if in.TimeLimitSeconds < 0 {
		return fmt.Errorf("%w: time limit cannot be negative", apperrors.ErrValidation)
	}
	return nil
}

// CreateTest creates a new test owned by the subject.
func (s *TestService) CreateTest(subject rbac.Subject, in TestInput) (*entity.Test, error) {
	if !subject.IsAuthor() && !subject.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	test := &entity.Test{
		Title:            in.Title,
		Description:      in.Description,
		Difficulty:       in.Difficulty,
		TimeLimitSeconds: in.TimeLimitSeconds,
		IsPublished:      in.IsPublished,
		CreatedBy:        subject.UserID,
	}
	if err := s.testRepo.Create(test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}
	return test, nil
}

// GetTest returns the test with questions, enforcing visibility. Hidden
// tests read as not found, never as forbidden.
func (s *TestService) GetTest(subject rbac.Subject, testID uint) (*entity.Test, error) {
	test, err := s.testRepo.GetWithQuestions(testID)
	if err != nil {
		return nil, err
	}
	if !rbac.CanViewTest(subject, test.CreatedBy, test.IsPublished) {
		return nil, apperrors.ErrNotFound
	}
	return test, nil
}

// getManagedTest loads the test and enforces manage rights on it.
func (s *TestService) getManagedTest(subject rbac.Subject, testID uint) (*entity.Test, error) {
	test, err := s.testRepo.GetByID(testID)
	if err != nil {
		return nil, err
	}
	if !rbac.CanViewTest(subject, test.CreatedBy, test.IsPublished) {
		return nil, apperrors.ErrNotFound
	}
	if !rbac.CanManageTest(subject, test.CreatedBy) {
		return nil, apperrors.ErrForbidden
	}
	return test, nil
}

// UpdateTest edits a test the subject manages.
func (s *TestService) UpdateTest(subject rbac.Subject, testID uint, in TestInput) (*entity.Test, error) {
	test, err := s.getManagedTest(subject, testID)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	test.Title = in.Title
	test.Description = in.Description
	test.Difficulty = in.Difficulty
	test.TimeLimitSeconds = in.TimeLimitSeconds
	test.IsPublished = in.IsPublished

	if err := s.testRepo.Update(test); err != nil {
		return nil, fmt.Errorf("failed to update test: %w", err)
	}
	return test, nil
}

// SetPublished publishes or unpublishes a test the subject manages.
func (s *TestService) SetPublished(subject rbac.Subject, testID uint, published bool) error {
	if _, err := s.getManagedTest(subject, testID); err != nil {
		return err
	}
	return s.testRepo.UpdatePublished(testID, published)
}

// DeleteTest removes a test the subject manages, cascading to its
// questions, options and attempts.
func (s *TestService) DeleteTest(subject rbac.Subject, testID uint) error {
	if _, err := s.getManagedTest(subject, testID); err != nil {
		return err
	}
	return s.testRepo.Delete(testID)
}

// ListTests returns tests visible to the subject, with search and
// pagination, plus the total count.
func (s *TestService) ListTests(subject rbac.Subject, search string, limit, offset int) ([]entity.Test, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	filters := repository.TestFilters{Search: search}
	if subject.UserID != 0 {
		viewerID := subject.UserID
		filters.ViewerID = &viewerID
		filters.ViewerIsAdmin = subject.IsAdmin()
	}
	return s.testRepo.ListWithFilters(filters, limit, offset)
}

// ListOwnTests returns the subject's own tests.
func (s *TestService) ListOwnTests(subject rbac.Subject) ([]entity.Test, error) {
	if !subject.IsAuthor() && !subject.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	return s.testRepo.ListByCreator(subject.UserID)
}

// QuestionInput carries validated fields for creating or updating a question.
type QuestionInput struct {
	Text       string
	Type       string
	OrderIndex int
	Points     float64
	Options    []OptionInput
}

// OptionInput is one answer option of a choice question.
type OptionInput struct {
	Text      string
	IsCorrect bool
}

func (in *QuestionInput) validate() error {
	if in.Text == "" {
		return fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
	}
	if !entity.ValidQuestionType(in.Type) {
		return fmt.Errorf("%w: unsupported question type %q", apperrors.ErrValidation, in.Type)
	}
	if in.Points <= 0 {
		return fmt.Errorf("%w: points must be positive", apperrors.ErrValidation)
	}

	if in.Type == entity.QuestionTypeFreeText {
		if len(in.Options) > 0 {
			return fmt.Errorf("%w: free-text questions cannot have options", apperrors.ErrValidation)
		}
		return nil
	}

	if len(in.Options) < 2 {
		return fmt.Errorf("%w: choice questions need at least two options", apperrors.ErrValidation)
	}
	correct := 0
	for _, opt := range in.Options {
		if opt.Text == "" {
			return fmt.Errorf("%w: option text is required", apperrors.ErrValidation)
		}
		if opt.IsCorrect {
			correct++
		}
	}
	if correct == 0 {
		return fmt.Errorf("%w: at least one option must be correct", apperrors.ErrValidation)
	}
	if in.Type == entity.QuestionTypeSingleChoice && correct != 1 {
		return fmt.Errorf("%w: single-choice questions need exactly one correct option", apperrors.ErrValidation)
	}
	return nil
}

func (in *QuestionInput) toEntity(testID uint) *entity.Question {
	question := &entity.Question{
		TestID:     testID,
		Text:       in.Text,
		Type:       in.Type,
		OrderIndex: in.OrderIndex,
		Points:     in.Points,
	}
	for i, opt := range in.Options {
		question.Options = append(question.Options, entity.AnswerOption{
			Text:       opt.Text,
			IsCorrect:  opt.IsCorrect,
			OrderIndex: i,
		})
	}
	return question
}

// AddQuestion adds a question to a test the subject manages.
func (s *TestService) AddQuestion(subject rbac.Subject, testID uint, in QuestionInput) (*entity.Question, error) {
	if _, err := s.getManagedTest(subject, testID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	question := in.toEntity(testID)
	if err := s.questionRepo.Create(question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return question, nil
}

// UpdateQuestion edits a question of a test the subject manages, replacing
// its options.
func (s *TestService) UpdateQuestion(subject rbac.Subject, questionID uint, in QuestionInput) (*entity.Question, error) {
	existing, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.getManagedTest(subject, existing.TestID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	question := in.toEntity(existing.TestID)
	question.ID = existing.ID
	if err := s.questionRepo.Update(question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return s.questionRepo.GetByID(questionID)
}

// DeleteQuestion removes a question of a test the subject manages.
func (s *TestService) DeleteQuestion(subject rbac.Subject, questionID uint) error {
	existing, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return err
	}
	if _, err := s.getManagedTest(subject, existing.TestID); err != nil {
		return err
	}
	return s.questionRepo.Delete(questionID)
}
