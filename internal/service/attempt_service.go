package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/testhub-api/internal/domain/entity"
	"github.com/yourusername/testhub-api/internal/domain/repository"
	apperrors "github.com/yourusername/testhub-api/internal/pkg/errors"
	"github.com/yourusername/testhub-api/internal/rbac"
	"github.com/yourusername/testhub-api/internal/service/scoring"
)

// AttemptService manages the attempt lifecycle: start, submit, results.
type AttemptService struct {
	attemptRepo  repository.AttemptRepository
	testRepo     repository.TestRepository
	questionRepo repository.QuestionRepository
	db           *gorm.DB
}

// NewAttemptService creates a new attempt service.
func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	testRepo repository.TestRepository,
	questionRepo repository.QuestionRepository,
	db *gorm.DB,
) *AttemptService {
	return &AttemptService{
		attemptRepo:  attemptRepo,
		testRepo:     testRepo,
		questionRepo: questionRepo,
		db:           db,
	}
}

// StartAttempt creates an in-progress attempt on the test for the subject.
// The test must be published and have at least one question. The test's max
// score is cached on the attempt at start time.
func (s *AttemptService) StartAttempt(subject rbac.Subject, testID uint) (*entity.Attempt, error) {
	test, err := s.testRepo.GetWithQuestions(testID)
	if err != nil {
		return nil, err
	}
	if !rbac.CanViewTest(subject, test.CreatedBy, test.IsPublished) {
		// Hidden tests read as not found.
		return nil, apperrors.ErrNotFound
	}
	if !rbac.CanAttemptTest(subject, test.CreatedBy, test.IsPublished) {
		return nil, apperrors.ErrForbidden
	}
	if len(test.Questions) == 0 {
		return nil, ErrTestHasNoQuestions
	}

	attempt := &entity.Attempt{
		UserID:    subject.UserID,
		TestID:    test.ID,
		Status:    entity.AttemptStatusInProgress,
		StartedAt: time.Now(),
		MaxScore:  test.MaxScore(),
	}
	if err := s.attemptRepo.Create(attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	log.Printf("[AttemptService] user #%d started attempt #%d on test #%d", subject.UserID, attempt.ID, test.ID)
	return attempt, nil
}

// SubmitAttempt validates ownership and state, scores the submitted answers
// and transitions the attempt to completed. A second submission is rejected
// with a conflict error; the score is computed exactly once.
func (s *AttemptService) SubmitAttempt(subject rbac.Subject, attemptID uint, answers []scoring.SubmittedAnswer) (*entity.Attempt, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if !rbac.CanViewAttempt(subject, attempt.UserID) {
		return nil, apperrors.ErrForbidden
	}
	if attempt.IsCompleted() {
		return nil, fmt.Errorf("%w: attempt #%d is already completed", apperrors.ErrConflict, attempt.ID)
	}

	questions, err := s.questionRepo.GetByTestID(attempt.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	results, total, err := scoring.ScoreAttempt(questions, answers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	stored := buildStoredAnswers(attempt.ID, answers, results)
	finishedAt := time.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Drop any answers saved by an earlier partial submission.
		if err := s.attemptRepo.DeleteAnswers(tx, attempt.ID); err != nil {
			return fmt.Errorf("failed to clear previous answers: %w", err)
		}
		if err := s.attemptRepo.SaveAnswers(tx, stored); err != nil {
			return fmt.Errorf("failed to save answers: %w", err)
		}
		return s.attemptRepo.CompleteAttempt(tx, attempt.ID, total, finishedAt)
	})
	if err != nil {
		if errors.Is(err, repository.ErrAttemptAlreadyCompleted) {
			return nil, fmt.Errorf("%w: attempt #%d is already completed", apperrors.ErrConflict, attempt.ID)
		}
		return nil, err
	}

	log.Printf("[AttemptService] attempt #%d completed with score %.2f/%.2f", attempt.ID, total, attempt.MaxScore)
	return s.attemptRepo.GetWithAnswers(attempt.ID)
}

// buildStoredAnswers merges the submission payloads with the scoring
// outcome into persistable rows, one per answered question.
func buildStoredAnswers(attemptID uint, answers []scoring.SubmittedAnswer, results []scoring.QuestionResult) []entity.AttemptAnswer {
	byQuestion := make(map[uint]scoring.QuestionResult, len(results))
	for _, res := range results {
		byQuestion[res.QuestionID] = res
	}

	stored := make([]entity.AttemptAnswer, 0, len(answers))
	for _, ans := range answers {
		res := byQuestion[ans.QuestionID]
		row := entity.AttemptAnswer{
			AttemptID:        attemptID,
			QuestionID:       ans.QuestionID,
			SelectedOptionID: ans.SelectedOptionID,
			FreeText:         ans.FreeText,
			IsCorrect:        res.IsCorrect,
			PointsAwarded:    res.PointsAwarded,
		}
		if len(ans.SelectedOptionIDs) > 0 {
			row.SelectedOptionIDs = entity.UintArray(ans.SelectedOptionIDs)
		}
		stored = append(stored, row)
	}
	return stored
}

// AttemptView bundles an attempt with its test and questions for handlers.
type AttemptView struct {
	Attempt *entity.Attempt
	Test    *entity.Test
}

// GetAttempt returns the attempt with its test and questions for the
// taking view. Only the owner and admins may read it.
func (s *AttemptService) GetAttempt(subject rbac.Subject, attemptID uint) (*AttemptView, error) {
	attempt, err := s.attemptRepo.GetWithAnswers(attemptID)
	if err != nil {
		return nil, err
	}
	if !rbac.CanViewAttempt(subject, attempt.UserID) {
		return nil, apperrors.ErrForbidden
	}

	// Unscoped: the result must stay readable after the test is deleted.
	test, err := s.testRepo.GetWithQuestionsUnscoped(attempt.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load test: %w", err)
	}

	return &AttemptView{Attempt: attempt, Test: test}, nil
}

// GetAttemptResult returns the completed attempt with per-question
// correctness. Requesting the result of an in-progress attempt fails.
func (s *AttemptService) GetAttemptResult(subject rbac.Subject, attemptID uint) (*AttemptView, error) {
	view, err := s.GetAttempt(subject, attemptID)
	if err != nil {
		return nil, err
	}
	if !view.Attempt.IsCompleted() {
		return nil, ErrAttemptNotCompleted
	}
	return view, nil
}

// ListUserAttempts returns the subject's own attempts, newest first.
func (s *AttemptService) ListUserAttempts(subject rbac.Subject, limit, offset int) ([]entity.Attempt, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.attemptRepo.ListByUser(subject.UserID, limit, offset)
}

// ListTestAttempts returns every attempt on a test the subject manages,
// for the export endpoint.
func (s *AttemptService) ListTestAttempts(subject rbac.Subject, testID uint) ([]entity.Attempt, *entity.Test, error) {
	test, err := s.testRepo.GetByID(testID)
	if err != nil {
		return nil, nil, err
	}
	if !rbac.CanViewTest(subject, test.CreatedBy, test.IsPublished) {
		return nil, nil, apperrors.ErrNotFound
	}
	if !rbac.CanManageTest(subject, test.CreatedBy) {
		return nil, nil, apperrors.ErrForbidden
	}

	attempts, err := s.attemptRepo.ListByTest(testID)
	if err != nil {
		return nil, nil, err
	}
	return attempts, test, nil
}
