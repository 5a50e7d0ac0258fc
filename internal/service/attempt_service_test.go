package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/testhub-api/internal/domain/entity"
	apperrors "github.com/yourusername/testhub-api/internal/pkg/errors"
	"github.com/yourusername/testhub-api/internal/service/scoring"
)

// The submit transaction itself runs against gorm.DB and is covered by
// integration tests; these tests exercise everything up to it.

func publishedTestWithQuestions() *entity.Test {
	return &entity.Test{
		ID:          5,
		CreatedBy:   7,
		IsPublished: true,
		Questions: []entity.Question{
			{ID: 1, TestID: 5, Type: entity.QuestionTypeSingleChoice, Points: 2,
				Options: []entity.AnswerOption{
					{ID: 10, QuestionID: 1, IsCorrect: false},
					{ID: 11, QuestionID: 1, IsCorrect: true},
				}},
			{ID: 2, TestID: 5, Type: entity.QuestionTypeFreeText, Points: 1},
		},
	}
}

func TestAttemptService_StartAttempt(t *testing.T) {
	t.Run("caches max score and starts in progress", func(t *testing.T) {
		testRepo := new(MockTestRepo)
		attemptRepo := new(MockAttemptRepo)
		svc := NewAttemptService(attemptRepo, testRepo, new(MockQuestionRepo), nil)

		testRepo.On("GetWithQuestions", uint(5)).Return(publishedTestWithQuestions(), nil)
		attemptRepo.On("Create", mock.AnythingOfType("*entity.Attempt")).Return(nil)

		attempt, err := svc.StartAttempt(takerSubject(1), 5)
		require.NoError(t, err)
		assert.Equal(t, entity.AttemptStatusInProgress, attempt.Status)
		assert.Equal(t, 3.0, attempt.MaxScore)
		assert.Equal(t, uint(1), attempt.UserID)
		assert.False(t, attempt.StartedAt.IsZero())
		attemptRepo.AssertExpectations(t)
	})

	t.Run("hidden test reads as not found", func(t *testing.T) {
		testRepo := new(MockTestRepo)
		svc := NewAttemptService(new(MockAttemptRepo), testRepo, new(MockQuestionRepo), nil)

		hidden := publishedTestWithQuestions()
		hidden.IsPublished = false
		testRepo.On("GetWithQuestions", uint(5)).Return(hidden, nil)

		_, err := svc.StartAttempt(takerSubject(1), 5)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("owner cannot attempt own unpublished test", func(t *testing.T) {
		testRepo := new(MockTestRepo)
		svc := NewAttemptService(new(MockAttemptRepo), testRepo, new(MockQuestionRepo), nil)

		hidden := publishedTestWithQuestions()
		hidden.IsPublished = false
		testRepo.On("GetWithQuestions", uint(5)).Return(hidden, nil)

		_, err := svc.StartAttempt(authorSubject(7), 5)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("empty test cannot be started", func(t *testing.T) {
		testRepo := new(MockTestRepo)
		svc := NewAttemptService(new(MockAttemptRepo), testRepo, new(MockQuestionRepo), nil)

		empty := publishedTestWithQuestions()
		empty.Questions = nil
		testRepo.On("GetWithQuestions", uint(5)).Return(empty, nil)

		_, err := svc.StartAttempt(takerSubject(1), 5)
		assert.ErrorIs(t, err, ErrTestHasNoQuestions)
	})
}

func TestAttemptService_SubmitAttempt_Guards(t *testing.T) {
	t.Run("foreign attempt is forbidden", func(t *testing.T) {
		attemptRepo := new(MockAttemptRepo)
		svc := NewAttemptService(attemptRepo, new(MockTestRepo), new(MockQuestionRepo), nil)

		attemptRepo.On("GetByID", uint(9)).Return(&entity.Attempt{ID: 9, UserID: 2, TestID: 5}, nil)

		_, err := svc.SubmitAttempt(takerSubject(1), 9, nil)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("second submission is rejected with a conflict", func(t *testing.T) {
		attemptRepo := new(MockAttemptRepo)
		svc := NewAttemptService(attemptRepo, new(MockTestRepo), new(MockQuestionRepo), nil)

		now := time.Now()
		attemptRepo.On("GetByID", uint(9)).Return(&entity.Attempt{
			ID: 9, UserID: 1, TestID: 5,
			Status: entity.AttemptStatusCompleted, FinishedAt: &now,
		}, nil)

		_, err := svc.SubmitAttempt(takerSubject(1), 9, nil)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("answer for an unknown question fails validation", func(t *testing.T) {
		attemptRepo := new(MockAttemptRepo)
		questionRepo := new(MockQuestionRepo)
		svc := NewAttemptService(attemptRepo, new(MockTestRepo), questionRepo, nil)

		attemptRepo.On("GetByID", uint(9)).Return(&entity.Attempt{ID: 9, UserID: 1, TestID: 5}, nil)
		questionRepo.On("GetByTestID", uint(5)).Return(publishedTestWithQuestions().Questions, nil)

		_, err := svc.SubmitAttempt(takerSubject(1), 9, []scoring.SubmittedAnswer{
			{QuestionID: 99, SelectedOptionID: uintPtr(11)},
		})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestAttemptService_GetAttemptResult(t *testing.T) {
	t.Run("in-progress attempt has no result", func(t *testing.T) {
		attemptRepo := new(MockAttemptRepo)
		testRepo := new(MockTestRepo)
		svc := NewAttemptService(attemptRepo, testRepo, new(MockQuestionRepo), nil)

		attemptRepo.On("GetWithAnswers", uint(9)).Return(&entity.Attempt{
			ID: 9, UserID: 1, TestID: 5, Status: entity.AttemptStatusInProgress,
		}, nil)
		testRepo.On("GetWithQuestionsUnscoped", uint(5)).Return(publishedTestWithQuestions(), nil)

		_, err := svc.GetAttemptResult(takerSubject(1), 9)
		assert.ErrorIs(t, err, ErrAttemptNotCompleted)
	})

	t.Run("admin reads another user's completed result", func(t *testing.T) {
		attemptRepo := new(MockAttemptRepo)
		testRepo := new(MockTestRepo)
		svc := NewAttemptService(attemptRepo, testRepo, new(MockQuestionRepo), nil)

		now := time.Now()
		attemptRepo.On("GetWithAnswers", uint(9)).Return(&entity.Attempt{
			ID: 9, UserID: 1, TestID: 5,
			Status: entity.AttemptStatusCompleted, FinishedAt: &now,
			Score: 2, MaxScore: 3,
		}, nil)
		testRepo.On("GetWithQuestionsUnscoped", uint(5)).Return(publishedTestWithQuestions(), nil)

		view, err := svc.GetAttemptResult(adminSubject(3), 9)
		require.NoError(t, err)
		assert.Equal(t, 2.0, view.Attempt.Score)
		assert.Equal(t, uint(5), view.Test.ID)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		attemptRepo := new(MockAttemptRepo)
		svc := NewAttemptService(attemptRepo, new(MockTestRepo), new(MockQuestionRepo), nil)

		attemptRepo.On("GetWithAnswers", uint(9)).Return(&entity.Attempt{ID: 9, UserID: 1, TestID: 5}, nil)

		_, err := svc.GetAttemptResult(takerSubject(2), 9)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestAttemptService_ListUserAttempts_ClampsPaging(t *testing.T) {
	attemptRepo := new(MockAttemptRepo)
	svc := NewAttemptService(attemptRepo, new(MockTestRepo), new(MockQuestionRepo), nil)

	attemptRepo.On("ListByUser", uint(1), 20, 0).Return([]entity.Attempt{}, int64(0), nil)

	_, _, err := svc.ListUserAttempts(takerSubject(1), 1000, -5)
	require.NoError(t, err)
	attemptRepo.AssertExpectations(t)
}
