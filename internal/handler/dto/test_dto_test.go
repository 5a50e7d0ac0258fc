package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/testhub-api/internal/domain/entity"
)

func sampleQuestion() *entity.Question {
	return &entity.Question{
		ID: 1, TestID: 5, Text: "Pick one", Type: entity.QuestionTypeSingleChoice, Points: 2,
		Options: []entity.AnswerOption{
			{ID: 10, QuestionID: 1, Text: "A", IsCorrect: false, OrderIndex: 0},
			{ID: 11, QuestionID: 1, Text: "B", IsCorrect: true, OrderIndex: 1},
		},
	}
}

func TestNewQuestionResponse_HidesAnswerKeyForTakers(t *testing.T) {
	resp := NewQuestionResponse(sampleQuestion(), false)

	require.Len(t, resp.Options, 2)
	for _, opt := range resp.Options {
		assert.Nil(t, opt.IsCorrect, "takers must not see option correctness")
	}
}

func TestNewQuestionResponse_ExposesAnswerKeyForManagers(t *testing.T) {
	resp := NewQuestionResponse(sampleQuestion(), true)

	require.Len(t, resp.Options, 2)
	require.NotNil(t, resp.Options[0].IsCorrect)
	require.NotNil(t, resp.Options[1].IsCorrect)
	assert.False(t, *resp.Options[0].IsCorrect)
	assert.True(t, *resp.Options[1].IsCorrect)
}

func TestNewTestResponse(t *testing.T) {
	test := &entity.Test{
		ID: 5, Title: "Go Basics", Difficulty: 2, CreatedBy: 7,
		Questions: []entity.Question{*sampleQuestion()},
	}

	t.Run("with questions", func(t *testing.T) {
		resp := NewTestResponse(test, true, false)
		assert.Equal(t, 1, resp.QuestionCount)
		assert.Equal(t, 2.0, resp.MaxScore)
		require.Len(t, resp.Questions, 1)
		assert.Nil(t, resp.Questions[0].Options[1].IsCorrect)
	})

	t.Run("listing omits questions but keeps the count", func(t *testing.T) {
		resp := NewTestResponse(test, false, false)
		assert.Equal(t, 1, resp.QuestionCount)
		assert.Nil(t, resp.Questions)
	})

	t.Run("nil test", func(t *testing.T) {
		assert.Nil(t, NewTestResponse(nil, true, true))
	})
}

func TestNewAttemptResultResponse(t *testing.T) {
	now := time.Now()
	correct := true
	attempt := &entity.Attempt{
		ID: 9, UserID: 1, TestID: 5,
		Status: entity.AttemptStatusCompleted, FinishedAt: &now,
		Score: 2, MaxScore: 3,
		Answers: []entity.AttemptAnswer{
			{AttemptID: 9, QuestionID: 1, SelectedOptionID: func() *uint { v := uint(11); return &v }(), IsCorrect: &correct, PointsAwarded: 2},
		},
	}
	test := &entity.Test{
		ID: 5, Title: "Go Basics",
		Questions: []entity.Question{
			*sampleQuestion(),
			{ID: 2, TestID: 5, Text: "Explain", Type: entity.QuestionTypeFreeText, Points: 1},
		},
	}

	resp := NewAttemptResultResponse(attempt, test)
	require.Len(t, resp.Answers, 2)

	answered := resp.Answers[0]
	require.NotNil(t, answered.IsCorrect)
	assert.True(t, *answered.IsCorrect)
	assert.Equal(t, 2.0, answered.PointsAwarded)
	assert.Equal(t, []uint{11}, answered.CorrectOptionIDs, "results include the answer key")

	skipped := resp.Answers[1]
	assert.Nil(t, skipped.IsCorrect, "skipped free-text stays unscored")
	assert.Zero(t, skipped.PointsAwarded)
	assert.Empty(t, skipped.CorrectOptionIDs)
}
