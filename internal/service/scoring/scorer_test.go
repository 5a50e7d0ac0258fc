package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/testhub-api/internal/domain/entity"
)

func uintPtr(v uint) *uint { return &v }

func singleChoiceQuestion() *entity.Question {
	return &entity.Question{
		ID:     1,
		Type:   entity.QuestionTypeSingleChoice,
		Points: 2,
		Options: []entity.AnswerOption{
			{ID: 10, QuestionID: 1, Text: "A", IsCorrect: false},
			{ID: 11, QuestionID: 1, Text: "B", IsCorrect: true},
			{ID: 12, QuestionID: 1, Text: "C", IsCorrect: false},
		},
	}
}

func multipleChoiceQuestion() *entity.Question {
	return &entity.Question{
		ID:     2,
		Type:   entity.QuestionTypeMultipleChoice,
		Points: 3,
		Options: []entity.AnswerOption{
			{ID: 20, QuestionID: 2, Text: "A", IsCorrect: true},
			{ID: 21, QuestionID: 2, Text: "B", IsCorrect: true},
			{ID: 22, QuestionID: 2, Text: "C", IsCorrect: false},
			{ID: 23, QuestionID: 2, Text: "D", IsCorrect: false},
		},
	}
}

func freeTextQuestion() *entity.Question {
	return &entity.Question{
		ID:     3,
		Type:   entity.QuestionTypeFreeText,
		Points: 1,
	}
}

func TestScoreQuestion_SingleChoice(t *testing.T) {
	q := singleChoiceQuestion()

	tests := []struct {
		name       string
		answer     SubmittedAnswer
		wantOK     bool
		wantPoints float64
	}{
		{
			name:       "correct option",
			answer:     SubmittedAnswer{QuestionID: 1, SelectedOptionID: uintPtr(11)},
			wantOK:     true,
			wantPoints: 2,
		},
		{
			name:       "wrong option",
			answer:     SubmittedAnswer{QuestionID: 1, SelectedOptionID: uintPtr(10)},
			wantOK:     false,
			wantPoints: 0,
		},
		{
			name:       "no selection",
			answer:     SubmittedAnswer{QuestionID: 1},
			wantOK:     false,
			wantPoints: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScoreQuestion(q, tt.answer)
			require.NotNil(t, res.IsCorrect)
			assert.Equal(t, tt.wantOK, *res.IsCorrect)
			assert.Equal(t, tt.wantPoints, res.PointsAwarded)
		})
	}
}

func TestScoreQuestion_MultipleChoice_ExactMatchOnly(t *testing.T) {
	q := multipleChoiceQuestion()

	tests := []struct {
		name       string
		selected   []uint
		wantOK     bool
		wantPoints float64
	}{
		{name: "exact match", selected: []uint{20, 21}, wantOK: true, wantPoints: 3},
		{name: "exact match different order", selected: []uint{21, 20}, wantOK: true, wantPoints: 3},
		{name: "subset earns nothing", selected: []uint{20}, wantOK: false, wantPoints: 0},
		{name: "superset earns nothing", selected: []uint{20, 21, 22}, wantOK: false, wantPoints: 0},
		{name: "disjoint", selected: []uint{22, 23}, wantOK: false, wantPoints: 0},
		{name: "empty selection", selected: nil, wantOK: false, wantPoints: 0},
		{name: "duplicates collapse to exact match", selected: []uint{20, 20, 21}, wantOK: true, wantPoints: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScoreQuestion(q, SubmittedAnswer{QuestionID: 2, SelectedOptionIDs: tt.selected})
			require.NotNil(t, res.IsCorrect)
			assert.Equal(t, tt.wantOK, *res.IsCorrect)
			assert.Equal(t, tt.wantPoints, res.PointsAwarded)
		})
	}
}

func TestScoreQuestion_FreeText_NotAutoScored(t *testing.T) {
	q := freeTextQuestion()

	res := ScoreQuestion(q, SubmittedAnswer{QuestionID: 3, FreeText: "goroutines are cheap"})
	assert.Nil(t, res.IsCorrect)
	assert.Zero(t, res.PointsAwarded)

	// Empty free text behaves the same way.
	res = ScoreQuestion(q, SubmittedAnswer{QuestionID: 3})
	assert.Nil(t, res.IsCorrect)
	assert.Zero(t, res.PointsAwarded)
}

func TestScoreAttempt_Totals(t *testing.T) {
	questions := []entity.Question{*singleChoiceQuestion(), *multipleChoiceQuestion(), *freeTextQuestion()}
	answers := []SubmittedAnswer{
		{QuestionID: 1, SelectedOptionID: uintPtr(11)},
		{QuestionID: 2, SelectedOptionIDs: []uint{20, 21}},
		{QuestionID: 3, FreeText: "lightweight concurrency"},
	}

	results, total, err := ScoreAttempt(questions, answers)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 5.0, total)
	assert.Equal(t, 6.0, MaxScore(questions))

	// Free text contributes nothing to the total.
	assert.Nil(t, results[2].IsCorrect)
}

func TestScoreAttempt_UnansweredQuestionsGradedEmpty(t *testing.T) {
	questions := []entity.Question{*singleChoiceQuestion(), *multipleChoiceQuestion()}

	results, total, err := ScoreAttempt(questions, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Zero(t, total)
	for _, res := range results {
		require.NotNil(t, res.IsCorrect)
		assert.False(t, *res.IsCorrect)
	}
}

func TestScoreAttempt_RejectsUnknownQuestion(t *testing.T) {
	questions := []entity.Question{*singleChoiceQuestion()}
	answers := []SubmittedAnswer{{QuestionID: 99, SelectedOptionID: uintPtr(11)}}

	_, _, err := ScoreAttempt(questions, answers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown question")
}

func TestScoreAttempt_RejectsForeignOption(t *testing.T) {
	questions := []entity.Question{*singleChoiceQuestion(), *multipleChoiceQuestion()}

	_, _, err := ScoreAttempt(questions, []SubmittedAnswer{
		{QuestionID: 1, SelectedOptionID: uintPtr(20)}, // belongs to question 2
	})
	require.Error(t, err)

	_, _, err = ScoreAttempt(questions, []SubmittedAnswer{
		{QuestionID: 2, SelectedOptionIDs: []uint{20, 11}},
	})
	require.Error(t, err)
}

func TestScoreAttempt_Deterministic(t *testing.T) {
	questions := []entity.Question{*singleChoiceQuestion(), *multipleChoiceQuestion(), *freeTextQuestion()}
	answers := []SubmittedAnswer{
		{QuestionID: 2, SelectedOptionIDs: []uint{21, 20}},
		{QuestionID: 1, SelectedOptionID: uintPtr(10)},
	}

	_, first, err := ScoreAttempt(questions, answers)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, again, err := ScoreAttempt(questions, answers)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
