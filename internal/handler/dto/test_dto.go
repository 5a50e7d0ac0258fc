package dto

import (
	"time"

	"github.com/yourusername/testhub-api/internal/domain/entity"
)

// OptionResponse represents an answer option. IsCorrect is only filled
// for readers allowed to see the answer key.
type OptionResponse struct {
	ID         uint   `json:"id"`
	Text       string `json:"text"`
	OrderIndex int    `json:"order_index"`
	IsCorrect  *bool  `json:"is_correct,omitempty"`
}

// QuestionResponse represents a question in API responses.
type QuestionResponse struct {
	ID         uint             `json:"id"`
	TestID     uint             `json:"test_id"`
	Text       string           `json:"text"`
	Type       string           `json:"type"`
	OrderIndex int              `json:"order_index"`
	Points     float64          `json:"points"`
	Options    []OptionResponse `json:"options"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// TestResponse represents a test in API responses.
type TestResponse struct {
	ID               uint               `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description,omitempty"`
	Difficulty       int                `json:"difficulty"`
	TimeLimitSeconds int                `json:"time_limit_seconds"`
	IsPublished      bool               `json:"is_published"`
	CreatedBy        uint               `json:"created_by"`
	QuestionCount    int                `json:"question_count"`
	MaxScore         float64            `json:"max_score"`
	Questions        []QuestionResponse `json:"questions,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// PaginatedTestResponse represents a paginated test listing.
type PaginatedTestResponse struct {
	Tests   []*TestResponse `json:"tests"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}

// NewQuestionResponse creates a question DTO. includeAnswers controls
// whether option correctness is exposed; test takers never see it.
func NewQuestionResponse(q *entity.Question, includeAnswers bool) QuestionResponse {
	options := make([]OptionResponse, len(q.Options))
	for i, opt := range q.Options {
		options[i] = OptionResponse{
			ID:         opt.ID,
			Text:       opt.Text,
			OrderIndex: opt.OrderIndex,
		}
		if includeAnswers {
			correct := opt.IsCorrect
			options[i].IsCorrect = &correct
		}
	}

	return QuestionResponse{
		ID:         q.ID,
		TestID:     q.TestID,
		Text:       q.Text,
		Type:       q.Type,
		OrderIndex: q.OrderIndex,
		Points:     q.Points,
		Options:    options,
		CreatedAt:  q.CreatedAt,
		UpdatedAt:  q.UpdatedAt,
	}
}

// NewTestResponse creates a test DTO. includeQuestions controls whether
// the question list is embedded; includeAnswers is forwarded to the
// question DTOs.
func NewTestResponse(test *entity.Test, includeQuestions, includeAnswers bool) *TestResponse {
	if test == nil {
		return nil
	}

	var questions []QuestionResponse
	if includeQuestions {
		questions = make([]QuestionResponse, len(test.Questions))
		for i, q := range test.Questions {
			questionCopy := q
			questions[i] = NewQuestionResponse(&questionCopy, includeAnswers)
		}
	}

	return &TestResponse{
		ID:               test.ID,
		Title:            test.Title,
		Description:      test.Description,
		Difficulty:       test.Difficulty,
		TimeLimitSeconds: test.TimeLimitSeconds,
		IsPublished:      test.IsPublished,
		CreatedBy:        test.CreatedBy,
		QuestionCount:    len(test.Questions),
		MaxScore:         test.MaxScore(),
		Questions:        questions,
		CreatedAt:        test.CreatedAt,
		UpdatedAt:        test.UpdatedAt,
	}
}

// NewListTestResponse creates test DTOs for a listing, without questions.
func NewListTestResponse(tests []entity.Test) []*TestResponse {
	list := make([]*TestResponse, len(tests))
	for i, test := range tests {
		testCopy := test
		list[i] = NewTestResponse(&testCopy, false, false)
	}
	return list
}

// NewPaginatedTestResponse creates the paginated listing payload.
func NewPaginatedTestResponse(tests []entity.Test, total int64, page, perPage int) *PaginatedTestResponse {
	return &PaginatedTestResponse{
		Tests:   NewListTestResponse(tests),
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}
}
