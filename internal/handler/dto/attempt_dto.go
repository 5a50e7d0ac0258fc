package dto

import (
	"time"

	"github.com/yourusername/testhub-api/internal/domain/entity"
)

// AttemptResponse represents an attempt in API responses. Score fields
// stay at zero until the attempt is completed.
type AttemptResponse struct {
	ID         uint       `json:"id"`
	UserID     uint       `json:"user_id"`
	TestID     uint       `json:"test_id"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Score      float64    `json:"score"`
	MaxScore   float64    `json:"max_score"`
}

// AnswerResultResponse represents one scored answer inside a completed
// attempt's result. IsCorrect stays null for free-text answers.
type AnswerResultResponse struct {
	QuestionID        uint    `json:"question_id"`
	QuestionText      string  `json:"question_text"`
	Type              string  `json:"type"`
	Points            float64 `json:"points"`
	SelectedOptionID  *uint   `json:"selected_option_id,omitempty"`
	SelectedOptionIDs []uint  `json:"selected_option_ids,omitempty"`
	FreeText          string  `json:"free_text,omitempty"`
	IsCorrect         *bool   `json:"is_correct"`
	PointsAwarded     float64 `json:"points_awarded"`
	CorrectOptionIDs  []uint  `json:"correct_option_ids,omitempty"`
}

// AttemptResultResponse is the completed attempt with per-question outcomes.
type AttemptResultResponse struct {
	Attempt   *AttemptResponse       `json:"attempt"`
	TestTitle string                 `json:"test_title"`
	Answers   []AnswerResultResponse `json:"answers"`
}

// PaginatedAttemptResponse represents a paginated attempt listing.
type PaginatedAttemptResponse struct {
	Attempts []*AttemptResponse `json:"attempts"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PerPage  int                `json:"per_page"`
}

// NewAttemptResponse creates an attempt DTO from the entity.
func NewAttemptResponse(attempt *entity.Attempt) *AttemptResponse {
	if attempt == nil {
		return nil
	}
	return &AttemptResponse{
		ID:         attempt.ID,
		UserID:     attempt.UserID,
		TestID:     attempt.TestID,
		Status:     attempt.Status,
		StartedAt:  attempt.StartedAt,
		FinishedAt: attempt.FinishedAt,
		Score:      attempt.Score,
		MaxScore:   attempt.MaxScore,
	}
}

// NewAttemptResultResponse builds the result payload for a completed
// attempt. Questions the user skipped appear with no recorded answer.
// The answer key is included because results are only served once the
// attempt is completed.
func NewAttemptResultResponse(attempt *entity.Attempt, test *entity.Test) *AttemptResultResponse {
	answersByQuestion := make(map[uint]entity.AttemptAnswer, len(attempt.Answers))
	for _, ans := range attempt.Answers {
		answersByQuestion[ans.QuestionID] = ans
	}

	answers := make([]AnswerResultResponse, len(test.Questions))
	for i, q := range test.Questions {
		row := AnswerResultResponse{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			Type:         q.Type,
			Points:       q.Points,
		}
		if q.IsChoice() {
			row.CorrectOptionIDs = q.CorrectOptionIDs()
		}
		if ans, ok := answersByQuestion[q.ID]; ok {
			row.SelectedOptionID = ans.SelectedOptionID
			row.SelectedOptionIDs = ans.SelectedOptionIDs
			row.FreeText = ans.FreeText
			row.IsCorrect = ans.IsCorrect
			row.PointsAwarded = ans.PointsAwarded
		} else if q.IsChoice() {
			incorrect := false
			row.IsCorrect = &incorrect
		}
		answers[i] = row
	}

	return &AttemptResultResponse{
		Attempt:   NewAttemptResponse(attempt),
		TestTitle: test.Title,
		Answers:   answers,
	}
}

// NewListAttemptResponse creates attempt DTOs for a listing.
func NewListAttemptResponse(attempts []entity.Attempt) []*AttemptResponse {
	list := make([]*AttemptResponse, len(attempts))
	for i, attempt := range attempts {
		attemptCopy := attempt
		list[i] = NewAttemptResponse(&attemptCopy)
	}
	return list
}

// NewPaginatedAttemptResponse creates the paginated listing payload.
func NewPaginatedAttemptResponse(attempts []entity.Attempt, total int64, page, perPage int) *PaginatedAttemptResponse {
	return &PaginatedAttemptResponse{
		Attempts: NewListAttemptResponse(attempts),
		Total:    total,
		Page:     page,
		PerPage:  perPage,
	}
}
