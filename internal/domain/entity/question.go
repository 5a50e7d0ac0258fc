package entity

import (
	"time"
)

// Question types.
const (
	QuestionTypeSingleChoice   = "single_choice"
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeFreeText       = "free_text"
)

// Question represents a single question inside a test.
type Question struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	TestID     uint           `gorm:"not null;index" json:"test_id"`
	Text       string         `gorm:"size:2000;not null" json:"text"`
	Type       string         `gorm:"size:20;not null" json:"type"`
	OrderIndex int            `gorm:"not null;default:0" json:"order_index"`
	Points     float64        `gorm:"type:numeric(5,2);not null;default:1" json:"points"`
	Options    []AnswerOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// TableName defines the GORM table name.
func (Question) TableName() string {
	return "questions"
}

// IsChoice reports whether the question is scored against its options.
func (q *Question) IsChoice() bool {
	return q.Type == QuestionTypeSingleChoice || q.Type == QuestionTypeMultipleChoice
}

// CorrectOptionIDs returns the ids of options flagged correct.
func (q *Question) CorrectOptionIDs() []uint {
	var ids []uint
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// HasOption reports whether the option id belongs to this question.
func (q *Question) HasOption(optionID uint) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// ValidQuestionType reports whether t is one of the supported question types.
func ValidQuestionType(t string) bool {
	switch t {
	case QuestionTypeSingleChoice, QuestionTypeMultipleChoice, QuestionTypeFreeText:
		return true
	}
	return false
}
