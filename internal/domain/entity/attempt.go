package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Attempt statuses.
const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusCompleted  = "completed"
)

// Attempt represents a single user's run through a test, from start to submission.
type Attempt struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"not null;index" json:"user_id"`
	TestID     uint            `gorm:"not null;index" json:"test_id"`
	Status     string          `gorm:"size:20;not null;default:'in_progress';index" json:"status"`
	StartedAt  time.Time       `gorm:"not null" json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Score      float64         `gorm:"type:numeric(6,2);not null;default:0" json:"score"`
	MaxScore   float64         `gorm:"type:numeric(6,2);not null;default:0" json:"max_score"`
	Answers    []AttemptAnswer `gorm:"foreignKey:AttemptID" json:"answers,omitempty"`
	User       *User           `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName defines the GORM table name.
func (Attempt) TableName() string {
	return "attempts"
}

// IsCompleted reports whether the attempt has been submitted and scored.
func (a *Attempt) IsCompleted() bool {
	return a.Status == AttemptStatusCompleted
}

// UintArray is a custom type stored as JSONB, used for the selected option
// ids of multiple-choice answers.
type UintArray []uint

// Scan implements sql.Scanner for UintArray.
func (o *UintArray) Scan(value interface{}) error {
	if value == nil {
		*o = UintArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = UintArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value implements driver.Valuer for UintArray.
func (o UintArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(o)
}

// AttemptAnswer stores one submitted answer inside an attempt.
// SelectedOptionID is set for single-choice questions, SelectedOptionIDs for
// multiple-choice, FreeText for free-text. IsCorrect stays NULL for answers
// that are not auto-scored.
type AttemptAnswer struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	AttemptID         uint      `gorm:"not null;index;uniqueIndex:idx_attempt_question" json:"attempt_id"`
	QuestionID        uint      `gorm:"not null;uniqueIndex:idx_attempt_question" json:"question_id"`
	SelectedOptionID  *uint     `json:"selected_option_id,omitempty"`
	SelectedOptionIDs UintArray `gorm:"type:jsonb;not null;default:'[]'" json:"selected_option_ids,omitempty"`
	FreeText          string    `gorm:"type:text;not null;default:''" json:"free_text,omitempty"`
	IsCorrect         *bool     `json:"is_correct,omitempty"`
	PointsAwarded     float64   `gorm:"type:numeric(5,2);not null;default:0" json:"points_awarded"`
	CreatedAt         time.Time `json:"created_at"`
}

// TableName defines the GORM table name.
func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}
