package entity

// AnswerOption represents one selectable option of a choice question.
// IsCorrect is hidden from JSON; DTO constructors decide when the
// correctness flag may be exposed (managers and completed results only).
type AnswerOption struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	Text       string `gorm:"size:1000;not null" json:"text"`
	IsCorrect  bool   `gorm:"not null;default:false" json:"-"`
	OrderIndex int    `gorm:"not null;default:0" json:"order_index"`
}

// TableName defines the GORM table name.
func (AnswerOption) TableName() string {
	return "answer_options"
}
