package entity

import (
	"time"

	"gorm.io/gorm"
)

// Test represents an authored test that users can attempt. Deleting a test
// is a soft delete; attempt history on it stays readable.
type Test struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Title            string         `gorm:"size:200;not null" json:"title"`
	Description      string         `gorm:"size:2000;not null;default:''" json:"description"`
	Difficulty       int            `gorm:"not null;default:1" json:"difficulty"` // 1..5
	TimeLimitSeconds int            `gorm:"not null;default:0" json:"time_limit_seconds"`
	IsPublished      bool           `gorm:"not null;default:false;index" json:"is_published"`
	CreatedBy        uint           `gorm:"not null;index" json:"created_by"`
	Questions        []Question     `gorm:"foreignKey:TestID" json:"questions,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName defines the GORM table name.
func (Test) TableName() string {
	return "tests"
}

// MaxScore returns the sum of point values over all loaded questions.
func (t *Test) MaxScore() float64 {
	var total float64
	for _, q := range t.Questions {
		total += q.Points
	}
	return total
}

// IsOwnedBy reports whether the test was created by the given user.
func (t *Test) IsOwnedBy(userID uint) bool {
	return t.CreatedBy == userID
}
