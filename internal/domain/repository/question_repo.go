package repository

import (
	"github.com/yourusername/testhub-api/internal/domain/entity"
)

// QuestionRepository defines persistence operations for questions and options.
type QuestionRepository interface {
	// Create stores the question together with its options.
	Create(question *entity.Question) error
	// GetByID returns the question with options preloaded.
	GetByID(id uint) (*entity.Question, error)
	GetByTestID(testID uint) ([]entity.Question, error)
	// Update stores the question and replaces its options.
	Update(question *entity.Question) error
	// Delete removes the question and cascades to its options.
	Delete(id uint) error
}
