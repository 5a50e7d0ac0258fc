package repository

import (
	"time"

	"github.com/yourusername/testhub-api/internal/domain/entity"
	"gorm.io/gorm"
)

// AttemptRepository defines persistence operations for attempts and answers.
type AttemptRepository interface {
	Create(attempt *entity.Attempt) error
	GetByID(id uint) (*entity.Attempt, error)
	// GetWithAnswers returns the attempt with its stored answers preloaded.
	GetWithAnswers(id uint) (*entity.Attempt, error)
	ListByUser(userID uint, limit, offset int) ([]entity.Attempt, int64, error)
	ListByTest(testID uint) ([]entity.Attempt, error)
	// DeleteAnswers removes previously stored answers of the attempt.
	// Runs inside tx when tx is not nil.
	DeleteAnswers(tx *gorm.DB, attemptID uint) error
	// SaveAnswers stores the submitted answers. Runs inside tx when tx is
	// not nil.
	SaveAnswers(tx *gorm.DB, answers []entity.AttemptAnswer) error
	// CompleteAttempt atomically transitions in_progress → completed,
	// writing score and finished_at in the same guarded UPDATE. Returns
	// ErrAttemptAlreadyCompleted when the attempt is not in_progress.
	// Runs inside tx when tx is not nil.
	CompleteAttempt(tx *gorm.DB, attemptID uint, score float64, finishedAt time.Time) error
}
