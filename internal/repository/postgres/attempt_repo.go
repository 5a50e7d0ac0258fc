package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/testhub-api/internal/domain/entity"
	"github.com/yourusername/testhub-api/internal/domain/repository"
	apperrors "github.com/yourusername/testhub-api/internal/pkg/errors"
)

// AttemptRepo implements repository.AttemptRepository.
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo creates a new attempt repository.
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Create stores a new attempt.
func (r *AttemptRepo) Create(attempt *entity.Attempt) error {
	return r.db.Create(attempt).Error
}

// GetByID returns the attempt by id.
func (r *AttemptRepo) GetByID(id uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.First(&attempt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// GetWithAnswers returns the attempt with stored answers preloaded.
func (r *AttemptRepo) GetWithAnswers(id uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.Preload("Answers").First(&attempt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// ListByUser returns the user's attempts, newest first, with the total count.
func (r *AttemptRepo) ListByUser(userID uint, limit, offset int) ([]entity.Attempt, int64, error) {
	var attempts []entity.Attempt
	var total int64

	query := r.db.Model(&entity.Attempt{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).
		Order("started_at DESC, id DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

// ListByTest returns every attempt on the test, newest first, with the
// taking user preloaded for reporting.
func (r *AttemptRepo) ListByTest(testID uint) ([]entity.Attempt, error) {
	var attempts []entity.Attempt
	err := r.db.Preload("User").Where("test_id = ?", testID).
		Order("started_at DESC, id DESC").
		Find(&attempts).Error
	return attempts, err
}

// DeleteAnswers removes previously stored answers of the attempt.
func (r *AttemptRepo) DeleteAnswers(tx *gorm.DB, attemptID uint) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.Where("attempt_id = ?", attemptID).Delete(&entity.AttemptAnswer{}).Error
}

// SaveAnswers stores the submitted answers.
func (r *AttemptRepo) SaveAnswers(tx *gorm.DB, answers []entity.AttemptAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	db := r.db
	if tx != nil {
		db = tx
	}
	err := db.Create(&answers).Error
	if err != nil && isUniqueViolation(err) {
		// idx_attempt_question: one stored answer per question per attempt.
		return fmt.Errorf("%w: duplicate answer for a question", apperrors.ErrConflict)
	}
	return err
}

// CompleteAttempt atomically transitions in_progress → completed.
//   - RowsAffected == 0 and the attempt exists → already completed
//   - RowsAffected == 0 and no such attempt → not found
func (r *AttemptRepo) CompleteAttempt(tx *gorm.DB, attemptID uint, score float64, finishedAt time.Time) error {
	db := r.db
	if tx != nil {
		db = tx
	}

	result := db.Model(&entity.Attempt{}).
		Where("id = ? AND status = ?", attemptID, entity.AttemptStatusInProgress).
		Updates(map[string]interface{}{
			"status":      entity.AttemptStatusCompleted,
			"score":       score,
			"finished_at": finishedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("complete attempt #%d failed: %w", attemptID, result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&entity.Attempt{}).Where("id = ?", attemptID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: attempt #%d", repository.ErrAttemptAlreadyCompleted, attemptID)
	}

	return nil
}
