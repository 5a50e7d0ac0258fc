package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/testhub-api/internal/domain/entity"
	apperrors "github.com/yourusername/testhub-api/internal/pkg/errors"
)

// QuestionRepo implements repository.QuestionRepository.
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo creates a new question repository.
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create stores the question together with its options.
func (r *QuestionRepo) Create(question *entity.Question) error {
	return r.db.Create(question).Error
}

// GetByID returns the question with ordered options preloaded.
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index, id")
		}).
		First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetByTestID returns the test's questions with options, in display order.
func (r *QuestionRepo) GetByTestID(testID uint) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index, id")
		}).
		Where("test_id = ?", testID).
		Order("order_index, id").
		Find(&questions).Error
	return questions, err
}

// Update stores the question and replaces its options in one transaction.
func (r *QuestionRepo) Update(question *entity.Question) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", question.ID).
			Delete(&entity.AnswerOption{}).Error; err != nil {
			return err
		}
		for i := range question.Options {
			question.Options[i].ID = 0
			question.Options[i].QuestionID = question.ID
		}
		return tx.Save(question).Error
	})
}

// Delete removes the question and its options.
func (r *QuestionRepo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).
			Delete(&entity.AnswerOption{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.Question{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}
