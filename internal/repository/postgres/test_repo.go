package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/yourusername/testhub-api/internal/domain/entity"
	"github.com/yourusername/testhub-api/internal/domain/repository"
	apperrors "github.com/yourusername/testhub-api/internal/pkg/errors"
)

// TestRepo implements repository.TestRepository.
type TestRepo struct {
	db *gorm.DB
}

// NewTestRepo creates a new test repository.
func NewTestRepo(db *gorm.DB) *TestRepo {
	return &TestRepo{db: db}
}

// Create stores a new test.
func (r *TestRepo) Create(test *entity.Test) error {
	return r.db.Create(test).Error
}

// GetByID returns the test by id.
func (r *TestRepo) GetByID(id uint) (*entity.Test, error) {
	var test entity.Test
	err := r.db.First(&test, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &test, nil
}

// GetWithQuestions returns the test with ordered questions and options.
func (r *TestRepo) GetWithQuestions(id uint) (*entity.Test, error) {
	return getWithQuestions(r.db, id)
}

// GetWithQuestionsUnscoped also finds soft-deleted tests, so attempt
// history stays readable after the test is gone.
func (r *TestRepo) GetWithQuestionsUnscoped(id uint) (*entity.Test, error) {
	return getWithQuestions(r.db.Unscoped(), id)
}

func getWithQuestions(db *gorm.DB, id uint) (*entity.Test, error) {
	var test entity.Test
	err := db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index, id")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index, id")
		}).
		First(&test, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &test, nil
}

// Update stores test changes.
func (r *TestRepo) Update(test *entity.Test) error {
	return r.db.Save(test).Error
}

// UpdatePublished flips only the is_published flag.
func (r *TestRepo) UpdatePublished(testID uint, published bool) error {
	result := r.db.Model(&entity.Test{}).
		Where("id = ?", testID).
		Update("is_published", published)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListWithFilters returns tests visible to the viewer plus the total count.
func (r *TestRepo) ListWithFilters(filters repository.TestFilters, limit, offset int) ([]entity.Test, int64, error) {
	var tests []entity.Test
	var total int64

	query := r.db.Model(&entity.Test{})

	// Visibility scoping.
	switch {
	case filters.ViewerIsAdmin:
		// Admin sees everything.
	case filters.ViewerID != nil:
		query = query.Where("is_published = TRUE OR created_by = ?", *filters.ViewerID)
	default:
		query = query.Where("is_published = TRUE")
	}

	if filters.Search != "" {
		search := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", search, search)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).Order("created_at DESC, id DESC").Find(&tests).Error
	if err != nil {
		return nil, 0, err
	}

	return tests, total, nil
}

// ListByCreator returns all tests owned by the creator, newest first.
func (r *TestRepo) ListByCreator(creatorID uint) ([]entity.Test, error) {
	var tests []entity.Test
	err := r.db.Where("created_by = ?", creatorID).
		Order("created_at DESC, id DESC").
		Find(&tests).Error
	return tests, err
}

// Delete soft-deletes the test. Questions, options and attempts stay in
// place for attempt history; the soft-deleted parent makes them
// unreachable through normal reads.
func (r *TestRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Test{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// isUniqueViolation checks a Postgres unique violation (23505) for both the
// pgconn and lib/pq driver error types.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}
