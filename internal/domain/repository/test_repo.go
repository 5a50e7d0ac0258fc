package repository

import (
	"github.com/yourusername/testhub-api/internal/domain/entity"
)

// TestFilters defines listing filters for tests.
type TestFilters struct {
	Search string // title/description search
	// Visibility scoping: when ViewerID is nil only published tests are
	// returned; otherwise published tests plus the viewer's own, and all
	// tests when ViewerIsAdmin is set.
	ViewerID      *uint
	ViewerIsAdmin bool
}

// TestRepository defines persistence operations for tests.
type TestRepository interface {
	Create(test *entity.Test) error
	GetByID(id uint) (*entity.Test, error)
	// GetWithQuestions returns the test with questions and options
	// preloaded, ordered by order_index.
	GetWithQuestions(id uint) (*entity.Test, error)
	// GetWithQuestionsUnscoped is GetWithQuestions including soft-deleted
	// tests, for reading attempt history after a test is deleted.
	GetWithQuestionsUnscoped(id uint) (*entity.Test, error)
	Update(test *entity.Test) error
	// UpdatePublished flips only the is_published flag.
	UpdatePublished(testID uint, published bool) error
	ListWithFilters(filters TestFilters, limit, offset int) ([]entity.Test, int64, error)
	ListByCreator(creatorID uint) ([]entity.Test, error)
	// Delete soft-deletes the test. Its questions, options and attempts
	// stay in place but become unreachable through normal reads.
	Delete(id uint) error
}
