package service

import (
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/yourusername/testhub-api/internal/domain/entity"
	"github.com/yourusername/testhub-api/internal/domain/repository"
)

// Shared hand-written mocks for the service tests.

func uintPtr(v uint) *uint { return &v }

// MockUserRepo implements repository.UserRepository.
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

// MockRoleRepo implements repository.RoleRepository.
type MockRoleRepo struct {
	mock.Mock
}

func (m *MockRoleRepo) GetByName(name string) (*entity.Role, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Role), args.Error(1)
}

func (m *MockRoleRepo) EnsureRole(name, description string) (*entity.Role, error) {
	args := m.Called(name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Role), args.Error(1)
}

func (m *MockRoleRepo) AssignRole(userID uint, roleName string) error {
	args := m.Called(userID, roleName)
	return args.Error(0)
}

// MockTestRepo implements repository.TestRepository.
type MockTestRepo struct {
	mock.Mock
}

func (m *MockTestRepo) Create(test *entity.Test) error {
	args := m.Called(test)
	return args.Error(0)
}

func (m *MockTestRepo) GetByID(id uint) (*entity.Test, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Test), args.Error(1)
}

func (m *MockTestRepo) GetWithQuestions(id uint) (*entity.Test, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Test), args.Error(1)
}

func (m *MockTestRepo) GetWithQuestionsUnscoped(id uint) (*entity.Test, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Test), args.Error(1)
}

func (m *MockTestRepo) Update(test *entity.Test) error {
	args := m.Called(test)
	return args.Error(0)
}

func (m *MockTestRepo) UpdatePublished(testID uint, published bool) error {
	args := m.Called(testID, published)
	return args.Error(0)
}

func (m *MockTestRepo) ListWithFilters(filters repository.TestFilters, limit, offset int) ([]entity.Test, int64, error) {
	args := m.Called(filters, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Test), args.Get(1).(int64), args.Error(2)
}

func (m *MockTestRepo) ListByCreator(creatorID uint) ([]entity.Test, error) {
	args := m.Called(creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Test), args.Error(1)
}

func (m *MockTestRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockQuestionRepo implements repository.QuestionRepository.
type MockQuestionRepo struct {
	mock.Mock
}

func (m *MockQuestionRepo) Create(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepo) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) GetByTestID(testID uint) ([]entity.Question, error) {
	args := m.Called(testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) Update(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockAttemptRepo implements repository.AttemptRepository.
type MockAttemptRepo struct {
	mock.Mock
}

func (m *MockAttemptRepo) Create(attempt *entity.Attempt) error {
	args := m.Called(attempt)
	return args.Error(0)
}

func (m *MockAttemptRepo) GetByID(id uint) (*entity.Attempt, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepo) GetWithAnswers(id uint) (*entity.Attempt, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepo) ListByUser(userID uint, limit, offset int) ([]entity.Attempt, int64, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Attempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepo) ListByTest(testID uint) ([]entity.Attempt, error) {
	args := m.Called(testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepo) DeleteAnswers(tx *gorm.DB, attemptID uint) error {
	args := m.Called(tx, attemptID)
	return args.Error(0)
}

func (m *MockAttemptRepo) SaveAnswers(tx *gorm.DB, answers []entity.AttemptAnswer) error {
	args := m.Called(tx, answers)
	return args.Error(0)
}

func (m *MockAttemptRepo) CompleteAttempt(tx *gorm.DB, attemptID uint, score float64, finishedAt time.Time) error {
	args := m.Called(tx, attemptID, score, finishedAt)
	return args.Error(0)
}

// MockCacheRepo implements repository.CacheRepository.
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepo) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepo) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepo) Increment(key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepo) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}
