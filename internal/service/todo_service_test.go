package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "todohub/internal/errors"
	"todohub/internal/model"
)

// MockTodoRepository is a mock implementation of TodoRepository.
type MockTodoRepository struct {
	mock.Mock
}

func (m *MockTodoRepository) Create(ctx context.Context, todo *model.Todo) error {
	args := m.Called(ctx, todo)
	return args.Error(0)
}

func (m *MockTodoRepository) FindByOwner(ctx context.Context, ownerID uint, limit, offset int) ([]model.Todo, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Todo), args.Error(1)
}

func (m *MockTodoRepository) FindByID(ctx context.Context, ownerID, todoID uint) (*model.Todo, error) {
	args := m.Called(ctx, ownerID, todoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Todo), args.Error(1)
}

func (m *MockTodoRepository) Update(ctx context.Context, todo *model.Todo) error {
	args := m.Called(ctx, todo)
	return args.Error(0)
}

func (m *MockTodoRepository) Delete(ctx context.Context, ownerID, todoID uint) error {
	args := m.Called(ctx, ownerID, todoID)
	return args.Error(0)
}

func (m *MockTodoRepository) ListAll(ctx context.Context, limit, offset int) ([]model.Todo, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Todo), args.Error(1)
}

// nopCache misses every read; services must treat the cache as optional.
type nopCache struct{}

func (nopCache) Get(ctx context.Context, key string) ([]byte, error) { return nil, nil }
func (nopCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}
func (nopCache) Delete(ctx context.Context, key string) error { return nil }

func TestTodoService_Create(t *testing.T) {
	mockRepo := new(MockTodoRepository)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(todo *model.Todo) bool {
		return todo.UserID == 7 && todo.Title == "buy milk"
	})).Return(nil)

	svc := NewTodoService(mockRepo, nopCache{})

	todo, err := svc.Create(context.Background(), 7, TodoInput{Title: "buy milk"})
	assert.NoError(t, err)
	assert.Equal(t, uint(7), todo.UserID)
	assert.Equal(t, "buy milk", todo.Title)
	assert.False(t, todo.Completed)
	mockRepo.AssertExpectations(t)
}

func TestTodoService_Get_NotFoundIsUniform(t *testing.T) {
	// A miss looks the same whether the id is unknown or owned by someone
	// else; the repository already collapses both into ErrRecordNotFound.
	mockRepo := new(MockTodoRepository)
	mockRepo.On("FindByID", mock.Anything, uint(2), uint(10)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewTodoService(mockRepo, nopCache{})

	_, err := svc.Get(context.Background(), 2, 10)
	assert.ErrorIs(t, err, apperrors.ErrTodoNotFound)
}

func TestTodoService_Update(t *testing.T) {
	t.Run("updates own todo", func(t *testing.T) {
		existing := &model.Todo{ID: 10, UserID: 1, Title: "old", Completed: false}
		mockRepo := new(MockTodoRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1), uint(10)).Return(existing, nil)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(todo *model.Todo) bool {
			return todo.ID == 10 && todo.Title == "new" && todo.Completed
		})).Return(nil)

		svc := NewTodoService(mockRepo, nopCache{})

		todo, err := svc.Update(context.Background(), 1, 10, TodoInput{Title: "new", Completed: true})
		assert.NoError(t, err)
		assert.Equal(t, "new", todo.Title)
		mockRepo.AssertExpectations(t)
	})

	t.Run("other owner's todo is not found", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("FindByID", mock.Anything, uint(2), uint(10)).Return(nil, gorm.ErrRecordNotFound)

		svc := NewTodoService(mockRepo, nopCache{})

		_, err := svc.Update(context.Background(), 2, 10, TodoInput{Title: "hijack"})
		assert.ErrorIs(t, err, apperrors.ErrTodoNotFound)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestTodoService_Delete(t *testing.T) {
	t.Run("deletes own todo", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("Delete", mock.Anything, uint(1), uint(10)).Return(nil)

		svc := NewTodoService(mockRepo, nopCache{})
		assert.NoError(t, svc.Delete(context.Background(), 1, 10))
	})

	t.Run("other owner's todo is not found", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("Delete", mock.Anything, uint(2), uint(10)).Return(gorm.ErrRecordNotFound)

		svc := NewTodoService(mockRepo, nopCache{})
		assert.ErrorIs(t, svc.Delete(context.Background(), 2, 10), apperrors.ErrTodoNotFound)
	})
}

func TestTodoService_List_DefaultsLimit(t *testing.T) {
	mockRepo := new(MockTodoRepository)
	mockRepo.On("FindByOwner", mock.Anything, uint(1), defaultListLimit, 0).Return([]model.Todo{
		{ID: 10, UserID: 1, Title: "buy milk"},
	}, nil)

	svc := NewTodoService(mockRepo, nopCache{})

	todos, err := svc.List(context.Background(), 1, 0, 0)
	assert.NoError(t, err)
	assert.Len(t, todos, 1)
	assert.Equal(t, uint(1), todos[0].UserID)
	mockRepo.AssertExpectations(t)
}

// memCache is a map-backed Cache used to verify read-through behavior.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (m *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func TestTodoService_List_ReadThroughCache(t *testing.T) {
	mockRepo := new(MockTodoRepository)
	mockRepo.On("FindByOwner", mock.Anything, uint(1), defaultListLimit, 0).Return([]model.Todo{
		{ID: 10, UserID: 1, Title: "buy milk"},
	}, nil).Once()

	svc := NewTodoService(mockRepo, newMemCache())

	first, err := svc.List(context.Background(), 1, 0, 0)
	assert.NoError(t, err)
	second, err := svc.List(context.Background(), 1, 0, 0)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	mockRepo.AssertExpectations(t)
}
