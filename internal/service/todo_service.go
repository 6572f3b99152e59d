package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "todohub/internal/errors"
	"todohub/internal/model"
	"todohub/internal/repository"
)

const todoListCacheTTL = 30 * time.Second

// TodoInput carries the writable fields of a todo.
type TodoInput struct {
	Title       string
	Description string
	Completed   bool
}

// TodoService exposes owner-scoped todo operations. The owner id is always
// the identity resolved from the access token, never a client-supplied field.
type TodoService interface {
	List(ctx context.Context, ownerID uint, limit, offset int) ([]model.Todo, error)
	Get(ctx context.Context, ownerID, todoID uint) (*model.Todo, error)
	Create(ctx context.Context, ownerID uint, input TodoInput) (*model.Todo, error)
	Update(ctx context.Context, ownerID, todoID uint, input TodoInput) (*model.Todo, error)
	Delete(ctx context.Context, ownerID, todoID uint) error
	ListAll(ctx context.Context, limit, offset int) ([]model.Todo, error)
}

type todoService struct {
	repo  repository.TodoRepository
	cache Cache
}

// NewTodoService builds a TodoService with repository and cache.
func NewTodoService(repo repository.TodoRepository, cache Cache) TodoService {
	return &todoService{repo: repo, cache: cache}
}

func (s *todoService) listCacheKey(ownerID uint, limit, offset int) string {
	return fmt.Sprintf("todos:%d:%d:%d", ownerID, limit, offset)
}

func (s *todoService) invalidateList(ctx context.Context, ownerID uint) {
	// First page is the hot one; other pages age out within the TTL.
	_ = s.cache.Delete(ctx, s.listCacheKey(ownerID, defaultListLimit, 0))
}

const defaultListLimit = 50

func (s *todoService) List(ctx context.Context, ownerID uint, limit, offset int) ([]model.Todo, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	key := s.listCacheKey(ownerID, limit, offset)
	if data, err := s.cache.Get(ctx, key); err == nil && data != nil {
		var cached []model.Todo
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	todos, err := s.repo.FindByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(todos); err == nil {
		_ = s.cache.Set(ctx, key, payload, todoListCacheTTL)
	}
	return todos, nil
}

func (s *todoService) Get(ctx context.Context, ownerID, todoID uint) (*model.Todo, error) {
	todo, err := s.repo.FindByID(ctx, ownerID, todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTodoNotFound
		}
		return nil, err
	}
	return todo, nil
}

func (s *todoService) Create(ctx context.Context, ownerID uint, input TodoInput) (*model.Todo, error) {
	todo := &model.Todo{
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
		UserID:      ownerID,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, err
	}
	s.invalidateList(ctx, ownerID)
	return todo, nil
}

func (s *todoService) Update(ctx context.Context, ownerID, todoID uint, input TodoInput) (*model.Todo, error) {
	todo, err := s.repo.FindByID(ctx, ownerID, todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTodoNotFound
		}
		return nil, err
	}

	todo.Title = input.Title
	todo.Description = input.Description
	todo.Completed = input.Completed

	if err := s.repo.Update(ctx, todo); err != nil {
		return nil, err
	}
	s.invalidateList(ctx, ownerID)
	return todo, nil
}

func (s *todoService) Delete(ctx context.Context, ownerID, todoID uint) error {
	if err := s.repo.Delete(ctx, ownerID, todoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTodoNotFound
		}
		return err
	}
	s.invalidateList(ctx, ownerID)
	return nil
}

// ListAll returns todos across all owners; the router restricts it to
// admin and moderator roles.
func (s *todoService) ListAll(ctx context.Context, limit, offset int) ([]model.Todo, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.ListAll(ctx, limit, offset)
}
