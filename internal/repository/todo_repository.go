package repository

import (
	"context"

	"gorm.io/gorm"

	"todohub/internal/model"
)

// TodoRepository defines todo persistence operations. Every owner-scoped
// query filters by user_id in SQL; a todo belonging to another owner is
// indistinguishable from a missing one.
type TodoRepository interface {
	Create(ctx context.Context, todo *model.Todo) error
	FindByOwner(ctx context.Context, ownerID uint, limit, offset int) ([]model.Todo, error)
	FindByID(ctx context.Context, ownerID, todoID uint) (*model.Todo, error)
	Update(ctx context.Context, todo *model.Todo) error
	Delete(ctx context.Context, ownerID, todoID uint) error
	ListAll(ctx context.Context, limit, offset int) ([]model.Todo, error)
}

type todoRepository struct {
	db *gorm.DB
}

// NewTodoRepository builds a GORM-backed repository.
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) Create(ctx context.Context, todo *model.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

func (r *todoRepository) FindByOwner(ctx context.Context, ownerID uint, limit, offset int) ([]model.Todo, error) {
	var todos []model.Todo
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Limit(limit).Offset(offset).
		Find(&todos).Error
	if err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *todoRepository) FindByID(ctx context.Context, ownerID, todoID uint) (*model.Todo, error) {
	var todo model.Todo
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", todoID, ownerID).
		First(&todo).Error
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepository) Update(ctx context.Context, todo *model.Todo) error {
	return r.db.WithContext(ctx).Save(todo).Error
}

// Delete removes a todo owned by ownerID. A miss, whether the id is unknown
// or owned by someone else, surfaces as gorm.ErrRecordNotFound.
func (r *todoRepository) Delete(ctx context.Context, ownerID, todoID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", todoID, ownerID).
		Delete(&model.Todo{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListAll returns todos across all owners. Reserved for the admin surface.
func (r *todoRepository) ListAll(ctx context.Context, limit, offset int) ([]model.Todo, error) {
	var todos []model.Todo
	err := r.db.WithContext(ctx).
		Limit(limit).Offset(offset).
		Order("id").
		Find(&todos).Error
	if err != nil {
		return nil, err
	}
	return todos, nil
}
