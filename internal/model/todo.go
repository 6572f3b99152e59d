package model

import (
	"time"

	"gorm.io/gorm"
)

// Todo is a task record owned by exactly one user. Every query against it
// must filter by UserID; ownership is never taken from client input.
type Todo struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title" gorm:"size:50;not null;index"`
	Description string         `json:"description" gorm:"size:250"`
	Completed   bool           `json:"completed" gorm:"default:false"`
	UserID      uint           `json:"user_id" gorm:"not null;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
