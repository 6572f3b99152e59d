package model

import (
	"time"

	"gorm.io/gorm"
)

// Role is the permission marker attached to a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// User represents an authenticated user in the system.
type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Username     string         `json:"username" gorm:"size:50;not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;size:150;not null"`
	PasswordHash string         `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Avatar       string         `json:"avatar,omitempty" gorm:"size:255"`
	Role         Role           `json:"role" gorm:"type:varchar(20);default:'user';index"`
	Confirmed    bool           `json:"confirmed" gorm:"default:false"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Todos []Todo `json:"-" gorm:"foreignKey:UserID"`
}
