package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a user profile in the system. One profile exists per
// authenticated identity; the profile is created on first sign-in.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Auth0ID      string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // identity provider user ID (from 'sub' claim)
	DisplayName  string         `gorm:"not null" json:"display_name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PhotoS3Key   *string        `json:"photo_s3_key,omitempty"`
	PhotoURL     string         `gorm:"-" json:"photo_url,omitempty"` // computed field, presigned URL for profile photo
	Role         string         `gorm:"not null;default:'user'" json:"role"` // "user" or "admin"
	LastActiveAt time.Time      `json:"last_active_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
