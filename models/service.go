package models

import (
	"time"

	"gorm.io/gorm"
)

// Service statuses
const (
	ServiceAvailable    = "available"
	ServiceStartingSoon = "starting_soon"
	ServiceNotAvailable = "not_available"
)

// Service represents an offered service in the catalog
type Service struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"type:text;not null" json:"description"`
	Status       string         `gorm:"not null;default:'available'" json:"status"` // available, starting_soon, not_available
	DisplayOrder int            `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}

// IsValidServiceStatus reports whether s is one of the recognized catalog statuses
func IsValidServiceStatus(s string) bool {
	return s == ServiceAvailable || s == ServiceStartingSoon || s == ServiceNotAvailable
}
