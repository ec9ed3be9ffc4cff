package models

import (
	"time"

	"gorm.io/gorm"
)

// FAQ represents a frequently asked question shown on the public FAQ page
type FAQ struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Question     string         `gorm:"not null" json:"question"`
	Answer       string         `gorm:"type:text;not null" json:"answer"`
	DisplayOrder int            `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the FAQ model
func (FAQ) TableName() string {
	return "faqs"
}
