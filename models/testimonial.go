package models

import (
	"time"

	"gorm.io/gorm"
)

// Testimonial represents a client testimonial managed by the admin
type Testimonial struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ClientName   string         `gorm:"not null" json:"client_name"`
	ClientRole   *string        `json:"client_role,omitempty"`
	Message      string         `gorm:"type:text;not null" json:"message"`
	Rating       int            `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	IsVisible    bool           `gorm:"not null" json:"is_visible"`
	DisplayOrder int            `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Testimonial model
func (Testimonial) TableName() string {
	return "testimonials"
}
