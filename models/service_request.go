package models

import (
	"time"

	"gorm.io/gorm"
)

// Request statuses
const (
	RequestPending    = "pending"
	RequestInProgress = "in_progress"
	RequestResolved   = "resolved"
)

// ServiceRequest represents a user's request for a service. The user and
// service names are denormalized at creation time so the request stays
// readable even if the service is later removed from the catalog.
type ServiceRequest struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"` // foreign key to users table
	User          User           `gorm:"foreignKey:UserID" json:"-"`    // don't include full user in JSON
	UserEmail     string         `gorm:"not null" json:"user_email"`
	UserName      string         `gorm:"not null" json:"user_name"`
	ServiceID     uint           `gorm:"not null;index" json:"service_id"`
	ServiceName   string         `gorm:"not null" json:"service_name"`
	Message       string         `gorm:"type:text;not null" json:"message"`
	Status        string         `gorm:"not null;default:'pending'" json:"status"` // pending, in_progress, resolved
	SeenByAdmin   bool           `gorm:"not null;default:false" json:"seen_by_admin"`
	RequestedAt   time.Time      `gorm:"not null;index" json:"requested_at"`
	ResolvedAt    *time.Time     `json:"resolved_at,omitempty"` // set when status transitions into resolved
	AdminNotes    *string        `json:"admin_notes,omitempty"`
	EstimatedTime *string        `json:"estimated_time,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the ServiceRequest model
func (ServiceRequest) TableName() string {
	return "service_requests"
}

// IsValidRequestStatus reports whether s is one of the recognized request statuses
func IsValidRequestStatus(s string) bool {
	return s == RequestPending || s == RequestInProgress || s == RequestResolved
}
