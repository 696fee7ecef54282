package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the canonical identity entity. Authentication lives
// upstream; this service only reads profile data it needs for delivery.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"type:text;not null;uniqueIndex"`
	GivenName string    `gorm:"column:given_name;not null"`
	Language  string    `gorm:"type:text;not null;default:'en'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	NotificationSettings *NotificationSettings `gorm:"foreignKey:UserID"`
}
