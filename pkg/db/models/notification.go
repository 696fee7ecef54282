package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/collabhub/projects-backend/pkg/db/types"
	"github.com/collabhub/projects-backend/pkg/enums"
)

// Notification is one aggregate record per (type, project, receiver) for
// mergeable types, or one row per raw event otherwise.
type Notification struct {
	ID         uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Type       enums.NotificationType      `gorm:"type:notification_type;not null"`
	ProjectID  *uuid.UUID                  `gorm:"type:uuid;index"`
	SenderID   *uuid.UUID                  `gorm:"type:uuid"`
	ReceiverID uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Count      int                         `gorm:"not null;default:1"`
	IsViewed   bool                        `gorm:"not null;default:false"`
	ToSend     bool                        `gorm:"not null;default:false;index"`
	// Reminder messages are re-derived from Count and Context on every merge
	// and stay empty for types that never reach the digest channel.
	ReminderMessageEn string                      `gorm:"type:text;not null;default:''"`
	ReminderMessageFr string                      `gorm:"type:text;not null;default:''"`
	Context           dbtypes.NotificationContext `gorm:"type:jsonb"`
	CreatedAt         time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

// ReminderMessage returns the precomputed digest line for a language,
// falling back to English for unknown locales.
func (n Notification) ReminderMessage(language string) string {
	if language == "fr" {
		return n.ReminderMessageFr
	}
	return n.ReminderMessageEn
}
