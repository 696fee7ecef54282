package models

import (
	"github.com/google/uuid"

	"github.com/collabhub/projects-backend/pkg/enums"
)

// NotificationSettings holds the per-user boolean opt-outs. Every flag
// defaults to enabled; a missing row is treated the same way.
type NotificationSettings struct {
	ID                            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	NotifyAddedToProject          bool      `gorm:"not null;default:true" json:"notify_added_to_project"`
	AnnouncementPublished         bool      `gorm:"not null;default:true" json:"announcement_published"`
	AnnouncementHasNewApplication bool      `gorm:"not null;default:true" json:"announcement_has_new_application"`
	FollowedProjectHasBeenEdited  bool      `gorm:"not null;default:true" json:"followed_project_has_been_edited"`
	ProjectHasBeenCommented       bool      `gorm:"not null;default:true" json:"project_has_been_commented"`
	ProjectHasBeenEdited          bool      `gorm:"not null;default:true" json:"project_has_been_edited"`
	ProjectReadyForReview         bool      `gorm:"not null;default:true" json:"project_ready_for_review"`
	ProjectHasBeenReviewed        bool      `gorm:"not null;default:true" json:"project_has_been_reviewed"`
	CommentReceivedAResponse      bool      `gorm:"not null;default:true" json:"comment_received_a_response"`
	ProjectHasNewMessage          bool      `gorm:"not null;default:true" json:"project_has_new_message"`
}

// DefaultNotificationSettings returns the all-enabled settings used when a
// user has not persisted a row yet.
func DefaultNotificationSettings(userID uuid.UUID) NotificationSettings {
	return NotificationSettings{
		UserID:                        userID,
		NotifyAddedToProject:          true,
		AnnouncementPublished:         true,
		AnnouncementHasNewApplication: true,
		FollowedProjectHasBeenEdited:  true,
		ProjectHasBeenCommented:       true,
		ProjectHasBeenEdited:          true,
		ProjectReadyForReview:         true,
		ProjectHasBeenReviewed:        true,
		CommentReceivedAResponse:      true,
		ProjectHasNewMessage:          true,
	}
}

// Enabled resolves one flag by name.
func (s NotificationSettings) Enabled(flag enums.SettingFlag) bool {
	switch flag {
	case enums.SettingNotifyAddedToProject:
		return s.NotifyAddedToProject
	case enums.SettingAnnouncementPublished:
		return s.AnnouncementPublished
	case enums.SettingAnnouncementHasNewApplication:
		return s.AnnouncementHasNewApplication
	case enums.SettingFollowedProjectHasBeenEdited:
		return s.FollowedProjectHasBeenEdited
	case enums.SettingProjectHasBeenCommented:
		return s.ProjectHasBeenCommented
	case enums.SettingProjectHasBeenEdited:
		return s.ProjectHasBeenEdited
	case enums.SettingProjectReadyForReview:
		return s.ProjectReadyForReview
	case enums.SettingProjectHasBeenReviewed:
		return s.ProjectHasBeenReviewed
	case enums.SettingCommentReceivedAResponse:
		return s.CommentReceivedAResponse
	case enums.SettingProjectHasNewMessage:
		return s.ProjectHasNewMessage
	default:
		return false
	}
}
