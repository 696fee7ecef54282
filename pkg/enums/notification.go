package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeComment           NotificationType = "comment"
	NotificationTypeReply             NotificationType = "reply"
	NotificationTypeReview            NotificationType = "review"
	NotificationTypeReadyForReview    NotificationType = "ready_for_review"
	NotificationTypeProjectUpdated    NotificationType = "project_updated"
	NotificationTypeMemberAdded       NotificationType = "member_added"
	NotificationTypeMemberAddedSelf   NotificationType = "member_added_self"
	NotificationTypeMemberUpdated     NotificationType = "member_updated"
	NotificationTypeMemberUpdatedSelf NotificationType = "member_updated_self"
	NotificationTypeMemberRemoved     NotificationType = "member_removed"
	NotificationTypeAnnouncement      NotificationType = "announcement"
	NotificationTypeApplication       NotificationType = "application"
	NotificationTypeBlogEntry         NotificationType = "blog_entry"
	NotificationTypeProjectMessage    NotificationType = "project_message"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeComment,
	NotificationTypeReply,
	NotificationTypeReview,
	NotificationTypeReadyForReview,
	NotificationTypeProjectUpdated,
	NotificationTypeMemberAdded,
	NotificationTypeMemberAddedSelf,
	NotificationTypeMemberUpdated,
	NotificationTypeMemberUpdatedSelf,
	NotificationTypeMemberRemoved,
	NotificationTypeAnnouncement,
	NotificationTypeApplication,
	NotificationTypeBlogEntry,
	NotificationTypeProjectMessage,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// EventAction identifies the domain mutation that triggered notification
// processing. One action usually fans out into several notification types.
type EventAction string

const (
	EventCommentCreated        EventAction = "comment.created"
	EventReviewCreated         EventAction = "review.created"
	EventProjectReadyForReview EventAction = "project.ready_for_review"
	EventProjectEdited         EventAction = "project.edited"
	EventBlogEntryCreated      EventAction = "blog_entry.created"
	EventAnnouncementPublished EventAction = "announcement.published"
	EventApplicationSubmitted  EventAction = "application.submitted"
	EventMemberAdded           EventAction = "member.added"
	EventMemberUpdated         EventAction = "member.updated"
	EventMemberRemoved         EventAction = "member.removed"
	EventProjectMessagePosted  EventAction = "project_message.posted"
)

var validEventActions = []EventAction{
	EventCommentCreated,
	EventReviewCreated,
	EventProjectReadyForReview,
	EventProjectEdited,
	EventBlogEntryCreated,
	EventAnnouncementPublished,
	EventApplicationSubmitted,
	EventMemberAdded,
	EventMemberUpdated,
	EventMemberRemoved,
	EventProjectMessagePosted,
}

// IsValid checks whether the action is part of the canonical set.
func (a EventAction) IsValid() bool {
	for _, candidate := range validEventActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseEventAction converts raw strings into EventAction.
func ParseEventAction(value string) (EventAction, error) {
	for _, candidate := range validEventActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event action %q", value)
}
