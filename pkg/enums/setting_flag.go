package enums

// SettingFlag names one boolean toggle on a user's notification settings.
type SettingFlag string

const (
	SettingNotifyAddedToProject          SettingFlag = "notify_added_to_project"
	SettingAnnouncementPublished         SettingFlag = "announcement_published"
	SettingAnnouncementHasNewApplication SettingFlag = "announcement_has_new_application"
	SettingFollowedProjectHasBeenEdited  SettingFlag = "followed_project_has_been_edited"
	SettingProjectHasBeenCommented       SettingFlag = "project_has_been_commented"
	SettingProjectHasBeenEdited          SettingFlag = "project_has_been_edited"
	SettingProjectReadyForReview         SettingFlag = "project_ready_for_review"
	SettingProjectHasBeenReviewed        SettingFlag = "project_has_been_reviewed"
	SettingCommentReceivedAResponse      SettingFlag = "comment_received_a_response"
	SettingProjectHasNewMessage          SettingFlag = "project_has_new_message"
)
