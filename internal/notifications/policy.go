package notifications

import (
	pkgerrors "github.com/collabhub/projects-backend/pkg/errors"

	"github.com/collabhub/projects-backend/pkg/enums"
)

// RecipientRule names the recipient set a policy targets.
type RecipientRule string

const (
	// RecipientsMembers targets every project member except the sender.
	RecipientsMembers RecipientRule = "members"
	// RecipientsFollowers targets project followers except the sender.
	RecipientsFollowers RecipientRule = "followers"
	// RecipientsMembersAndFollowers targets the union of both sets.
	RecipientsMembersAndFollowers RecipientRule = "members_and_followers"
	// RecipientsReviewers targets the project's reviewers.
	RecipientsReviewers RecipientRule = "reviewers"
	// RecipientsEventTargets targets the users named in the event context
	// (the added/updated members themselves).
	RecipientsEventTargets RecipientRule = "event_targets"
	// RecipientsReplyAuthor targets the author of the parent comment.
	RecipientsReplyAuthor RecipientRule = "reply_author"
)

// Policy is the declarative per-route configuration: which notification type
// a route produces, who receives it, which settings flag gates it, and how
// records merge and deliver. One domain action fans out into several routes.
type Policy struct {
	Type       enums.NotificationType
	Recipients RecipientRule

	// SettingFlag gates the channel for members/targets. FollowerFlag gates
	// digest inclusion for followers on routes where NotifyFollowers is set.
	SettingFlag     enums.SettingFlag
	FollowerFlag    enums.SettingFlag
	NotifyFollowers bool

	// SendImmediately routes every qualifying raw event to a synchronous
	// email and keeps the record off the digest. Mergeable collapses events
	// sharing a (type, project, receiver) key into one counted record.
	// DigestText controls whether reminder messages are rendered; it is
	// false for every immediate-only route.
	SendImmediately bool
	Mergeable       bool
	DigestText      bool
}

var routesByAction = map[enums.EventAction][]Policy{
	enums.EventCommentCreated: {
		{
			Type:            enums.NotificationTypeReply,
			Recipients:      RecipientsReplyAuthor,
			SettingFlag:     enums.SettingCommentReceivedAResponse,
			SendImmediately: true,
			Mergeable:       true,
		},
		{
			Type:            enums.NotificationTypeComment,
			Recipients:      RecipientsMembers,
			SettingFlag:     enums.SettingProjectHasBeenCommented,
			SendImmediately: true,
			Mergeable:       true,
		},
		{
			Type:            enums.NotificationTypeComment,
			Recipients:      RecipientsFollowers,
			SettingFlag:     enums.SettingProjectHasBeenCommented,
			FollowerFlag:    enums.SettingFollowedProjectHasBeenEdited,
			NotifyFollowers: true,
			Mergeable:       true,
			DigestText:      true,
		},
	},
	enums.EventReviewCreated: {
		{
			Type:            enums.NotificationTypeReview,
			Recipients:      RecipientsMembersAndFollowers,
			SettingFlag:     enums.SettingProjectHasBeenReviewed,
			FollowerFlag:    enums.SettingFollowedProjectHasBeenEdited,
			NotifyFollowers: true,
			SendImmediately: true,
			Mergeable:       true,
		},
	},
	enums.EventProjectReadyForReview: {
		{
			Type:            enums.NotificationTypeReadyForReview,
			Recipients:      RecipientsReviewers,
			SettingFlag:     enums.SettingProjectReadyForReview,
			SendImmediately: true,
			Mergeable:       true,
		},
	},
	enums.EventProjectEdited: {
		{
			Type:            enums.NotificationTypeProjectUpdated,
			Recipients:      RecipientsMembersAndFollowers,
			SettingFlag:     enums.SettingProjectHasBeenEdited,
			FollowerFlag:    enums.SettingFollowedProjectHasBeenEdited,
			NotifyFollowers: true,
			Mergeable:       true,
			DigestText:      true,
		},
	},
	enums.EventBlogEntryCreated: {
		{
			Type:            enums.NotificationTypeBlogEntry,
			Recipients:      RecipientsMembersAndFollowers,
			SettingFlag:     enums.SettingProjectHasBeenEdited,
			FollowerFlag:    enums.SettingFollowedProjectHasBeenEdited,
			NotifyFollowers: true,
			Mergeable:       true,
			DigestText:      true,
		},
	},
	enums.EventAnnouncementPublished: {
		{
			Type:            enums.NotificationTypeAnnouncement,
			Recipients:      RecipientsMembersAndFollowers,
			SettingFlag:     enums.SettingAnnouncementPublished,
			FollowerFlag:    enums.SettingFollowedProjectHasBeenEdited,
			NotifyFollowers: true,
			Mergeable:       true,
			DigestText:      true,
		},
	},
	enums.EventApplicationSubmitted: {
		{
			Type:            enums.NotificationTypeApplication,
			Recipients:      RecipientsMembers,
			SettingFlag:     enums.SettingAnnouncementHasNewApplication,
			SendImmediately: true,
			Mergeable:       false,
		},
	},
	enums.EventMemberAdded: {
		{
			Type:            enums.NotificationTypeMemberAddedSelf,
			Recipients:      RecipientsEventTargets,
			SettingFlag:     enums.SettingNotifyAddedToProject,
			SendImmediately: true,
			Mergeable:       true,
		},
		{
			Type:        enums.NotificationTypeMemberAdded,
			Recipients:  RecipientsMembers,
			SettingFlag: enums.SettingProjectHasBeenEdited,
			Mergeable:   true,
			DigestText:  true,
		},
	},
	enums.EventMemberUpdated: {
		{
			Type:            enums.NotificationTypeMemberUpdatedSelf,
			Recipients:      RecipientsEventTargets,
			SettingFlag:     enums.SettingNotifyAddedToProject,
			SendImmediately: true,
			Mergeable:       true,
		},
		{
			Type:        enums.NotificationTypeMemberUpdated,
			Recipients:  RecipientsMembers,
			SettingFlag: enums.SettingProjectHasBeenEdited,
			Mergeable:   true,
			DigestText:  true,
		},
	},
	enums.EventMemberRemoved: {
		{
			Type:        enums.NotificationTypeMemberRemoved,
			Recipients:  RecipientsMembers,
			SettingFlag: enums.SettingProjectHasBeenEdited,
			Mergeable:   true,
			DigestText:  true,
		},
	},
	enums.EventProjectMessagePosted: {
		{
			Type:            enums.NotificationTypeProjectMessage,
			Recipients:      RecipientsMembers,
			SettingFlag:     enums.SettingProjectHasNewMessage,
			SendImmediately: true,
			Mergeable:       true,
		},
	},
}

// RoutesFor returns the policies a domain action fans out into. Unknown
// actions are an integration bug and rejected loudly.
func RoutesFor(action enums.EventAction) ([]Policy, error) {
	routes, ok := routesByAction[action]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown event action "+string(action))
	}
	return routes, nil
}
