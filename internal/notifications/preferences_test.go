package notifications

import (
	"testing"

	"github.com/google/uuid"

	"github.com/collabhub/projects-backend/pkg/db/models"
	"github.com/collabhub/projects-backend/pkg/enums"
)

func TestEligibleImmediateRoute(t *testing.T) {
	policy := Policy{
		Type:            enums.NotificationTypeProjectMessage,
		SettingFlag:     enums.SettingProjectHasNewMessage,
		SendImmediately: true,
	}
	settings := models.DefaultNotificationSettings(uuid.New())

	channels := Eligible(policy, settings, true, false)
	if !channels.Immediate || channels.Digest {
		t.Fatalf("expected immediate-only, got %+v", channels)
	}

	settings.ProjectHasNewMessage = false
	channels = Eligible(policy, settings, true, false)
	if channels.Immediate || channels.Digest {
		t.Fatalf("disabled flag should block both channels, got %+v", channels)
	}
}

func TestEligibleDigestRoute(t *testing.T) {
	policy := Policy{
		Type:        enums.NotificationTypeMemberAdded,
		SettingFlag: enums.SettingProjectHasBeenEdited,
	}
	settings := models.DefaultNotificationSettings(uuid.New())

	channels := Eligible(policy, settings, true, false)
	if channels.Immediate || !channels.Digest {
		t.Fatalf("expected digest-only, got %+v", channels)
	}
}

func TestEligibleFollowerOptIn(t *testing.T) {
	policy := Policy{
		Type:            enums.NotificationTypeProjectUpdated,
		SettingFlag:     enums.SettingProjectHasBeenEdited,
		FollowerFlag:    enums.SettingFollowedProjectHasBeenEdited,
		NotifyFollowers: true,
	}

	// A pure follower qualifies only through the follower flag.
	settings := models.DefaultNotificationSettings(uuid.New())
	channels := Eligible(policy, settings, false, true)
	if !channels.Digest {
		t.Fatalf("follower with flag enabled should get digest, got %+v", channels)
	}

	settings.FollowedProjectHasBeenEdited = false
	channels = Eligible(policy, settings, false, true)
	if channels.Digest || channels.Immediate {
		t.Fatalf("follower with flag disabled should get nothing, got %+v", channels)
	}

	// The member flag alone never reaches a non-member.
	settings = models.DefaultNotificationSettings(uuid.New())
	settings.FollowedProjectHasBeenEdited = false
	channels = Eligible(policy, settings, false, false)
	if channels.Digest || channels.Immediate {
		t.Fatalf("non-member non-follower should get nothing, got %+v", channels)
	}
}

func TestEligibleMemberOnFollowerAwareRoute(t *testing.T) {
	policy := Policy{
		Type:            enums.NotificationTypeReview,
		SettingFlag:     enums.SettingProjectHasBeenReviewed,
		FollowerFlag:    enums.SettingFollowedProjectHasBeenEdited,
		NotifyFollowers: true,
		SendImmediately: true,
	}
	settings := models.DefaultNotificationSettings(uuid.New())

	channels := Eligible(policy, settings, true, false)
	if !channels.Immediate {
		t.Fatalf("member should get immediate review email, got %+v", channels)
	}

	settings.ProjectHasBeenReviewed = false
	settings.FollowedProjectHasBeenEdited = false
	channels = Eligible(policy, settings, true, false)
	if channels.Immediate || channels.Digest {
		t.Fatalf("opted-out member should get nothing, got %+v", channels)
	}
}
