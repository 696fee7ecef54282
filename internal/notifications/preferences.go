package notifications

import (
	"github.com/collabhub/projects-backend/pkg/db/models"
)

// Channels says how one recipient should hear about one route's record.
// Both flags false means the record is still persisted for the in-app feed
// but no email goes out on either channel.
type Channels struct {
	Immediate bool
	Digest    bool
}

// Eligible applies the recipient's settings to a policy. Member delivery is
// gated by the policy's setting flag; on follower-aware routes a
// follower-only recipient can still opt in through the follower flag.
// Immediate routes never land in the digest and vice versa.
func Eligible(policy Policy, settings models.NotificationSettings, isMember, isFollower bool) Channels {
	allowed := settings.Enabled(policy.SettingFlag)
	if policy.NotifyFollowers {
		allowed = allowed && isMember
		if isFollower && policy.FollowerFlag != "" && settings.Enabled(policy.FollowerFlag) {
			allowed = true
		}
	}

	if !allowed {
		return Channels{}
	}
	if policy.SendImmediately {
		return Channels{Immediate: true}
	}
	return Channels{Digest: true}
}
