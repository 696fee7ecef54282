package notifications

import (
	dbtypes "github.com/collabhub/projects-backend/pkg/db/types"
)

// MergeContext folds an incoming event context into the context already
// stored on an unviewed record. Field lists behave as ordered sets; member
// lists are keyed by user so repeated changes to the same member collapse to
// the latest state. Nothing is ever removed by a merge.
func MergeContext(existing, incoming dbtypes.NotificationContext) dbtypes.NotificationContext {
	merged := existing

	merged.ChangedFields = unionStrings(existing.ChangedFields, incoming.ChangedFields)
	merged.NewMembers = upsertMembers(existing.NewMembers, incoming.NewMembers)
	merged.ModifiedMembers = upsertMembers(existing.ModifiedMembers, incoming.ModifiedMembers)
	merged.RemovedMembers = upsertMembers(existing.RemovedMembers, incoming.RemovedMembers)

	if incoming.ApplicantName != "" {
		merged.ApplicantName = incoming.ApplicantName
	}
	if incoming.ReplyToAuthorID != nil {
		merged.ReplyToAuthorID = incoming.ReplyToAuthorID
	}

	return merged
}

// unionStrings appends unseen values in arrival order.
func unionStrings(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]bool, len(existing))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, v := range existing {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range incoming {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// upsertMembers replaces entries sharing a user ID with the newest change and
// appends members not seen before. Latest role wins.
func upsertMembers(existing, incoming []dbtypes.MemberChange) []dbtypes.MemberChange {
	if len(incoming) == 0 {
		return existing
	}
	out := make([]dbtypes.MemberChange, len(existing))
	copy(out, existing)
	for _, change := range incoming {
		replaced := false
		for i := range out {
			if out[i].UserID == change.UserID {
				out[i] = change
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, change)
		}
	}
	return out
}
