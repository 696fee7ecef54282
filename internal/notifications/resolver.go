package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/collabhub/projects-backend/pkg/db/models"
	pkgerrors "github.com/collabhub/projects-backend/pkg/errors"
)

// Directory is the collaborator-graph surface the resolver depends on.
type Directory interface {
	ProjectByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	UserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UsersByID(ctx context.Context, userIDs []uuid.UUID) ([]models.User, error)
	Members(ctx context.Context, projectID uuid.UUID) ([]models.User, error)
	Reviewers(ctx context.Context, projectID uuid.UUID) ([]models.User, error)
	Followers(ctx context.Context, projectID uuid.UUID) ([]models.User, error)
	MemberIDs(ctx context.Context, projectID uuid.UUID) (map[uuid.UUID]bool, error)
	FollowerIDs(ctx context.Context, projectID uuid.UUID) (map[uuid.UUID]bool, error)
}

// Recipient pairs a candidate receiver with their relationship to the
// project, which the preference filter needs for follower routing.
type Recipient struct {
	User       models.User
	IsMember   bool
	IsFollower bool
}

// Resolver expands a policy's recipient rule into concrete users. The sender
// never receives their own notification, and on comment routes neither does
// the parent comment author, who gets the dedicated reply route instead.
type Resolver struct {
	directory Directory
}

func NewResolver(directory Directory) *Resolver {
	return &Resolver{directory: directory}
}

func (r *Resolver) Resolve(ctx context.Context, rule RecipientRule, event Event) ([]Recipient, error) {
	switch rule {
	case RecipientsMembers:
		members, err := r.directory.Members(ctx, event.ProjectID)
		if err != nil {
			return nil, err
		}
		return r.annotate(ctx, event, members, nil, rule)
	case RecipientsFollowers:
		followers, err := r.directory.Followers(ctx, event.ProjectID)
		if err != nil {
			return nil, err
		}
		return r.annotate(ctx, event, nil, followers, rule)
	case RecipientsMembersAndFollowers:
		members, err := r.directory.Members(ctx, event.ProjectID)
		if err != nil {
			return nil, err
		}
		followers, err := r.directory.Followers(ctx, event.ProjectID)
		if err != nil {
			return nil, err
		}
		return r.annotate(ctx, event, members, followers, rule)
	case RecipientsReviewers:
		reviewers, err := r.directory.Reviewers(ctx, event.ProjectID)
		if err != nil {
			return nil, err
		}
		return r.annotate(ctx, event, reviewers, nil, rule)
	case RecipientsEventTargets:
		return r.resolveEventTargets(ctx, event)
	case RecipientsReplyAuthor:
		return r.resolveReplyAuthor(ctx, event)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "unknown recipient rule "+string(rule))
	}
}

// annotate merges the member and follower sets, drops excluded users and
// tags each survivor with both relationship flags.
func (r *Resolver) annotate(ctx context.Context, event Event, members, followers []models.User, rule RecipientRule) ([]Recipient, error) {
	memberSet := make(map[uuid.UUID]bool, len(members))
	for _, m := range members {
		memberSet[m.ID] = true
	}
	followerSet := make(map[uuid.UUID]bool, len(followers))
	for _, f := range followers {
		followerSet[f.ID] = true
	}

	// Cross-check relationships the loaded slices don't cover: a follower
	// list alone can't tell us which followers are also members.
	if len(members) == 0 && len(followers) > 0 {
		ids, err := r.directory.MemberIDs(ctx, event.ProjectID)
		if err != nil {
			return nil, err
		}
		memberSet = ids
	}
	if len(followers) == 0 && len(members) > 0 && rule == RecipientsMembersAndFollowers {
		ids, err := r.directory.FollowerIDs(ctx, event.ProjectID)
		if err != nil {
			return nil, err
		}
		followerSet = ids
	}

	excluded := r.excludedUsers(event)
	// The added/updated members themselves are served by the self route.
	for _, change := range event.Context.NewMembers {
		excluded[change.UserID] = true
	}
	for _, change := range event.Context.ModifiedMembers {
		excluded[change.UserID] = true
	}
	seen := make(map[uuid.UUID]bool)
	out := make([]Recipient, 0, len(members)+len(followers))
	for _, user := range append(append([]models.User{}, members...), followers...) {
		if seen[user.ID] || excluded[user.ID] {
			continue
		}
		seen[user.ID] = true
		out = append(out, Recipient{
			User:       user,
			IsMember:   memberSet[user.ID],
			IsFollower: followerSet[user.ID],
		})
	}
	return out, nil
}

func (r *Resolver) resolveEventTargets(ctx context.Context, event Event) ([]Recipient, error) {
	ids := make([]uuid.UUID, 0, len(event.Context.NewMembers)+len(event.Context.ModifiedMembers))
	seen := make(map[uuid.UUID]bool)
	for _, change := range event.Context.NewMembers {
		if !seen[change.UserID] {
			seen[change.UserID] = true
			ids = append(ids, change.UserID)
		}
	}
	for _, change := range event.Context.ModifiedMembers {
		if !seen[change.UserID] {
			seen[change.UserID] = true
			ids = append(ids, change.UserID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	users, err := r.directory.UsersByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	excluded := r.excludedUsers(event)
	out := make([]Recipient, 0, len(users))
	for _, user := range users {
		if excluded[user.ID] {
			continue
		}
		out = append(out, Recipient{User: user, IsMember: true})
	}
	return out, nil
}

func (r *Resolver) resolveReplyAuthor(ctx context.Context, event Event) ([]Recipient, error) {
	authorID := event.Context.ReplyToAuthorID
	if authorID == nil {
		return nil, nil
	}
	if event.SenderID != nil && *event.SenderID == *authorID {
		return nil, nil
	}

	user, err := r.directory.UserByID(ctx, *authorID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}

	memberIDs, err := r.directory.MemberIDs(ctx, event.ProjectID)
	if err != nil {
		return nil, err
	}
	return []Recipient{{User: *user, IsMember: memberIDs[user.ID]}}, nil
}

// excludedUsers lists users who never receive a given event: the sender, and
// on comment events the parent author, who is served by the reply route.
func (r *Resolver) excludedUsers(event Event) map[uuid.UUID]bool {
	excluded := make(map[uuid.UUID]bool, 2)
	if event.SenderID != nil {
		excluded[*event.SenderID] = true
	}
	if event.Context.ReplyToAuthorID != nil {
		excluded[*event.Context.ReplyToAuthorID] = true
	}
	return excluded
}
