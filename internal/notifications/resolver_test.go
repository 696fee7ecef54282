package notifications

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/collabhub/projects-backend/pkg/db/models"
	dbtypes "github.com/collabhub/projects-backend/pkg/db/types"
	pkgerrors "github.com/collabhub/projects-backend/pkg/errors"
)

type fakeDirectory struct {
	project   *models.Project
	users     map[uuid.UUID]models.User
	members   []models.User
	reviewers []models.User
	followers []models.User
}

func (f *fakeDirectory) ProjectByID(_ context.Context, projectID uuid.UUID) (*models.Project, error) {
	if f.project == nil || f.project.ID != projectID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
	}
	return f.project, nil
}

func (f *fakeDirectory) UserByID(_ context.Context, userID uuid.UUID) (*models.User, error) {
	if user, ok := f.users[userID]; ok {
		return &user, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func (f *fakeDirectory) UsersByID(_ context.Context, userIDs []uuid.UUID) ([]models.User, error) {
	var out []models.User
	for _, id := range userIDs {
		if user, ok := f.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (f *fakeDirectory) Members(context.Context, uuid.UUID) ([]models.User, error) {
	return f.members, nil
}

func (f *fakeDirectory) Reviewers(context.Context, uuid.UUID) ([]models.User, error) {
	return f.reviewers, nil
}

func (f *fakeDirectory) Followers(context.Context, uuid.UUID) ([]models.User, error) {
	return f.followers, nil
}

func (f *fakeDirectory) MemberIDs(context.Context, uuid.UUID) (map[uuid.UUID]bool, error) {
	set := map[uuid.UUID]bool{}
	for _, m := range f.members {
		set[m.ID] = true
	}
	return set, nil
}

func (f *fakeDirectory) FollowerIDs(context.Context, uuid.UUID) (map[uuid.UUID]bool, error) {
	set := map[uuid.UUID]bool{}
	for _, m := range f.followers {
		set[m.ID] = true
	}
	return set, nil
}

func testUser(name string) models.User {
	return models.User{ID: uuid.New(), Email: name + "@example.com", GivenName: name, Language: "en"}
}

func TestResolveMembersExcludesSender(t *testing.T) {
	sender := testUser("sender")
	other := testUser("other")
	dir := &fakeDirectory{members: []models.User{sender, other}}
	resolver := NewResolver(dir)

	recipients, err := resolver.Resolve(context.Background(), RecipientsMembers, Event{
		ProjectID: uuid.New(),
		SenderID:  &sender.ID,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(recipients) != 1 {
		t.Fatalf("expected 1 recipient, got %d", len(recipients))
	}
	if recipients[0].User.ID != other.ID {
		t.Fatal("wrong recipient survived")
	}
	if !recipients[0].IsMember {
		t.Fatal("member flag missing")
	}
}

func TestResolveCommentMembersExcludesParentAuthor(t *testing.T) {
	sender := testUser("sender")
	parentAuthor := testUser("parent")
	bystander := testUser("bystander")
	dir := &fakeDirectory{members: []models.User{sender, parentAuthor, bystander}}
	resolver := NewResolver(dir)

	recipients, err := resolver.Resolve(context.Background(), RecipientsMembers, Event{
		ProjectID: uuid.New(),
		SenderID:  &sender.ID,
		Context:   dbtypes.NotificationContext{ReplyToAuthorID: &parentAuthor.ID},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(recipients) != 1 || recipients[0].User.ID != bystander.ID {
		t.Fatalf("parent author should be excluded, got %d recipients", len(recipients))
	}
}

func TestResolveMembersAndFollowersDeduplicates(t *testing.T) {
	memberFollower := testUser("both")
	follower := testUser("follower")
	dir := &fakeDirectory{
		members:   []models.User{memberFollower},
		followers: []models.User{memberFollower, follower},
	}
	resolver := NewResolver(dir)

	recipients, err := resolver.Resolve(context.Background(), RecipientsMembersAndFollowers, Event{ProjectID: uuid.New()})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(recipients) != 2 {
		t.Fatalf("expected 2 distinct recipients, got %d", len(recipients))
	}
	byID := map[uuid.UUID]Recipient{}
	for _, r := range recipients {
		byID[r.User.ID] = r
	}
	both := byID[memberFollower.ID]
	if !both.IsMember || !both.IsFollower {
		t.Fatalf("dual-relationship flags wrong: %+v", both)
	}
	pure := byID[follower.ID]
	if pure.IsMember || !pure.IsFollower {
		t.Fatalf("pure follower flags wrong: %+v", pure)
	}
}

func TestResolveFollowersKnowsMembership(t *testing.T) {
	memberFollower := testUser("both")
	dir := &fakeDirectory{
		members:   []models.User{memberFollower},
		followers: []models.User{memberFollower},
	}
	resolver := NewResolver(dir)

	recipients, err := resolver.Resolve(context.Background(), RecipientsFollowers, Event{ProjectID: uuid.New()})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(recipients) != 1 {
		t.Fatalf("expected 1 recipient, got %d", len(recipients))
	}
	if !recipients[0].IsMember {
		t.Fatal("follower-only rule must still flag membership for preference checks")
	}
}

func TestResolveReplyAuthor(t *testing.T) {
	sender := testUser("sender")
	author := testUser("author")
	dir := &fakeDirectory{
		users:   map[uuid.UUID]models.User{author.ID: author},
		members: []models.User{author},
	}
	resolver := NewResolver(dir)

	recipients, err := resolver.Resolve(context.Background(), RecipientsReplyAuthor, Event{
		ProjectID: uuid.New(),
		SenderID:  &sender.ID,
		Context:   dbtypes.NotificationContext{ReplyToAuthorID: &author.ID},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(recipients) != 1 || recipients[0].User.ID != author.ID {
		t.Fatalf("expected reply author, got %d recipients", len(recipients))
	}
}

func TestResolveReplyAuthorSelfReplyIsSilent(t *testing.T) {
	author := testUser("author")
	dir := &fakeDirectory{users: map[uuid.UUID]models.User{author.ID: author}}
	resolver := NewResolver(dir)

	recipients, err := resolver.Resolve(context.Background(), RecipientsReplyAuthor, Event{
		ProjectID: uuid.New(),
		SenderID:  &author.ID,
		Context:   dbtypes.NotificationContext{ReplyToAuthorID: &author.ID},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(recipients) != 0 {
		t.Fatalf("self reply should produce no recipients, got %d", len(recipients))
	}
}

func TestResolveReplyAuthorVanishedUser(t *testing.T) {
	gone := uuid.New()
	resolver := NewResolver(&fakeDirectory{})

	recipients, err := resolver.Resolve(context.Background(), RecipientsReplyAuthor, Event{
		ProjectID: uuid.New(),
		Context:   dbtypes.NotificationContext{ReplyToAuthorID: &gone},
	})
	if err != nil {
		t.Fatalf("vanished author should not error: %v", err)
	}
	if len(recipients) != 0 {
		t.Fatalf("expected no recipients, got %d", len(recipients))
	}
}

func TestResolveMembersExcludesChangedMembers(t *testing.T) {
	owner := testUser("owner")
	bystander := testUser("bystander")
	added := testUser("added")
	promoted := testUser("promoted")
	dir := &fakeDirectory{members: []models.User{owner, bystander, added, promoted}}
	resolver := NewResolver(dir)

	// The added and promoted members get their own dedicated notification;
	// the broadcast covers everyone else but the acting owner.
	recipients, err := resolver.Resolve(context.Background(), RecipientsMembers, Event{
		ProjectID: uuid.New(),
		SenderID:  &owner.ID,
		Context: dbtypes.NotificationContext{
			NewMembers:      []dbtypes.MemberChange{{UserID: added.ID, Role: "member"}},
			ModifiedMembers: []dbtypes.MemberChange{{UserID: promoted.ID, Role: "reviewer"}},
		},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(recipients) != 1 || recipients[0].User.ID != bystander.ID {
		t.Fatalf("expected only the bystander, got %d recipients", len(recipients))
	}
}

func TestResolveEventTargets(t *testing.T) {
	added := testUser("added")
	sender := testUser("sender")
	dir := &fakeDirectory{users: map[uuid.UUID]models.User{added.ID: added, sender.ID: sender}}
	resolver := NewResolver(dir)

	recipients, err := resolver.Resolve(context.Background(), RecipientsEventTargets, Event{
		ProjectID: uuid.New(),
		SenderID:  &sender.ID,
		Context: dbtypes.NotificationContext{
			NewMembers: []dbtypes.MemberChange{
				{UserID: added.ID, Role: "member"},
				{UserID: sender.ID, Role: "owner"},
			},
		},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(recipients) != 1 || recipients[0].User.ID != added.ID {
		t.Fatalf("expected only the added member, got %d recipients", len(recipients))
	}
}
