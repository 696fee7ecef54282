package notifications

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/collabhub/projects-backend/pkg/db/models"
	dbtypes "github.com/collabhub/projects-backend/pkg/db/types"
	"github.com/collabhub/projects-backend/pkg/enums"
	"github.com/collabhub/projects-backend/pkg/logger"
	"github.com/collabhub/projects-backend/pkg/pagination"
)

type appliedCall struct {
	input  ApplyInput
	record *models.Notification
}

type fakeStore struct {
	applied []appliedCall
}

func (f *fakeStore) Apply(_ context.Context, in ApplyInput, render RenderFunc) (*models.Notification, error) {
	record := &models.Notification{
		ID:         uuid.New(),
		Type:       in.Policy.Type,
		ReceiverID: in.Receiver.User.ID,
		Count:      1,
		ToSend:     in.Channels.Digest,
		Context:    in.Event.Context,
	}
	if render != nil {
		render(record)
	}
	f.applied = append(f.applied, appliedCall{input: in, record: record})
	return record, nil
}

func (f *fakeStore) ListForReceiver(context.Context, uuid.UUID, pagination.Params) ([]models.Notification, string, error) {
	return nil, "", nil
}

func (f *fakeStore) MarkViewed(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (f *fakeStore) MarkAllViewed(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (f *fakeStore) UnviewedCount(context.Context, uuid.UUID) (int64, error) { return 0, nil }

type fakeSettingsStore struct{}

func (fakeSettingsStore) SettingsForUser(_ context.Context, userID uuid.UUID) (models.NotificationSettings, error) {
	return models.DefaultNotificationSettings(userID), nil
}

func (fakeSettingsStore) SaveSettings(_ context.Context, settings models.NotificationSettings) (models.NotificationSettings, error) {
	return settings, nil
}

type sentCall struct {
	typ      enums.NotificationType
	receiver uuid.UUID
}

type fakeSender struct {
	sent []sentCall
}

func (f *fakeSender) SendImmediate(_ context.Context, t enums.NotificationType, recipient Recipient, _ *models.Project, _ Event) {
	f.sent = append(f.sent, sentCall{typ: t, receiver: recipient.User.ID})
}

func newTestService(t *testing.T, dir *fakeDirectory, store *fakeStore, sender *fakeSender) *Service {
	t.Helper()
	composer := newTestComposer(t)
	logg := logger.New(logger.Options{ServiceName: "test"})
	return NewService(store, fakeSettingsStore{}, NewResolver(dir), composer, sender, dir, logg)
}

func userWithSettings(name string, mutate func(*models.NotificationSettings)) models.User {
	user := testUser(name)
	settings := models.DefaultNotificationSettings(user.ID)
	if mutate != nil {
		mutate(&settings)
	}
	user.NotificationSettings = &settings
	return user
}

func TestNotifyCommentSplitsChannels(t *testing.T) {
	sender := userWithSettings("sender", nil)
	member := userWithSettings("member", nil)
	follower := userWithSettings("follower", nil)

	project := &models.Project{ID: uuid.New(), Title: "Atlas"}
	dir := &fakeDirectory{
		project:   project,
		members:   []models.User{sender, member},
		followers: []models.User{follower},
	}
	store := &fakeStore{}
	mails := &fakeSender{}
	svc := newTestService(t, dir, store, mails)

	err := svc.Notify(context.Background(), Event{
		ID:        uuid.New(),
		Action:    enums.EventCommentCreated,
		ProjectID: project.ID,
		SenderID:  &sender.ID,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if len(store.applied) != 2 {
		t.Fatalf("expected 2 persisted records, got %d", len(store.applied))
	}

	byReceiver := map[uuid.UUID]appliedCall{}
	for _, call := range store.applied {
		byReceiver[call.input.Receiver.User.ID] = call
	}

	memberCall, ok := byReceiver[member.ID]
	if !ok {
		t.Fatal("member record missing")
	}
	if !memberCall.input.Channels.Immediate || memberCall.input.Channels.Digest {
		t.Fatalf("member channels = %+v", memberCall.input.Channels)
	}
	if memberCall.record.ReminderMessageEn != "" {
		t.Fatalf("immediate route should not render digest text, got %q", memberCall.record.ReminderMessageEn)
	}

	followerCall, ok := byReceiver[follower.ID]
	if !ok {
		t.Fatal("follower record missing")
	}
	if followerCall.input.Channels.Immediate || !followerCall.input.Channels.Digest {
		t.Fatalf("follower channels = %+v", followerCall.input.Channels)
	}
	if followerCall.record.ReminderMessageEn == "" || followerCall.record.ReminderMessageFr == "" {
		t.Fatal("digest route should render both reminder languages")
	}

	if len(mails.sent) != 1 {
		t.Fatalf("expected 1 immediate email, got %d", len(mails.sent))
	}
	if mails.sent[0].receiver != member.ID || mails.sent[0].typ != enums.NotificationTypeComment {
		t.Fatalf("unexpected immediate send: %+v", mails.sent[0])
	}
}

func TestNotifyMemberWhoFollowsGetsOneCommentRecord(t *testing.T) {
	sender := userWithSettings("sender", nil)
	both := userWithSettings("member-follower", nil)

	project := &models.Project{ID: uuid.New(), Title: "Atlas"}
	dir := &fakeDirectory{
		project:   project,
		members:   []models.User{sender, both},
		followers: []models.User{both},
	}
	store := &fakeStore{}
	mails := &fakeSender{}
	svc := newTestService(t, dir, store, mails)

	err := svc.Notify(context.Background(), Event{
		ID:        uuid.New(),
		Action:    enums.EventCommentCreated,
		ProjectID: project.ID,
		SenderID:  &sender.ID,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	// The member and follower routes both match, but one raw comment must
	// fold into exactly one record, on the member route's immediate channel.
	if len(store.applied) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(store.applied))
	}
	call := store.applied[0]
	if call.input.Receiver.User.ID != both.ID {
		t.Fatal("record routed to wrong user")
	}
	if call.record.Count != 1 {
		t.Fatalf("single event must count once, got %d", call.record.Count)
	}
	if !call.input.Channels.Immediate || call.input.Channels.Digest {
		t.Fatalf("member route should win with the immediate channel: %+v", call.input.Channels)
	}
	if len(mails.sent) != 1 || mails.sent[0].receiver != both.ID {
		t.Fatalf("expected 1 immediate email to the member, got %+v", mails.sent)
	}
}

func TestNotifyMissingProjectIsNoOp(t *testing.T) {
	dir := &fakeDirectory{}
	store := &fakeStore{}
	mails := &fakeSender{}
	svc := newTestService(t, dir, store, mails)

	err := svc.Notify(context.Background(), Event{
		ID:        uuid.New(),
		Action:    enums.EventCommentCreated,
		ProjectID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("missing project should not error: %v", err)
	}
	if len(store.applied) != 0 || len(mails.sent) != 0 {
		t.Fatal("nothing should be persisted or sent")
	}
}

func TestNotifyDisabledSettingStillPersistsRecord(t *testing.T) {
	sender := userWithSettings("sender", nil)
	optedOut := userWithSettings("opted-out", func(s *models.NotificationSettings) {
		s.ProjectHasNewMessage = false
	})

	project := &models.Project{ID: uuid.New(), Title: "Atlas"}
	dir := &fakeDirectory{
		project: project,
		members: []models.User{sender, optedOut},
	}
	store := &fakeStore{}
	mails := &fakeSender{}
	svc := newTestService(t, dir, store, mails)

	err := svc.Notify(context.Background(), Event{
		ID:        uuid.New(),
		Action:    enums.EventProjectMessagePosted,
		ProjectID: project.ID,
		SenderID:  &sender.ID,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if len(store.applied) != 1 {
		t.Fatalf("record must persist for the in-app feed, got %d applies", len(store.applied))
	}
	channels := store.applied[0].input.Channels
	if channels.Immediate || channels.Digest {
		t.Fatalf("opted-out user should get no email channels: %+v", channels)
	}
	if len(mails.sent) != 0 {
		t.Fatalf("no email expected, got %d", len(mails.sent))
	}
}

func TestNotifyMemberAddedFansOutSelfAndMembers(t *testing.T) {
	owner := userWithSettings("owner", nil)
	existing := userWithSettings("existing", nil)
	added := userWithSettings("added", nil)

	project := &models.Project{ID: uuid.New(), Title: "Atlas"}
	dir := &fakeDirectory{
		project: project,
		members: []models.User{owner, existing, added},
		users:   map[uuid.UUID]models.User{added.ID: added},
	}
	store := &fakeStore{}
	mails := &fakeSender{}
	svc := newTestService(t, dir, store, mails)

	err := svc.Notify(context.Background(), Event{
		ID:        uuid.New(),
		Action:    enums.EventMemberAdded,
		ProjectID: project.ID,
		SenderID:  &owner.ID,
		Context: dbtypes.NotificationContext{
			NewMembers: []dbtypes.MemberChange{{UserID: added.ID, Role: "member"}},
		},
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	var selfCount, memberCount int
	for _, call := range store.applied {
		switch call.input.Policy.Type {
		case enums.NotificationTypeMemberAddedSelf:
			selfCount++
			if call.input.Receiver.User.ID != added.ID {
				t.Fatal("self notification routed to wrong user")
			}
			if !call.input.Channels.Immediate {
				t.Fatal("self notification should be immediate")
			}
		case enums.NotificationTypeMemberAdded:
			memberCount++
			if call.input.Channels.Immediate {
				t.Fatal("member broadcast should be digest-only")
			}
		}
	}
	if selfCount != 1 {
		t.Fatalf("expected 1 self record, got %d", selfCount)
	}
	// Only existing hears the broadcast: the owner triggered the change and
	// the added member already got the dedicated self notification.
	if memberCount != 1 {
		t.Fatalf("expected 1 member record, got %d", memberCount)
	}
	if len(mails.sent) != 1 || mails.sent[0].typ != enums.NotificationTypeMemberAddedSelf {
		t.Fatalf("expected only the self email, got %+v", mails.sent)
	}
}

func TestNotifyUnknownActionRejected(t *testing.T) {
	svc := newTestService(t, &fakeDirectory{}, &fakeStore{}, &fakeSender{})
	if err := svc.Notify(context.Background(), Event{Action: enums.EventAction("bogus")}); err == nil {
		t.Fatal("expected validation error")
	}
}
