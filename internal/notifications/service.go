package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/collabhub/projects-backend/pkg/db/models"
	"github.com/collabhub/projects-backend/pkg/enums"
	pkgerrors "github.com/collabhub/projects-backend/pkg/errors"
	"github.com/collabhub/projects-backend/pkg/logger"
	"github.com/collabhub/projects-backend/pkg/pagination"
)

// Store is the persistence surface the service depends on.
type Store interface {
	Apply(ctx context.Context, in ApplyInput, render RenderFunc) (*models.Notification, error)
	ListForReceiver(ctx context.Context, receiverID uuid.UUID, params pagination.Params) ([]models.Notification, string, error)
	MarkViewed(ctx context.Context, receiverID, notificationID uuid.UUID) error
	MarkAllViewed(ctx context.Context, receiverID uuid.UUID) (int64, error)
	UnviewedCount(ctx context.Context, receiverID uuid.UUID) (int64, error)
}

// SettingsStore reads and writes per-user notification settings.
type SettingsStore interface {
	SettingsForUser(ctx context.Context, userID uuid.UUID) (models.NotificationSettings, error)
	SaveSettings(ctx context.Context, settings models.NotificationSettings) (models.NotificationSettings, error)
}

// ImmediateSender pushes one routed record out on the immediate channel.
type ImmediateSender interface {
	SendImmediate(ctx context.Context, t enums.NotificationType, recipient Recipient, project *models.Project, event Event)
}

// Service fans one domain event out across its routes: resolve recipients,
// filter by preference, fold into the store, and fire immediate emails.
type Service struct {
	store    Store
	settings SettingsStore
	resolver *Resolver
	composer *Composer
	sender   ImmediateSender
	dir      DirectoryLookup
	logg     *logger.Logger
}

// DirectoryLookup loads the subject project for title interpolation and the
// sending user for message attribution.
type DirectoryLookup interface {
	ProjectByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	UserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

func NewService(
	store Store,
	settings SettingsStore,
	resolver *Resolver,
	composer *Composer,
	sender ImmediateSender,
	dir DirectoryLookup,
	logg *logger.Logger,
) *Service {
	return &Service{
		store:    store,
		settings: settings,
		resolver: resolver,
		composer: composer,
		sender:   sender,
		dir:      dir,
		logg:     logg,
	}
}

// Notify processes one domain event end to end. A vanished project is a
// no-op: the event raced a deletion and there is nobody left to tell.
// Recipient-level failures are logged and skipped so one broken row cannot
// starve the rest of the fan-out; the first error is still returned to the
// caller for retry accounting.
func (s *Service) Notify(ctx context.Context, event Event) error {
	if !event.Action.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown event action "+string(event.Action))
	}
	ctx = s.logg.WithProjectID(ctx, event.ProjectID.String())
	ctx = s.logg.WithEventAction(ctx, string(event.Action))

	project, err := s.dir.ProjectByID(ctx, event.ProjectID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			s.logg.Warn(ctx, "dropping event for missing project")
			return nil
		}
		return err
	}

	// A vanished sender leaves messages on their generic phrasing.
	senderName := ""
	if event.SenderID != nil {
		if sender, err := s.dir.UserByID(ctx, *event.SenderID); err == nil {
			senderName = sender.GivenName
		}
	}

	routes, err := RoutesFor(event.Action)
	if err != nil {
		return err
	}

	// Routes can share a notification type (the member and follower comment
	// routes both produce COMMENT records with the same merge key). A receiver
	// resolved by more than one such route is handled by the first only, so a
	// single raw event never folds into a record twice.
	handled := make(map[enums.NotificationType]map[uuid.UUID]bool)

	var firstErr error
	for _, policy := range routes {
		recipients, err := s.resolver.Resolve(ctx, policy.Recipients, event)
		if err != nil {
			s.logg.Error(ctx, "resolving recipients for "+string(policy.Type), err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if handled[policy.Type] == nil {
			handled[policy.Type] = make(map[uuid.UUID]bool, len(recipients))
		}

		for _, recipient := range recipients {
			if handled[policy.Type][recipient.User.ID] {
				continue
			}
			handled[policy.Type][recipient.User.ID] = true
			if err := s.notifyOne(ctx, policy, event, recipient, project, senderName); err != nil {
				s.logg.Error(ctx, "notifying "+recipient.User.ID.String(), err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	return firstErr
}

func (s *Service) notifyOne(ctx context.Context, policy Policy, event Event, recipient Recipient, project *models.Project, senderName string) error {
	settings := models.DefaultNotificationSettings(recipient.User.ID)
	if recipient.User.NotificationSettings != nil {
		settings = *recipient.User.NotificationSettings
	}

	channels := Eligible(policy, settings, recipient.IsMember, recipient.IsFollower)

	_, err := s.store.Apply(ctx, ApplyInput{
		Policy:   policy,
		Event:    event,
		Receiver: recipient,
		Channels: channels,
	}, s.renderFunc(policy, project.Title, senderName))
	if err != nil {
		return err
	}

	if channels.Immediate {
		s.sender.SendImmediate(ctx, policy.Type, recipient, project, event)
	}
	return nil
}

// renderFunc recomputes both reminder messages from the post-merge record.
// Immediate-only routes keep them empty.
func (s *Service) renderFunc(policy Policy, projectTitle, senderName string) RenderFunc {
	return func(n *models.Notification) {
		if !policy.DigestText {
			n.ReminderMessageEn = ""
			n.ReminderMessageFr = ""
			return
		}
		n.ReminderMessageEn = s.composer.ReminderText(policy.Type, LanguageEnglish, n.Count, projectTitle, senderName, n.Context)
		n.ReminderMessageFr = s.composer.ReminderText(policy.Type, LanguageFrench, n.Count, projectTitle, senderName, n.Context)
	}
}

// List pages a user's notification feed.
func (s *Service) List(ctx context.Context, receiverID uuid.UUID, params pagination.Params) ([]models.Notification, string, error) {
	return s.store.ListForReceiver(ctx, receiverID, params)
}

// MarkViewed marks a single record as seen.
func (s *Service) MarkViewed(ctx context.Context, receiverID, notificationID uuid.UUID) error {
	return s.store.MarkViewed(ctx, receiverID, notificationID)
}

// MarkAllViewed marks everything unseen as seen.
func (s *Service) MarkAllViewed(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	return s.store.MarkAllViewed(ctx, receiverID)
}

// UnviewedCount returns the feed badge count.
func (s *Service) UnviewedCount(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	return s.store.UnviewedCount(ctx, receiverID)
}

// Settings returns the user's settings, defaulting everything on.
func (s *Service) Settings(ctx context.Context, userID uuid.UUID) (models.NotificationSettings, error) {
	return s.settings.SettingsForUser(ctx, userID)
}

// UpdateSettings persists a full settings row for the user.
func (s *Service) UpdateSettings(ctx context.Context, settings models.NotificationSettings) (models.NotificationSettings, error) {
	if settings.UserID == uuid.Nil {
		return models.NotificationSettings{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.settings.SaveSettings(ctx, settings)
}
