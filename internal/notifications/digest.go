package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/collabhub/projects-backend/pkg/db/models"
	"github.com/collabhub/projects-backend/pkg/logger"
	"github.com/collabhub/projects-backend/pkg/mailer"
	"github.com/collabhub/projects-backend/pkg/metrics"
)

// DigestStore is the slice of the repository the digest sender needs.
type DigestStore interface {
	PendingDigestReceiverIDs(ctx context.Context) ([]uuid.UUID, error)
	PendingDigestForReceiver(ctx context.Context, receiverID uuid.UUID) ([]models.Notification, error)
	ClearDigestFlag(ctx context.Context, ids []uuid.UUID) error
}

// UserLookup resolves a receiver's profile for language and address.
type UserLookup interface {
	UserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// Digest sends the periodic reminder email: one message per user bundling
// every record flagged for the digest channel, rendered in the user's
// language. Flags are cleared only after the email went out, so a failed
// delivery retries on the next run.
type Digest struct {
	store    DigestStore
	users    UserLookup
	composer *Composer
	mailer   mailer.Mailer
	metrics  *metrics.DispatchMetrics
	logg     *logger.Logger
}

func NewDigest(store DigestStore, users UserLookup, composer *Composer, m mailer.Mailer, dm *metrics.DispatchMetrics, logg *logger.Logger) *Digest {
	return &Digest{
		store:    store,
		users:    users,
		composer: composer,
		mailer:   m,
		metrics:  dm,
		logg:     logg,
	}
}

// SendReminders processes every user with a pending backlog. Per-user
// failures are logged and skipped; the run keeps going.
func (d *Digest) SendReminders(ctx context.Context) error {
	receiverIDs, err := d.store.PendingDigestReceiverIDs(ctx)
	if err != nil {
		return err
	}

	for _, receiverID := range receiverIDs {
		if err := d.SendForUser(ctx, receiverID); err != nil {
			d.metrics.IncDigestFailed()
			d.logg.Error(d.logg.WithUserID(ctx, receiverID.String()), "sending digest", err)
		}
	}
	return nil
}

// SendForUser builds and delivers one user's digest. Users whose backlog
// drained between the listing and this call are skipped silently.
func (d *Digest) SendForUser(ctx context.Context, receiverID uuid.UUID) error {
	records, err := d.store.PendingDigestForReceiver(ctx, receiverID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		d.metrics.IncDigestSkipped()
		return nil
	}

	user, err := d.users.UserByID(ctx, receiverID)
	if err != nil {
		return err
	}

	lang := d.composer.MatchLanguage(user.Language)
	lines := make([]string, 0, len(records))
	ids := make([]uuid.UUID, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
		if line := record.ReminderMessage(lang); line != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) > 0 {
		err = d.mailer.Send(ctx, mailer.Message{
			To:      user.Email,
			Subject: d.composer.DigestSubject(lang),
			Body:    d.composer.DigestBody(lang, user.GivenName, lines),
		})
		if err != nil {
			return err
		}
		d.metrics.IncDigestSent()
	} else {
		d.metrics.IncDigestSkipped()
	}

	return d.store.ClearDigestFlag(ctx, ids)
}
