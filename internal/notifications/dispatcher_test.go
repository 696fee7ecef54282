package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/collabhub/projects-backend/pkg/db/models"
	"github.com/collabhub/projects-backend/pkg/enums"
	"github.com/collabhub/projects-backend/pkg/logger"
	"github.com/collabhub/projects-backend/pkg/mailer"
	"github.com/collabhub/projects-backend/pkg/metrics"
)

func newTestDispatcher(t *testing.T, outbox mailer.Mailer) *Dispatcher {
	t.Helper()
	composer := newTestComposer(t)
	logg := logger.New(logger.Options{ServiceName: "test"})
	return NewDispatcher(outbox, composer, metrics.NewDispatchMetrics(nil), logg)
}

func TestSendImmediateDeliversInRecipientLanguage(t *testing.T) {
	outbox := mailer.NewRecorder()
	dispatcher := newTestDispatcher(t, outbox)

	recipient := Recipient{User: models.User{
		ID:        uuid.New(),
		Email:     "claire@example.com",
		GivenName: "Claire",
		Language:  "fr",
	}}
	project := &models.Project{ID: uuid.New(), Title: "Atlas"}

	dispatcher.SendImmediate(context.Background(), enums.NotificationTypeComment, recipient, project, Event{})

	sent := outbox.Messages()
	if len(sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sent))
	}
	if sent[0].To != recipient.User.Email {
		t.Fatalf("wrong recipient %q", sent[0].To)
	}
	if sent[0].Subject != "Nouveau commentaire sur Atlas" {
		t.Fatalf("unexpected subject %q", sent[0].Subject)
	}
	if !strings.Contains(sent[0].Body, "Bonjour Claire") {
		t.Fatalf("body missing French greeting:\n%s", sent[0].Body)
	}
}

func TestSendImmediateSwallowsDeliveryFailure(t *testing.T) {
	outbox := mailer.NewRecorder()
	outbox.Err = errors.New("smtp unavailable")
	dispatcher := newTestDispatcher(t, outbox)

	recipient := Recipient{User: models.User{ID: uuid.New(), Email: "sam@example.com", GivenName: "Sam", Language: "en"}}
	project := &models.Project{ID: uuid.New(), Title: "Atlas"}

	// Must not panic or propagate: the record is already persisted.
	dispatcher.SendImmediate(context.Background(), enums.NotificationTypeComment, recipient, project, Event{})
	if len(outbox.Messages()) != 0 {
		t.Fatal("no message should be recorded on failure")
	}
}

func TestSendImmediateSkipsTypesWithoutTemplate(t *testing.T) {
	outbox := mailer.NewRecorder()
	dispatcher := newTestDispatcher(t, outbox)

	recipient := Recipient{User: models.User{ID: uuid.New(), Email: "sam@example.com", GivenName: "Sam", Language: "en"}}
	project := &models.Project{ID: uuid.New(), Title: "Atlas"}

	dispatcher.SendImmediate(context.Background(), enums.NotificationTypeMemberRemoved, recipient, project, Event{})
	if len(outbox.Messages()) != 0 {
		t.Fatal("digest-only types have no immediate template and must not send")
	}
}
