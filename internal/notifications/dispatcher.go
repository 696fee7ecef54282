package notifications

import (
	"context"

	"github.com/collabhub/projects-backend/pkg/db/models"
	"github.com/collabhub/projects-backend/pkg/enums"
	"github.com/collabhub/projects-backend/pkg/logger"
	"github.com/collabhub/projects-backend/pkg/mailer"
	"github.com/collabhub/projects-backend/pkg/metrics"
)

// Dispatcher delivers immediate notification emails. Delivery failures are
// logged and counted, never propagated: the record is already persisted and
// the in-app feed must not be blocked by a flaky SMTP hop.
type Dispatcher struct {
	mailer   mailer.Mailer
	composer *Composer
	metrics  *metrics.DispatchMetrics
	logg     *logger.Logger
}

func NewDispatcher(m mailer.Mailer, composer *Composer, dm *metrics.DispatchMetrics, logg *logger.Logger) *Dispatcher {
	return &Dispatcher{
		mailer:   m,
		composer: composer,
		metrics:  dm,
		logg:     logg,
	}
}

func (d *Dispatcher) SendImmediate(ctx context.Context, t enums.NotificationType, recipient Recipient, project *models.Project, event Event) {
	subject, body, err := d.composer.ImmediateMessage(t, recipient.User.Language, ImmediateInput{
		ReceiverName:  recipient.User.GivenName,
		ProjectTitle:  project.Title,
		ApplicantName: event.Context.ApplicantName,
	})
	if err != nil {
		d.metrics.IncImmediateFailed(string(t))
		d.logg.Error(ctx, "rendering immediate email", err)
		return
	}

	err = d.mailer.Send(ctx, mailer.Message{
		To:      recipient.User.Email,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		d.metrics.IncImmediateFailed(string(t))
		d.logg.Error(ctx, "sending immediate email", err)
		return
	}
	d.metrics.IncImmediateSent(string(t))
}
