package cron

import (
	"context"
	"fmt"

	"github.com/collabhub/projects-backend/pkg/logger"
)

// digestSender is the reminder surface the job drives.
type digestSender interface {
	SendReminders(ctx context.Context) error
}

// DigestJobParams configure the digest job.
type DigestJobParams struct {
	Logger *logger.Logger
	Sender digestSender
}

// NewDigestJob wraps the digest sender as a scheduled job.
func NewDigestJob(params DigestJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("digest sender required")
	}
	return &digestJob{
		logg:   params.Logger,
		sender: params.Sender,
	}, nil
}

type digestJob struct {
	logg   *logger.Logger
	sender digestSender
}

func (j *digestJob) Name() string { return "notification-digest" }

func (j *digestJob) Run(ctx context.Context) error {
	if err := j.sender.SendReminders(ctx); err != nil {
		return fmt.Errorf("notification digest: %w", err)
	}
	j.logg.Info(ctx, "notification digest complete")
	return nil
}
