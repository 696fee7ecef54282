package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/collabhub/projects-backend/pkg/logger"
)

const notificationRetentionDays = 90

// retentionStore deletes viewed records older than the cutoff.
type retentionStore interface {
	DeleteViewedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionJobParams configure the notification retention job.
type RetentionJobParams struct {
	Logger    *logger.Logger
	Store     retentionStore
	Retention int
}

// NewRetentionJob prunes viewed notifications past the retention window.
// Unviewed records are never touched; the feed keeps them until the user
// looks.
func NewRetentionJob(params RetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("notification store required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = notificationRetentionDays
	}
	return &retentionJob{
		logg:      params.Logger,
		store:     params.Store,
		retention: retention,
		now:       time.Now,
	}, nil
}

type retentionJob struct {
	logg      *logger.Logger
	store     retentionStore
	retention int
	now       func() time.Time
}

func (j *retentionJob) Name() string { return "notification-retention" }

func (j *retentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.store.DeleteViewedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("notification retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "notification retention complete")
	return nil
}
