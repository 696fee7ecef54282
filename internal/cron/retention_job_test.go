package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/collabhub/projects-backend/pkg/logger"
)

type fakeRetentionStore struct {
	lastCutoff  time.Time
	deletedRows int64
	err         error
	called      int
}

func (f *fakeRetentionStore) DeleteViewedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.deletedRows, nil
}

func newTestRetentionJob(t *testing.T, store *fakeRetentionStore, retention int) *retentionJob {
	t.Helper()
	jobIface, err := NewRetentionJob(RetentionJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Store:     store,
		Retention: retention,
	})
	if err != nil {
		t.Fatalf("NewRetentionJob: %v", err)
	}
	job, ok := jobIface.(*retentionJob)
	if !ok {
		t.Fatalf("expected retentionJob, got %T", jobIface)
	}
	return job
}

func TestRetentionJobDeletesPastCutoff(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	store := &fakeRetentionStore{deletedRows: 42}
	job := newTestRetentionJob(t, store, 0)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expectedCutoff := now.UTC().Add(-notificationRetentionDays * 24 * time.Hour)
	if !store.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, store.lastCutoff)
	}
	if store.called != 1 {
		t.Fatalf("expected store called once, got %d", store.called)
	}
}

func TestRetentionJobHonorsConfiguredWindow(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	store := &fakeRetentionStore{}
	job := newTestRetentionJob(t, store, 30)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expectedCutoff := now.UTC().Add(-30 * 24 * time.Hour)
	if !store.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, store.lastCutoff)
	}
}

func TestRetentionJobPropagatesErrors(t *testing.T) {
	store := &fakeRetentionStore{err: errors.New("boom")}
	job := newTestRetentionJob(t, store, 0)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
