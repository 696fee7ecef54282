package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/collabhub/projects-backend/pkg/db"
	"github.com/collabhub/projects-backend/pkg/db/models"
	"github.com/collabhub/projects-backend/pkg/enums"
	pkgerrors "github.com/collabhub/projects-backend/pkg/errors"
	"github.com/collabhub/projects-backend/pkg/pagination"
)

// Repository persists notification records and implements the merge rules:
// events sharing a (type, project, receiver) key fold into the latest
// unviewed record; everything else appends a fresh row.
type Repository struct {
	client *db.Client
}

func NewRepository(client *db.Client) *Repository {
	return &Repository{client: client}
}

// ApplyInput is one routed event for one receiver.
type ApplyInput struct {
	Policy   Policy
	Event    Event
	Receiver Recipient
	Channels Channels
}

// RenderFunc recomputes the stored reminder messages from the record's
// post-merge count and context. It runs inside the merge transaction so the
// persisted text always reflects the row that was written.
type RenderFunc func(n *models.Notification)

// Apply folds one event into the store. Mergeable records lock the existing
// row (under Postgres), bump the count, merge contexts and re-render; a
// missing or viewed predecessor starts a new row. Records are written even
// when both channels are off so the in-app feed stays complete.
func (r *Repository) Apply(ctx context.Context, in ApplyInput, render RenderFunc) (*models.Notification, error) {
	var result *models.Notification
	err := r.client.WithTx(ctx, func(tx *gorm.DB) error {
		if in.Policy.Mergeable {
			existing, err := r.lockMergeTarget(tx, in.Policy.Type, in.Event.ProjectID, in.Receiver.User.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				existing.Count++
				existing.Context = MergeContext(existing.Context, in.Event.Context)
				existing.SenderID = in.Event.SenderID
				// Recomputed from the current preference evaluation, latest
				// wins: disabling the flag mid-stream stops the digest.
				existing.ToSend = in.Channels.Digest
				if render != nil {
					render(existing)
				}
				if err := tx.Save(existing).Error; err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating merged notification")
				}
				result = existing
				return nil
			}
		}

		projectID := in.Event.ProjectID
		fresh := &models.Notification{
			ID:         uuid.New(),
			Type:       in.Policy.Type,
			ProjectID:  &projectID,
			SenderID:   in.Event.SenderID,
			ReceiverID: in.Receiver.User.ID,
			Count:      1,
			ToSend:     in.Channels.Digest,
			Context:    in.Event.Context,
		}
		if render != nil {
			render(fresh)
		}
		if err := tx.Create(fresh).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating notification")
		}
		result = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockMergeTarget finds the newest unviewed record for the merge key. Row
// locking is a Postgres feature; the SQLite dialector used in tests runs the
// same query without the clause.
func (r *Repository) lockMergeTarget(tx *gorm.DB, t enums.NotificationType, projectID, receiverID uuid.UUID) (*models.Notification, error) {
	query := tx.
		Where("type = ? AND project_id = ? AND receiver_id = ? AND is_viewed = ?", t, projectID, receiverID, false).
		Order("created_at DESC")
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var existing models.Notification
	err := query.First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking merge target")
	}
	return &existing, nil
}

// ListForReceiver pages a user's notifications newest-first.
func (r *Repository) ListForReceiver(ctx context.Context, receiverID uuid.UUID, params pagination.Params) ([]models.Notification, string, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	query := r.client.DB().WithContext(ctx).
		Where("receiver_id = ?", receiverID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var records []models.Notification
	if err := query.Find(&records).Error; err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing notifications")
	}

	nextCursor := ""
	if len(records) == limit {
		records = records[:limit-1]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return records, nextCursor, nil
}

// MarkViewed flags one record as viewed, scoped to its receiver.
func (r *Repository) MarkViewed(ctx context.Context, receiverID, notificationID uuid.UUID) error {
	res := r.client.DB().WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND receiver_id = ?", notificationID, receiverID).
		Updates(map[string]any{"is_viewed": true})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "marking notification viewed")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

// MarkAllViewed flags every unviewed record for a receiver.
func (r *Repository) MarkAllViewed(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	res := r.client.DB().WithContext(ctx).
		Model(&models.Notification{}).
		Where("receiver_id = ? AND is_viewed = ?", receiverID, false).
		Updates(map[string]any{"is_viewed": true})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "marking notifications viewed")
	}
	return res.RowsAffected, nil
}

// UnviewedCount returns the badge count for a receiver.
func (r *Repository) UnviewedCount(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	var count int64
	err := r.client.DB().WithContext(ctx).
		Model(&models.Notification{}).
		Where("receiver_id = ? AND is_viewed = ?", receiverID, false).
		Count(&count).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting unviewed notifications")
	}
	return count, nil
}

// PendingDigestReceiverIDs lists the users who have at least one record
// waiting for the next digest run.
func (r *Repository) PendingDigestReceiverIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.client.DB().WithContext(ctx).
		Model(&models.Notification{}).
		Where("to_send = ?", true).
		Distinct().
		Pluck("receiver_id", &ids).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing digest receivers")
	}
	return ids, nil
}

// PendingDigestForReceiver returns a user's digest backlog oldest-first.
func (r *Repository) PendingDigestForReceiver(ctx context.Context, receiverID uuid.UUID) ([]models.Notification, error) {
	var records []models.Notification
	err := r.client.DB().WithContext(ctx).
		Where("receiver_id = ? AND to_send = ?", receiverID, true).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading digest backlog")
	}
	return records, nil
}

// ClearDigestFlag resets to_send on the given records after a successful
// digest delivery.
func (r *Repository) ClearDigestFlag(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.client.DB().WithContext(ctx).
		Model(&models.Notification{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"to_send": false}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing digest flags")
	}
	return nil
}

// DeleteViewedBefore removes viewed records older than the cutoff and
// returns how many rows went away.
func (r *Repository) DeleteViewedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.client.DB().WithContext(ctx).
		Where("is_viewed = ? AND updated_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "deleting old notifications")
	}
	return res.RowsAffected, nil
}
