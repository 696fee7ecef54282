package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/collabhub/projects-backend/api/middleware"
	"github.com/collabhub/projects-backend/api/responses"
	"github.com/collabhub/projects-backend/api/validators"
	"github.com/collabhub/projects-backend/pkg/db/models"
	pkgerrors "github.com/collabhub/projects-backend/pkg/errors"
	"github.com/collabhub/projects-backend/pkg/logger"
	"github.com/collabhub/projects-backend/pkg/pagination"
)

// NotificationsService is the slice of the notifications service the feed and
// settings handlers use.
type NotificationsService interface {
	List(ctx context.Context, receiverID uuid.UUID, params pagination.Params) ([]models.Notification, string, error)
	MarkViewed(ctx context.Context, receiverID, notificationID uuid.UUID) error
	MarkAllViewed(ctx context.Context, receiverID uuid.UUID) (int64, error)
	UnviewedCount(ctx context.Context, receiverID uuid.UUID) (int64, error)
	Settings(ctx context.Context, userID uuid.UUID) (models.NotificationSettings, error)
	UpdateSettings(ctx context.Context, settings models.NotificationSettings) (models.NotificationSettings, error)
}

type notificationItem struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	ProjectID *uuid.UUID `json:"projectId,omitempty"`
	Count     int        `json:"count"`
	IsViewed  bool       `json:"isViewed"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type notificationList struct {
	Items      []notificationItem `json:"items"`
	NextCursor string             `json:"nextCursor,omitempty"`
}

// ListNotifications pages the caller's feed newest-first. The message is the
// stored reminder line in the language requested via the lang query param.
func ListNotifications(svc NotificationsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "user context missing"))
			return
		}

		params := pagination.Params{}
		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			params.Limit = value
		}
		if cursor := strings.TrimSpace(r.URL.Query().Get("cursor")); cursor != "" {
			params.Cursor = cursor
		}
		lang := strings.TrimSpace(r.URL.Query().Get("lang"))

		records, nextCursor, err := svc.List(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]notificationItem, 0, len(records))
		for _, record := range records {
			items = append(items, notificationItem{
				ID:        record.ID,
				Type:      string(record.Type),
				ProjectID: record.ProjectID,
				Count:     record.Count,
				IsViewed:  record.IsViewed,
				Message:   record.ReminderMessage(lang),
				CreatedAt: record.CreatedAt,
				UpdatedAt: record.UpdatedAt,
			})
		}
		responses.WriteSuccess(w, notificationList{Items: items, NextCursor: nextCursor})
	}
}

// UnviewedNotificationCount returns the feed badge count.
func UnviewedNotificationCount(svc NotificationsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "user context missing"))
			return
		}

		count, err := svc.UnviewedCount(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"count": count})
	}
}

// MarkNotificationViewed marks one record seen, scoped to the caller.
func MarkNotificationViewed(svc NotificationsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "user context missing"))
			return
		}

		notificationID, err := uuid.Parse(chi.URLParam(r, "notificationId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification id"))
			return
		}

		if err := svc.MarkViewed(r.Context(), userID, notificationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"viewed": true})
	}
}

// MarkAllNotificationsViewed marks everything unseen as seen.
func MarkAllNotificationsViewed(svc NotificationsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "user context missing"))
			return
		}

		updated, err := svc.MarkAllViewed(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"updated": updated})
	}
}

// GetNotificationSettings returns the caller's settings, defaulted on.
func GetNotificationSettings(svc NotificationsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "user context missing"))
			return
		}

		settings, err := svc.Settings(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

type updateSettingsRequest struct {
	NotifyAddedToProject          *bool `json:"notify_added_to_project"`
	AnnouncementPublished         *bool `json:"announcement_published"`
	AnnouncementHasNewApplication *bool `json:"announcement_has_new_application"`
	FollowedProjectHasBeenEdited  *bool `json:"followed_project_has_been_edited"`
	ProjectHasBeenCommented       *bool `json:"project_has_been_commented"`
	ProjectHasBeenEdited          *bool `json:"project_has_been_edited"`
	ProjectReadyForReview         *bool `json:"project_ready_for_review"`
	ProjectHasBeenReviewed        *bool `json:"project_has_been_reviewed"`
	CommentReceivedAResponse      *bool `json:"comment_received_a_response"`
	ProjectHasNewMessage          *bool `json:"project_has_new_message"`
}

// UpdateNotificationSettings patches the caller's settings. Omitted flags
// keep their current value.
func UpdateNotificationSettings(svc NotificationsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "user context missing"))
			return
		}

		var req updateSettingsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := svc.Settings(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		applySettingsPatch(&current, req)
		current.UserID = userID

		saved, err := svc.UpdateSettings(r.Context(), current)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, saved)
	}
}

func applySettingsPatch(settings *models.NotificationSettings, req updateSettingsRequest) {
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setBool(&settings.NotifyAddedToProject, req.NotifyAddedToProject)
	setBool(&settings.AnnouncementPublished, req.AnnouncementPublished)
	setBool(&settings.AnnouncementHasNewApplication, req.AnnouncementHasNewApplication)
	setBool(&settings.FollowedProjectHasBeenEdited, req.FollowedProjectHasBeenEdited)
	setBool(&settings.ProjectHasBeenCommented, req.ProjectHasBeenCommented)
	setBool(&settings.ProjectHasBeenEdited, req.ProjectHasBeenEdited)
	setBool(&settings.ProjectReadyForReview, req.ProjectReadyForReview)
	setBool(&settings.ProjectHasBeenReviewed, req.ProjectHasBeenReviewed)
	setBool(&settings.CommentReceivedAResponse, req.CommentReceivedAResponse)
	setBool(&settings.ProjectHasNewMessage, req.ProjectHasNewMessage)
}
