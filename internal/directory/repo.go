package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/collabhub/projects-backend/pkg/db"
	"github.com/collabhub/projects-backend/pkg/db/models"
	"github.com/collabhub/projects-backend/pkg/enums"
	pkgerrors "github.com/collabhub/projects-backend/pkg/errors"
)

// Repo answers the collaborator-graph questions the notification engine asks:
// who belongs to a project, who follows it, and how each user wants to be
// reached. It is read-mostly; only notification settings are written here.
type Repo struct {
	client *db.Client
}

func NewRepo(client *db.Client) *Repo {
	return &Repo{client: client}
}

// ProjectByID loads a project or a typed not-found error.
func (r *Repo) ProjectByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.client.DB().WithContext(ctx).
		First(&project, "id = ?", projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading project")
	}
	return &project, nil
}

// UserByID loads one user with settings preloaded.
func (r *Repo) UserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.client.DB().WithContext(ctx).
		Preload("NotificationSettings").
		First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	return &user, nil
}

// UsersByID loads a batch of users with settings preloaded. Unknown IDs are
// silently absent from the result; callers decide whether that matters.
func (r *Repo) UsersByID(ctx context.Context, userIDs []uuid.UUID) ([]models.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var users []models.User
	err := r.client.DB().WithContext(ctx).
		Preload("NotificationSettings").
		Where("id IN ?", userIDs).
		Find(&users).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading users")
	}
	return users, nil
}

// Members returns every user with a membership on the project.
func (r *Repo) Members(ctx context.Context, projectID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := r.client.DB().WithContext(ctx).
		Preload("NotificationSettings").
		Joins("JOIN memberships ON memberships.user_id = users.id").
		Where("memberships.project_id = ?", projectID).
		Find(&users).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading project members")
	}
	return users, nil
}

// Reviewers returns members holding the reviewer role.
func (r *Repo) Reviewers(ctx context.Context, projectID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := r.client.DB().WithContext(ctx).
		Preload("NotificationSettings").
		Joins("JOIN memberships ON memberships.user_id = users.id").
		Where("memberships.project_id = ? AND memberships.role = ?", projectID, enums.MemberRoleReviewer).
		Find(&users).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading project reviewers")
	}
	return users, nil
}

// Followers returns every user following the project.
func (r *Repo) Followers(ctx context.Context, projectID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := r.client.DB().WithContext(ctx).
		Preload("NotificationSettings").
		Joins("JOIN follows ON follows.user_id = users.id").
		Where("follows.project_id = ?", projectID).
		Find(&users).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading project followers")
	}
	return users, nil
}

// MemberIDs returns the set of member user IDs for a project.
func (r *Repo) MemberIDs(ctx context.Context, projectID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	err := r.client.DB().WithContext(ctx).
		Model(&models.Membership{}).
		Where("project_id = ?", projectID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading member ids")
	}
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// FollowerIDs returns the set of follower user IDs for a project.
func (r *Repo) FollowerIDs(ctx context.Context, projectID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	err := r.client.DB().WithContext(ctx).
		Model(&models.Follow{}).
		Where("project_id = ?", projectID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading follower ids")
	}
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// SettingsForUser returns the persisted settings row, or the all-enabled
// defaults when the user never saved one.
func (r *Repo) SettingsForUser(ctx context.Context, userID uuid.UUID) (models.NotificationSettings, error) {
	var settings models.NotificationSettings
	err := r.client.DB().WithContext(ctx).
		First(&settings, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultNotificationSettings(userID), nil
	}
	if err != nil {
		return models.NotificationSettings{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading notification settings")
	}
	return settings, nil
}

// SaveSettings upserts the settings row keyed on user_id.
func (r *Repo) SaveSettings(ctx context.Context, settings models.NotificationSettings) (models.NotificationSettings, error) {
	err := r.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(&settings).Error
	if err != nil {
		return models.NotificationSettings{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving notification settings")
	}
	return r.SettingsForUser(ctx, settings.UserID)
}
