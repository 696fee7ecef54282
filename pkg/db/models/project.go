package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/collabhub/projects-backend/pkg/enums"
)

// Project is the subject most notifications are scoped to.
type Project struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Membership links a user to a project with a role.
type Membership struct {
	ID        uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID        `gorm:"type:uuid;not null;index:idx_memberships_project_user,unique"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_memberships_project_user,unique"`
	Role      enums.MemberRole `gorm:"type:text;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
}

// Follow marks a user as a follower of a project.
type Follow struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index:idx_follows_project_user,unique"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_follows_project_user,unique"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
