package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// MemberChange records one affected project member inside a notification
// context. Role is empty for additions/removals that carry no role change.
type MemberChange struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role,omitempty"`
}

// NotificationContext is the structured payload stored alongside a
// notification record. The populated fields depend on the notification type;
// messages are always re-derived from this value, never appended to.
type NotificationContext struct {
	ChangedFields   []string       `json:"changed_fields,omitempty"`
	NewMembers      []MemberChange `json:"new_members,omitempty"`
	ModifiedMembers []MemberChange `json:"modified_members,omitempty"`
	RemovedMembers  []MemberChange `json:"removed_members,omitempty"`
	ApplicantName   string         `json:"applicant_name,omitempty"`
	ReplyToAuthorID *uuid.UUID     `json:"reply_to_author_id,omitempty"`
}

func (c NotificationContext) Value() (driver.Value, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("NotificationContext: marshal: %w", err)
	}
	return string(raw), nil
}

func (c *NotificationContext) Scan(src any) error {
	if src == nil {
		*c = NotificationContext{}
		return nil
	}
	switch v := src.(type) {
	case string:
		return json.Unmarshal([]byte(v), c)
	case []byte:
		return json.Unmarshal(v, c)
	default:
		return fmt.Errorf("NotificationContext: unsupported Scan type %T", src)
	}
}
