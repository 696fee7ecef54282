package enums

import "fmt"

// MemberRole is the role a user holds on a project.
type MemberRole string

const (
	MemberRoleOwner    MemberRole = "owner"
	MemberRoleMember   MemberRole = "member"
	MemberRoleReviewer MemberRole = "reviewer"
)

var validMemberRoles = []MemberRole{
	MemberRoleOwner,
	MemberRoleMember,
	MemberRoleReviewer,
}

// IsValid checks whether the role is part of the canonical set.
func (r MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseMemberRole converts raw strings into MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
