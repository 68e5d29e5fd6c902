package auth

import "strings"

// Role is the access-level classification of a session.
type Role string

const (
	RoleAnonymous  Role = "anonymous"
	RoleMember     Role = "member"
	RoleClubLeader Role = "club-leader"
	RoleCoLeader   Role = "co-leader"
	RoleSuperAdmin Role = "super-admin"
)

// Roles lists every role in ascending privilege order.
func Roles() []Role {
	return []Role{RoleAnonymous, RoleMember, RoleClubLeader, RoleCoLeader, RoleSuperAdmin}
}

// ParseRole maps a stored value onto the role enumeration.
// Unknown values report ok=false; callers decide the fallback.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAnonymous:
		return RoleAnonymous, true
	case RoleMember:
		return RoleMember, true
	case RoleClubLeader:
		return RoleClubLeader, true
	case RoleCoLeader:
		return RoleCoLeader, true
	case RoleSuperAdmin:
		return RoleSuperAdmin, true
	default:
		return RoleAnonymous, false
	}
}

// IsLeader reports whether the role may use the admin console.
func (r Role) IsLeader() bool {
	switch r {
	case RoleClubLeader, RoleCoLeader, RoleSuperAdmin:
		return true
	case RoleAnonymous, RoleMember:
		return false
	default:
		return false
	}
}

// IsSuperAdmin reports whether the role may use system management.
func (r Role) IsSuperAdmin() bool {
	return r == RoleSuperAdmin
}

// Privileged reports whether the role must never be used as a fallback.
func (r Role) Privileged() bool {
	return r.IsLeader()
}

func (r Role) String() string {
	if _, ok := ParseRole(string(r)); !ok {
		return string(RoleAnonymous)
	}
	return string(r)
}
