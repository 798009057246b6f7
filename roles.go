package campus

// UserRole is the platform wide system role
type UserRole = string

const (
	// RoleUser is the default role for registered accounts
	RoleUser UserRole = "user"
	// RoleManager can manage groups and their memberships
	RoleManager UserRole = "manager"
	// RoleAdmin can manage everything, including accounts
	RoleAdmin UserRole = "admin"
)

// MembershipRole is the per group role, independent of the system role
type MembershipRole = string

const (
	// MembershipMember is a regular group member
	MembershipMember MembershipRole = "member"
	// MembershipModerator moderates group content
	MembershipModerator MembershipRole = "moderator"
	// MembershipOwner owns the group; every group keeps at least one
	MembershipOwner MembershipRole = "owner"
)

// IsValid checks if the role is one of the predefined system roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// RoleAtLeast checks if role meets the minimum required level
func RoleAtLeast(r, minRole UserRole) bool {
	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

var roleHierarchy = map[UserRole]int{
	RoleUser:    0,
	RoleManager: 1,
	RoleAdmin:   2,
}

// GetAllRoles returns all predefined system roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleUser,
		RoleManager,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// IsValidMembershipRole checks membership roles against the predefined set
func IsValidMembershipRole(r MembershipRole) bool {
	switch r {
	case MembershipMember, MembershipModerator, MembershipOwner:
		return true
	default:
		return false
	}
}

// ParseMembershipRole safely parses a string into a MembershipRole
func ParseMembershipRole(roleStr string) (MembershipRole, bool) {
	role := MembershipRole(roleStr)
	return role, IsValidMembershipRole(role)
}
