package campus_test

import (
	"testing"

	campus "github.com/learnhub/go-campus"
	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	assert.True(t, campus.IsValidRole(campus.RoleUser))
	assert.True(t, campus.IsValidRole(campus.RoleManager))
	assert.True(t, campus.IsValidRole(campus.RoleAdmin))
	assert.False(t, campus.IsValidRole("superuser"))
	assert.False(t, campus.IsValidRole(""))
	assert.False(t, campus.IsValidRole("Admin"))
}

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		name     string
		role     campus.UserRole
		minRole  campus.UserRole
		expected bool
	}{
		{"user vs user", campus.RoleUser, campus.RoleUser, true},
		{"user vs manager", campus.RoleUser, campus.RoleManager, false},
		{"user vs admin", campus.RoleUser, campus.RoleAdmin, false},
		{"manager vs user", campus.RoleManager, campus.RoleUser, true},
		{"manager vs manager", campus.RoleManager, campus.RoleManager, true},
		{"manager vs admin", campus.RoleManager, campus.RoleAdmin, false},
		{"admin vs user", campus.RoleAdmin, campus.RoleUser, true},
		{"admin vs admin", campus.RoleAdmin, campus.RoleAdmin, true},
		{"unknown role", "superuser", campus.RoleUser, false},
		{"unknown minimum", campus.RoleAdmin, "superuser", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, campus.RoleAtLeast(tt.role, tt.minRole))
		})
	}
}

func TestGetAllRoles(t *testing.T) {
	roles := campus.GetAllRoles()

	assert.Equal(t, []campus.UserRole{campus.RoleUser, campus.RoleManager, campus.RoleAdmin}, roles)
}

func TestParseRole(t *testing.T) {
	role, ok := campus.ParseRole("manager")
	assert.True(t, ok)
	assert.Equal(t, campus.RoleManager, role)

	_, ok = campus.ParseRole("superuser")
	assert.False(t, ok)
}

func TestIsValidMembershipRole(t *testing.T) {
	assert.True(t, campus.IsValidMembershipRole(campus.MembershipMember))
	assert.True(t, campus.IsValidMembershipRole(campus.MembershipModerator))
	assert.True(t, campus.IsValidMembershipRole(campus.MembershipOwner))
	assert.False(t, campus.IsValidMembershipRole("janitor"))
	assert.False(t, campus.IsValidMembershipRole(""))
}
