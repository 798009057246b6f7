package campus_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	campus "github.com/learnhub/go-campus"
	"github.com/stretchr/testify/assert"
)

func TestJWTClaims_Subject(t *testing.T) {
	claims := &campus.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user123",
		},
	}

	assert.Equal(t, "user123", claims.Subject())
}

func TestJWTClaims_UserID(t *testing.T) {
	t.Run("returns UID when present", func(t *testing.T) {
		claims := &campus.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject: "user123",
			},
			UID: "uid456",
		}

		assert.Equal(t, "uid456", claims.UserID())
	})

	t.Run("fallback to subject when UID is empty", func(t *testing.T) {
		claims := &campus.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject: "user123",
			},
		}

		assert.Equal(t, "user123", claims.UserID())
	})
}

func TestJWTClaims_Role(t *testing.T) {
	claims := &campus.JWTClaims{
		UserRole: campus.RoleAdmin,
	}

	assert.Equal(t, campus.RoleAdmin, claims.Role())
}

func TestJWTClaims_Purpose(t *testing.T) {
	claims := &campus.JWTClaims{
		TokenPurpose: campus.PurposePasswordReset,
	}

	assert.Equal(t, campus.PurposePasswordReset, claims.Purpose())
}

func TestJWTClaims_HasRole(t *testing.T) {
	claims := &campus.JWTClaims{
		UserRole: campus.RoleManager,
	}

	assert.True(t, claims.HasRole(campus.RoleManager))
	assert.False(t, claims.HasRole(campus.RoleAdmin))
	assert.False(t, claims.HasRole(campus.RoleUser))
}

func TestJWTClaims_IsAtLeast(t *testing.T) {
	tests := []struct {
		name     string
		userRole campus.UserRole
		minRole  campus.UserRole
		expected bool
	}{
		{name: "user meets user", userRole: campus.RoleUser, minRole: campus.RoleUser, expected: true},
		{name: "user below manager", userRole: campus.RoleUser, minRole: campus.RoleManager, expected: false},
		{name: "user below admin", userRole: campus.RoleUser, minRole: campus.RoleAdmin, expected: false},
		{name: "manager meets user", userRole: campus.RoleManager, minRole: campus.RoleUser, expected: true},
		{name: "manager meets manager", userRole: campus.RoleManager, minRole: campus.RoleManager, expected: true},
		{name: "manager below admin", userRole: campus.RoleManager, minRole: campus.RoleAdmin, expected: false},
		{name: "admin meets everything", userRole: campus.RoleAdmin, minRole: campus.RoleAdmin, expected: true},
		{name: "unknown role never qualifies", userRole: "superuser", minRole: campus.RoleUser, expected: false},
		{name: "unknown minimum never matches", userRole: campus.RoleAdmin, minRole: "superuser", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := &campus.JWTClaims{UserRole: tt.userRole}
			assert.Equal(t, tt.expected, claims.IsAtLeast(tt.minRole))
		})
	}
}

func TestJWTClaims_Expires(t *testing.T) {
	t.Run("returns expiry when set", func(t *testing.T) {
		expiry := time.Now().Add(30 * time.Minute).Truncate(time.Second)
		claims := &campus.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(expiry),
			},
		}

		assert.Equal(t, expiry, claims.Expires())
	})

	t.Run("zero time when unset", func(t *testing.T) {
		claims := &campus.JWTClaims{}
		assert.True(t, claims.Expires().IsZero())
	})
}

func TestJWTClaims_IssuedAt(t *testing.T) {
	t.Run("returns issue time when set", func(t *testing.T) {
		issued := time.Now().Truncate(time.Second)
		claims := &campus.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt: jwt.NewNumericDate(issued),
			},
		}

		assert.Equal(t, issued, claims.IssuedAt())
	})

	t.Run("zero time when unset", func(t *testing.T) {
		claims := &campus.JWTClaims{}
		assert.True(t, claims.IssuedAt().IsZero())
	})
}
