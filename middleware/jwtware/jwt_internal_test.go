package jwtware

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetExtractorsParsesLookupString(t *testing.T) {
	extractors := GetExtractors("header:Authorization,query:jwt,param:token,cookie:jwt_cookie")
	require.Len(t, extractors, 4)

	extractors = GetExtractors("header:Authorization")
	require.Len(t, extractors, 1)

	extractors = GetExtractors(" header : Authorization , cookie : session ")
	require.Len(t, extractors, 2)
}

func TestPerformAuthorizationChecksSkipsWithoutConfig(t *testing.T) {
	claims := stubInternalClaims{role: "user"}
	require.NoError(t, performAuthorizationChecks(claims, Config{}))
}

type stubInternalClaims struct {
	role string
}

func (s stubInternalClaims) Subject() string { return "test" }
func (s stubInternalClaims) UserID() string  { return "id" }
func (s stubInternalClaims) Role() string    { return s.role }
func (s stubInternalClaims) Purpose() string { return "session" }
func (s stubInternalClaims) HasRole(role string) bool {
	return s.role == role
}
func (s stubInternalClaims) IsAtLeast(minRole string) bool {
	order := map[string]int{"user": 0, "manager": 1, "admin": 2}
	return order[s.role] >= order[minRole]
}
