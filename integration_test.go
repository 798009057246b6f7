package campus_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	campus "github.com/learnhub/go-campus"
)

// Exercises the full credential-to-session lifecycle over the real token
// service: a failed login, a successful login with decorated claims, and
// resolving the identity back out of the resulting session.
func TestLoginSessionLifecycleIntegration(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	provider := new(MockIdentityProvider)
	cfg := newTestConfig()

	decorator := campus.ClaimsDecoratorFunc(func(identity campus.Identity, claims *campus.JWTClaims) error {
		if claims.Metadata == nil {
			claims.Metadata = map[string]any{}
		}
		claims.Metadata["campus"] = "engineering"
		return nil
	})

	tokens := newTestTokenService(campus.WithClaimsDecorator(decorator))

	authenticator := campus.NewAuthenticator(provider, cfg).
		WithTokenService(tokens).
		WithActivitySink(sink)

	identity := testIdentity{
		id:       "b7c2b2f4-6a3e-4b41-9c87-2f4f2a4f2f10",
		username: "amelia",
		email:    "amelia@example.com",
		role:     campus.RoleManager,
	}

	provider.On("VerifyIdentity", ctx, identity.email, "wrong-password").
		Return(nil, campus.ErrMismatchedHashAndPassword).Once()

	token, err := authenticator.Login(ctx, identity.email, "wrong-password")
	require.ErrorIs(t, err, campus.ErrMismatchedHashAndPassword)
	require.Empty(t, token)

	provider.On("VerifyIdentity", ctx, identity.email, "password123").
		Return(identity, nil).Once()

	token, err = authenticator.Login(ctx, identity.email, "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := authenticator.TokenService().Validate(token)
	require.NoError(t, err)

	jwtClaims, ok := claims.(*campus.JWTClaims)
	require.True(t, ok)
	assert.Equal(t, "engineering", jwtClaims.Metadata["campus"])
	assert.Equal(t, campus.RoleManager, jwtClaims.Role())
	assert.Equal(t, campus.PurposeSession, jwtClaims.Purpose())

	session, err := authenticator.SessionFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, identity.id, session.GetUserID())
	assert.Equal(t, identity.username, session.GetUsername())
	assert.True(t, campus.RoleAtLeast(session.GetRole(), campus.RoleManager))
	assert.False(t, campus.RoleAtLeast(session.GetRole(), campus.RoleAdmin))

	provider.On("FindIdentityByIdentifier", mock.Anything, identity.username).
		Return(identity, nil).Once()

	resolved, err := authenticator.IdentityFromSession(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, identity.id, resolved.ID())

	events := sink.recorded()
	require.Len(t, events, 2)
	assert.Equal(t, campus.ActivityEventLoginFailure, events[0].EventType)
	assert.Equal(t, campus.ActivityEventLoginSuccess, events[1].EventType)
	assert.Equal(t, identity.id, events[1].UserID)

	provider.AssertExpectations(t)
}
