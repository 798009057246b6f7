package campus_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	campus "github.com/learnhub/go-campus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testIdentity struct {
	id       string
	username string
	email    string
	role     campus.UserRole
}

func (t testIdentity) ID() string            { return t.id }
func (t testIdentity) Username() string      { return t.username }
func (t testIdentity) Email() string         { return t.email }
func (t testIdentity) Role() campus.UserRole { return t.role }

var frozenNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestTokenService(opts ...campus.TokenServiceOption) campus.TokenService {
	return campus.NewTokenService(
		[]byte("test-signing-key"),
		"campus-test",
		jwt.ClaimStrings{"campus-api"},
		nil,
		opts...,
	)
}

func TestTokenService_GenerateSession(t *testing.T) {
	svc := newTestTokenService()
	identity := testIdentity{id: "uid-1", username: "amelia", email: "amelia@example.com", role: campus.RoleManager}

	token, err := svc.GenerateSession(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "amelia", claims.Subject())
	assert.Equal(t, "uid-1", claims.UserID())
	assert.Equal(t, campus.RoleManager, claims.Role())
	assert.Equal(t, campus.PurposeSession, claims.Purpose())
	assert.WithinDuration(t, time.Now().Add(campus.SessionTokenTTL), claims.Expires(), time.Minute)
}

func TestTokenService_GenerateSessionRequiresIdentity(t *testing.T) {
	svc := newTestTokenService()

	token, err := svc.GenerateSession(nil)
	assert.Error(t, err)
	assert.Empty(t, token)
}

func TestTokenService_PurposeScopedTokens(t *testing.T) {
	svc := newTestTokenService()

	tests := []struct {
		name     string
		generate func() (string, error)
		purpose  campus.TokenPurpose
		ttl      time.Duration
	}{
		{
			name:     "email verification",
			generate: func() (string, error) { return svc.GenerateEmailVerification("uid-2", "leo@example.com") },
			purpose:  campus.PurposeEmailVerification,
			ttl:      campus.EmailVerificationTokenTTL,
		},
		{
			name:     "password reset",
			generate: func() (string, error) { return svc.GeneratePasswordReset("uid-2", "leo@example.com") },
			purpose:  campus.PurposePasswordReset,
			ttl:      campus.PasswordResetTokenTTL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := tt.generate()
			require.NoError(t, err)

			claims, err := svc.ValidatePurpose(token, tt.purpose)
			require.NoError(t, err)

			assert.Equal(t, "uid-2", claims.UserID())
			assert.Equal(t, tt.purpose, claims.Purpose())
			assert.WithinDuration(t, time.Now().Add(tt.ttl), claims.Expires(), time.Minute)
		})
	}
}

func TestTokenService_ValidatePurposeMismatch(t *testing.T) {
	svc := newTestTokenService()

	resetToken, err := svc.GeneratePasswordReset("uid-3", "maya@example.com")
	require.NoError(t, err)

	sessionToken, err := svc.GenerateSession(testIdentity{id: "uid-3", username: "maya", role: campus.RoleUser})
	require.NoError(t, err)

	// a reset token must never open a session, and a session token must
	// never finalize a reset
	_, err = svc.ValidatePurpose(resetToken, campus.PurposeSession)
	assert.Equal(t, campus.ErrTokenPurposeMismatch, err)

	_, err = svc.ValidatePurpose(sessionToken, campus.PurposePasswordReset)
	assert.Equal(t, campus.ErrTokenPurposeMismatch, err)

	_, err = svc.ValidatePurpose(sessionToken, campus.PurposeEmailVerification)
	assert.Equal(t, campus.ErrTokenPurposeMismatch, err)
}

func TestTokenService_ValidateExpired(t *testing.T) {
	past := frozenNow
	svc := newTestTokenService(campus.WithClock(func() time.Time { return past }))

	token, err := svc.GenerateSession(testIdentity{id: "uid-4", username: "nora", role: campus.RoleUser})
	require.NoError(t, err)

	// move the clock beyond the session TTL
	past = frozenNow.Add(campus.SessionTokenTTL + time.Minute)

	_, err = svc.Validate(token)
	assert.Equal(t, campus.ErrTokenExpired, err)
}

func TestTokenService_ValidateRejectsTamperedTokens(t *testing.T) {
	svc := newTestTokenService()

	token, err := svc.GenerateSession(testIdentity{id: "uid-5", username: "iris", role: campus.RoleUser})
	require.NoError(t, err)

	t.Run("wrong signing key", func(t *testing.T) {
		other := campus.NewTokenService([]byte("different-key"), "campus-test", jwt.ClaimStrings{"campus-api"}, nil)

		_, err := other.Validate(token)
		require.Error(t, err)

		var rich *errors.Error
		require.ErrorAs(t, err, &rich)
		assert.Equal(t, campus.ErrTokenMalformed.TextCode, rich.TextCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Validate("not.a.token")
		assert.Error(t, err)
	})

	t.Run("unsigned token rejected", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &campus.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "iris",
				Issuer:    "campus-test",
				Audience:  jwt.ClaimStrings{"campus-api"},
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			TokenPurpose: campus.PurposeSession,
		})

		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Validate(raw)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := campus.NewTokenService([]byte("test-signing-key"), "someone-else", jwt.ClaimStrings{"campus-api"}, nil)
		otherToken, err := other.GenerateSession(testIdentity{id: "uid-5", username: "iris", role: campus.RoleUser})
		require.NoError(t, err)

		_, err = svc.Validate(otherToken)
		assert.Error(t, err)
	})
}

func TestTokenService_ClaimsDecorator(t *testing.T) {
	t.Run("decorator extends metadata", func(t *testing.T) {
		svc := newTestTokenService(campus.WithClaimsDecorator(
			campus.ClaimsDecoratorFunc(func(identity campus.Identity, claims *campus.JWTClaims) error {
				if claims.Metadata == nil {
					claims.Metadata = map[string]any{}
				}
				claims.Metadata["tenant"] = "campus-eu"
				return nil
			}),
		))

		token, err := svc.GenerateSession(testIdentity{id: "uid-6", username: "omar", role: campus.RoleUser})
		require.NoError(t, err)

		claims, err := svc.Validate(token)
		require.NoError(t, err)

		jwtClaims, ok := claims.(*campus.JWTClaims)
		require.True(t, ok)
		assert.Equal(t, "campus-eu", jwtClaims.Metadata["tenant"])
	})

	t.Run("decorator cannot mutate identity claims", func(t *testing.T) {
		svc := newTestTokenService(campus.WithClaimsDecorator(
			campus.ClaimsDecoratorFunc(func(identity campus.Identity, claims *campus.JWTClaims) error {
				claims.UserRole = campus.RoleAdmin
				return nil
			}),
		))

		token, err := svc.GenerateSession(testIdentity{id: "uid-7", username: "pia", role: campus.RoleUser})
		assert.Empty(t, token)
		require.Error(t, err)

		var rich *errors.Error
		require.ErrorAs(t, err, &rich)
		assert.Equal(t, campus.ErrImmutableClaimMutation.TextCode, rich.TextCode)
	})

	t.Run("decorator error aborts mint", func(t *testing.T) {
		boom := errors.New("decorator exploded", errors.CategoryInternal)
		svc := newTestTokenService(campus.WithClaimsDecorator(
			campus.ClaimsDecoratorFunc(func(identity campus.Identity, claims *campus.JWTClaims) error {
				return boom
			}),
		))

		token, err := svc.GenerateSession(testIdentity{id: "uid-8", username: "quinn", role: campus.RoleUser})
		assert.Empty(t, token)
		assert.Equal(t, boom, err)
	})
}

func TestTokenService_SignClaimsNil(t *testing.T) {
	svc := newTestTokenService()

	_, err := svc.SignClaims(nil)
	assert.Error(t, err)
}
