package campus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	campus "github.com/learnhub/go-campus"
)

func TestTokenValidatorFunc(t *testing.T) {
	t.Run("nil func rejects as malformed", func(t *testing.T) {
		var fn campus.TokenValidatorFunc
		_, err := fn.Validate("anything")
		assert.Equal(t, campus.ErrTokenMalformed, err)
	})

	t.Run("delegates to the wrapped func", func(t *testing.T) {
		called := ""
		fn := campus.TokenValidatorFunc(func(raw string) (campus.AuthClaims, error) {
			called = raw
			return nil, campus.ErrTokenExpired
		})

		_, err := fn.Validate("raw-token")
		assert.Equal(t, campus.ErrTokenExpired, err)
		assert.Equal(t, "raw-token", called)
	})
}

func TestNewPurposeValidator(t *testing.T) {
	tokens := newTestTokenService()

	sessionToken, err := tokens.GenerateSession(testIdentity{
		id:       "user-1",
		username: "amelia",
		email:    "amelia@example.com",
		role:     campus.RoleUser,
	})
	require.NoError(t, err)

	resetToken, err := tokens.GeneratePasswordReset("user-1", "amelia@example.com")
	require.NoError(t, err)

	t.Run("accepts tokens with the bound purpose", func(t *testing.T) {
		validator := campus.NewPurposeValidator(tokens, campus.PurposeSession)

		claims, err := validator.Validate(sessionToken)
		require.NoError(t, err)
		assert.Equal(t, campus.PurposeSession, claims.Purpose())
	})

	t.Run("rejects tokens minted for another purpose", func(t *testing.T) {
		validator := campus.NewPurposeValidator(tokens, campus.PurposeSession)

		_, err := validator.Validate(resetToken)
		assert.Equal(t, campus.ErrTokenPurposeMismatch, err)
	})

	t.Run("nil token service rejects as malformed", func(t *testing.T) {
		validator := campus.NewPurposeValidator(nil, campus.PurposeSession)

		_, err := validator.Validate(sessionToken)
		assert.Equal(t, campus.ErrTokenMalformed, err)
	})
}
