package campus

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockWSTokenService struct {
	mock.Mock
}

func (m *mockWSTokenService) GenerateSession(identity Identity) (string, error) {
	args := m.Called(identity)
	return args.String(0), args.Error(1)
}

func (m *mockWSTokenService) GenerateEmailVerification(userID, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}

func (m *mockWSTokenService) GeneratePasswordReset(userID, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}

func (m *mockWSTokenService) SignClaims(claims *JWTClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *mockWSTokenService) Validate(tokenString string) (AuthClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(AuthClaims), args.Error(1)
}

func (m *mockWSTokenService) ValidatePurpose(tokenString string, purpose TokenPurpose) (AuthClaims, error) {
	args := m.Called(tokenString, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(AuthClaims), args.Error(1)
}

func wsTestClaims(role UserRole) *JWTClaims {
	return &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "session-subject",
		},
		UID:          "user-123",
		UserRole:     role,
		TokenPurpose: PurposeSession,
	}
}

func TestWSTokenValidator_Validate(t *testing.T) {
	t.Run("successful validation", func(t *testing.T) {
		mockTokenSvc := &mockWSTokenService{}
		claims := wsTestClaims(RoleUser)
		validator := NewWSTokenValidator(mockTokenSvc)

		mockTokenSvc.On("ValidatePurpose", "valid-token", PurposeSession).Return(claims, nil)

		result, err := validator.Validate("valid-token")

		assert.NoError(t, err)
		assert.IsType(t, &WSAuthClaimsAdapter{}, result)

		adapter := result.(*WSAuthClaimsAdapter)
		assert.Equal(t, AuthClaims(claims), adapter.claims)

		mockTokenSvc.AssertExpectations(t)
	})

	t.Run("validation error", func(t *testing.T) {
		mockTokenSvc := &mockWSTokenService{}
		validator := NewWSTokenValidator(mockTokenSvc)

		mockTokenSvc.On("ValidatePurpose", "invalid-token", PurposeSession).Return(nil, ErrTokenMalformed)

		result, err := validator.Validate("invalid-token")

		assert.Error(t, err)
		assert.Equal(t, ErrTokenMalformed, err)
		assert.Nil(t, result)

		mockTokenSvc.AssertExpectations(t)
	})

	t.Run("rejects non session tokens", func(t *testing.T) {
		mockTokenSvc := &mockWSTokenService{}
		validator := NewWSTokenValidator(mockTokenSvc)

		mockTokenSvc.On("ValidatePurpose", "reset-token", PurposeSession).Return(nil, ErrTokenPurposeMismatch)

		result, err := validator.Validate("reset-token")

		assert.Error(t, err)
		assert.Nil(t, result)

		mockTokenSvc.AssertExpectations(t)
	})
}

func TestWSAuthClaimsAdapter_Passthrough(t *testing.T) {
	claims := wsTestClaims(RoleManager)
	adapter := &WSAuthClaimsAdapter{claims: claims}

	assert.Equal(t, "session-subject", adapter.Subject())
	assert.Equal(t, "user-123", adapter.UserID())
	assert.Equal(t, RoleManager, adapter.Role())
	assert.True(t, adapter.HasRole(RoleManager))
	assert.False(t, adapter.HasRole(RoleAdmin))
	assert.True(t, adapter.IsAtLeast(RoleUser))
	assert.False(t, adapter.IsAtLeast(RoleAdmin))
}

func TestWSAuthClaimsAdapter_Permissions(t *testing.T) {
	tests := []struct {
		name      string
		role      UserRole
		canRead   bool
		canMutate bool
	}{
		{name: "user reads only", role: RoleUser, canRead: true, canMutate: false},
		{name: "manager mutates", role: RoleManager, canRead: true, canMutate: true},
		{name: "admin mutates", role: RoleAdmin, canRead: true, canMutate: true},
		{name: "unknown role denied", role: "superuser", canRead: false, canMutate: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := &WSAuthClaimsAdapter{claims: wsTestClaims(tt.role)}

			assert.Equal(t, tt.canRead, adapter.CanRead("courses"))
			assert.Equal(t, tt.canMutate, adapter.CanCreate("courses"))
			assert.Equal(t, tt.canMutate, adapter.CanEdit("courses"))
			assert.Equal(t, tt.canMutate, adapter.CanDelete("courses"))
		})
	}
}
