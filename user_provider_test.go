package campus_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	campus "github.com/learnhub/go-campus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByIdentifier(ctx context.Context, identifier string) (*campus.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*campus.User), args.Error(1)
}

func testUser(t *testing.T, password string, role campus.UserRole) *campus.User {
	t.Helper()

	hash, err := campus.HashPasswordCost(password, bcrypt.MinCost)
	require.NoError(t, err)

	return &campus.User{
		ID:           uuid.New(),
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: hash,
		Role:         &campus.Role{Name: role},
		IsActive:     true,
	}
}

func TestUserProviderVerifyIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("successful verification", func(t *testing.T) {
		store := new(MockUserStore)
		provider := campus.NewUserProvider(store)
		user := testUser(t, "password123", campus.RoleAdmin)

		store.On("GetByIdentifier", ctx, "test@example.com").Return(user, nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), identity.ID())
		assert.Equal(t, "testuser", identity.Username())
		assert.Equal(t, "test@example.com", identity.Email())
		assert.Equal(t, campus.RoleAdmin, identity.Role())

		store.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		store := new(MockUserStore)
		provider := campus.NewUserProvider(store)
		user := testUser(t, "correct_password", campus.RoleUser)

		store.On("GetByIdentifier", ctx, "test@example.com").Return(user, nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "wrong_password")

		assert.Nil(t, identity)
		assert.Equal(t, campus.ErrMismatchedHashAndPassword, err)

		store.AssertExpectations(t)
	})

	t.Run("user not found looks like wrong password", func(t *testing.T) {
		store := new(MockUserStore)
		provider := campus.NewUserProvider(store)

		store.On("GetByIdentifier", ctx, "ghost@example.com").
			Return(nil, errors.New("user not found", errors.CategoryNotFound)).Once()

		identity, err := provider.VerifyIdentity(ctx, "ghost@example.com", "password123")

		assert.Nil(t, identity)
		assert.Equal(t, campus.ErrMismatchedHashAndPassword, err)

		store.AssertExpectations(t)
	})

	t.Run("disabled account", func(t *testing.T) {
		store := new(MockUserStore)
		provider := campus.NewUserProvider(store)
		user := testUser(t, "password123", campus.RoleUser)
		user.IsActive = false

		store.On("GetByIdentifier", ctx, "test@example.com").Return(user, nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.Nil(t, identity)
		assert.Equal(t, campus.ErrAccountDisabled, err)

		store.AssertExpectations(t)
	})

	t.Run("disabled account with wrong password stays a mismatch", func(t *testing.T) {
		// password verification runs first so a caller cannot probe whether
		// an account exists but is disabled
		store := new(MockUserStore)
		provider := campus.NewUserProvider(store)
		user := testUser(t, "password123", campus.RoleUser)
		user.IsActive = false

		store.On("GetByIdentifier", ctx, "test@example.com").Return(user, nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "wrong_password")

		assert.Nil(t, identity)
		assert.Equal(t, campus.ErrMismatchedHashAndPassword, err)

		store.AssertExpectations(t)
	})

	t.Run("unknown role fails validation", func(t *testing.T) {
		store := new(MockUserStore)
		provider := campus.NewUserProvider(store)
		user := testUser(t, "password123", "superuser")

		store.On("GetByIdentifier", ctx, "test@example.com").Return(user, nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.Nil(t, identity)
		assert.Error(t, err)

		store.AssertExpectations(t)
	})

	t.Run("store failure is not a credential error", func(t *testing.T) {
		store := new(MockUserStore)
		provider := campus.NewUserProvider(store)

		store.On("GetByIdentifier", ctx, "test@example.com").
			Return(nil, errors.New("connection refused", errors.CategoryOperation)).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.Nil(t, identity)
		assert.Error(t, err)
		assert.NotEqual(t, campus.ErrMismatchedHashAndPassword, err)

		store.AssertExpectations(t)
	})
}

func TestUserProviderFindIdentityByIdentifier(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		store := new(MockUserStore)
		provider := campus.NewUserProvider(store)
		user := testUser(t, "password123", campus.RoleManager)

		store.On("GetByIdentifier", ctx, "testuser").Return(user, nil).Once()

		identity, err := provider.FindIdentityByIdentifier(ctx, "testuser")

		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), identity.ID())
		assert.Equal(t, campus.RoleManager, identity.Role())

		store.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		store := new(MockUserStore)
		provider := campus.NewUserProvider(store)

		store.On("GetByIdentifier", ctx, "ghost").
			Return(nil, errors.New("user not found", errors.CategoryNotFound)).Once()

		identity, err := provider.FindIdentityByIdentifier(ctx, "ghost")

		assert.Nil(t, identity)
		assert.Equal(t, campus.ErrIdentityNotFound, err)

		store.AssertExpectations(t)
	})

	t.Run("missing role defaults to base role", func(t *testing.T) {
		store := new(MockUserStore)
		provider := campus.NewUserProvider(store)
		user := testUser(t, "password123", campus.RoleUser)
		user.Role = nil

		store.On("GetByIdentifier", ctx, "testuser").Return(user, nil).Once()

		identity, err := provider.FindIdentityByIdentifier(ctx, "testuser")

		require.NoError(t, err)
		assert.Equal(t, campus.RoleUser, identity.Role())

		store.AssertExpectations(t)
	})
}
