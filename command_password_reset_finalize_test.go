package campus_test

import (
	"context"
	"database/sql"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	campus "github.com/learnhub/go-campus"
)

// stubUsersRepo overrides only the methods the reset flow touches. Any other
// call panics through the nil embedded interface, which is what we want.
type stubUsersRepo struct {
	campus.Users

	resetErr error
	calls    int
	gotID    uuid.UUID
	gotHash  string
}

func (s *stubUsersRepo) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	s.calls++
	s.gotID = id
	s.gotHash = passwordHash
	return s.resetErr
}

type stubRepoManager struct {
	campus.RepositoryManager

	users *stubUsersRepo
	txErr error
}

func (s *stubRepoManager) Users() campus.Users { return s.users }

func (s *stubRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	if s.txErr != nil {
		return s.txErr
	}
	var tx bun.Tx
	return f(ctx, tx)
}

func TestFinalizePasswordReset(t *testing.T) {
	tokens := newTestTokenService()
	userID := uuid.New()

	resetToken, err := tokens.GeneratePasswordReset(userID.String(), "amelia@example.com")
	require.NoError(t, err)

	t.Run("rotates the password from a valid reset token", func(t *testing.T) {
		users := &stubUsersRepo{}
		repo := &stubRepoManager{users: users}
		handler := campus.NewFinalizePasswordResetHandler(repo, tokens)

		err := handler.Execute(context.Background(), campus.FinalizePasswordResetMesasge{
			Token:    resetToken,
			Password: "brand-new-password-1",
		})
		require.NoError(t, err)

		assert.Equal(t, 1, users.calls)
		assert.Equal(t, userID, users.gotID)
		assert.NoError(t, campus.ComparePasswordAndHash("brand-new-password-1", users.gotHash))
	})

	t.Run("rejects a session token", func(t *testing.T) {
		users := &stubUsersRepo{}
		repo := &stubRepoManager{users: users}
		handler := campus.NewFinalizePasswordResetHandler(repo, tokens)

		sessionToken, err := tokens.GenerateSession(testIdentity{
			id:       userID.String(),
			username: "amelia",
			email:    "amelia@example.com",
			role:     campus.RoleUser,
		})
		require.NoError(t, err)

		err = handler.Execute(context.Background(), campus.FinalizePasswordResetMesasge{
			Token:    sessionToken,
			Password: "brand-new-password-1",
		})
		require.Error(t, err)
		assert.Equal(t, campus.ErrTokenPurposeMismatch, err)
		assert.Zero(t, users.calls)
	})

	t.Run("rejects a garbage token", func(t *testing.T) {
		users := &stubUsersRepo{}
		repo := &stubRepoManager{users: users}
		handler := campus.NewFinalizePasswordResetHandler(repo, tokens)

		err := handler.Execute(context.Background(), campus.FinalizePasswordResetMesasge{
			Token:    "not.a.token",
			Password: "brand-new-password-1",
		})
		require.Error(t, err)
		assert.Zero(t, users.calls)
	})

	t.Run("maps a missing user to not found", func(t *testing.T) {
		users := &stubUsersRepo{
			resetErr: goerrors.New("no rows", goerrors.CategoryNotFound),
		}
		repo := &stubRepoManager{users: users}
		handler := campus.NewFinalizePasswordResetHandler(repo, tokens)

		err := handler.Execute(context.Background(), campus.FinalizePasswordResetMesasge{
			Token:    resetToken,
			Password: "brand-new-password-1",
		})
		require.Error(t, err)

		var richErr *goerrors.Error
		require.ErrorAs(t, err, &richErr)
		assert.Equal(t, goerrors.CategoryNotFound, richErr.Category)
	})

	t.Run("cancelled context short-circuits", func(t *testing.T) {
		users := &stubUsersRepo{}
		repo := &stubRepoManager{users: users}
		handler := campus.NewFinalizePasswordResetHandler(repo, tokens)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := handler.Execute(ctx, campus.FinalizePasswordResetMesasge{
			Token:    resetToken,
			Password: "brand-new-password-1",
		})
		require.Error(t, err)
		assert.Zero(t, users.calls)
	})
}
