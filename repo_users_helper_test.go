package campus

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResolveUserIdentifier(t *testing.T) {
	t.Parallel()

	t.Run("uuid identifier matches id and username columns", func(t *testing.T) {
		id := uuid.New().String()

		options := resolveUserIdentifier(id)

		assert.Equal(t, []identifierOption{
			{column: "id", value: id},
			{column: "username", value: id},
		}, options)
	})

	t.Run("email identifier matches email and username columns", func(t *testing.T) {
		options := resolveUserIdentifier("amelia@example.com")

		assert.Equal(t, []identifierOption{
			{column: "email", value: "amelia@example.com"},
			{column: "username", value: "amelia@example.com"},
		}, options)
	})

	t.Run("plain identifier falls back to username", func(t *testing.T) {
		options := resolveUserIdentifier("amelia")

		assert.Equal(t, []identifierOption{
			{column: "username", value: "amelia"},
		}, options)
	})

	t.Run("whitespace is trimmed", func(t *testing.T) {
		options := resolveUserIdentifier("  amelia  ")

		assert.Equal(t, []identifierOption{
			{column: "username", value: "amelia"},
		}, options)
	})

	t.Run("blank identifier resolves to nothing", func(t *testing.T) {
		assert.Nil(t, resolveUserIdentifier("   "))
	})
}

func TestPrepareUserDefaults(t *testing.T) {
	t.Parallel()

	t.Run("assigns an id when missing", func(t *testing.T) {
		u := &User{}

		prepareUserDefaults(u)

		assert.NotEqual(t, uuid.Nil, u.ID)
	})

	t.Run("keeps an existing id", func(t *testing.T) {
		id := uuid.New()
		u := &User{ID: id}

		prepareUserDefaults(u)

		assert.Equal(t, id, u.ID)
	})

	t.Run("nil user is a no-op", func(t *testing.T) {
		prepareUserDefaults(nil)
	})
}
