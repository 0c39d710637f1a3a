package userdir

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/patric-chuzhbe/tinylinks/internal/db/memorystorage"
	"github.com/patric-chuzhbe/tinylinks/internal/models"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	theStorage, err := memorystorage.New()
	require.NoError(t, err)

	return New(theStorage, WithBcryptCost(bcrypt.MinCost))
}

func TestRegisterAndVerifyCredentials(t *testing.T) {
	t.Run("a registered pair verifies to the same user id", func(t *testing.T) {
		directory := newTestDirectory(t)

		registered, err := directory.Register(context.Background(), "a@x.com", "pw1")
		require.NoError(t, err)
		require.NotEmpty(t, registered.ID)
		assert.NotEqual(t, "pw1", registered.PasswordHash, "The plaintext password must never be stored")

		verified, found, err := directory.VerifyCredentials(context.Background(), "a@x.com", "pw1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, registered.ID, verified.ID)
	})

	t.Run("an unknown email and a wrong password are indistinguishable", func(t *testing.T) {
		directory := newTestDirectory(t)

		_, err := directory.Register(context.Background(), "a@x.com", "pw1")
		require.NoError(t, err)

		_, foundWrongPassword, err := directory.VerifyCredentials(context.Background(), "a@x.com", "not pw1")
		require.NoError(t, err)

		_, foundUnknownEmail, err := directory.VerifyCredentials(context.Background(), "nobody@x.com", "pw1")
		require.NoError(t, err)

		assert.Equal(t, foundWrongPassword, foundUnknownEmail)
		assert.False(t, foundWrongPassword)
	})

	t.Run("registering a taken email fails regardless of password", func(t *testing.T) {
		directory := newTestDirectory(t)

		_, err := directory.Register(context.Background(), "a@x.com", "pw1")
		require.NoError(t, err)

		_, err = directory.Register(context.Background(), "a@x.com", "another password")
		assert.ErrorIs(t, err, models.ErrDuplicateEmail)
	})

	t.Run("empty email or password is invalid input", func(t *testing.T) {
		directory := newTestDirectory(t)

		_, err := directory.Register(context.Background(), "", "pw1")
		assert.ErrorIs(t, err, models.ErrInvalidInput)

		_, err = directory.Register(context.Background(), "a@x.com", "")
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})
}

func TestFindByEmail(t *testing.T) {
	directory := newTestDirectory(t)

	_, err := directory.Register(context.Background(), "a@x.com", "pw1")
	require.NoError(t, err)

	usr, found, err := directory.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "a@x.com", usr.Email)

	_, found, err = directory.FindByEmail(context.Background(), "A@X.COM")
	require.NoError(t, err)
	assert.False(t, found, "The lookup must be case-sensitive")
}
