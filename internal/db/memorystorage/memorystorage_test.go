package memorystorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/tinylinks/internal/models"
	"github.com/patric-chuzhbe/tinylinks/internal/user"
)

func TestUsers(t *testing.T) {
	t.Run("the base users side test", func(t *testing.T) {
		theStorage, err := New()
		require.NoError(t, err, "The memorystorage.New() should not return error")

		usr := &user.User{Email: "arushi@email", PasswordHash: "some hash"}
		userID, err := theStorage.CreateUser(context.Background(), usr)
		assert.NoError(t, err, "The `theStorage.CreateUser()` should not return error")
		assert.NotEmpty(t, userID, "CreateUser should assign an ID")

		found, ok, err := theStorage.GetUserByID(context.Background(), userID)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "arushi@email", found.Email)

		found, ok, err = theStorage.FindUserByEmail(context.Background(), "arushi@email")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, userID, found.ID)

		_, ok, err = theStorage.FindUserByEmail(context.Background(), "ARUSHI@EMAIL")
		assert.NoError(t, err)
		assert.False(t, ok, "The email lookup must be case-sensitive")

		count, err := theStorage.GetNumberOfUsers(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)

		err = theStorage.Close()
		assert.NoError(t, err, "The memorystorage.Close() should not return error")
	})

	t.Run("a taken email is rejected regardless of the other fields", func(t *testing.T) {
		theStorage, err := New()
		require.NoError(t, err)

		_, err = theStorage.CreateUser(context.Background(), &user.User{Email: "a@x.com", PasswordHash: "h1"})
		require.NoError(t, err)

		_, err = theStorage.CreateUser(context.Background(), &user.User{Email: "a@x.com", PasswordHash: "h2"})
		assert.ErrorIs(t, err, models.ErrDuplicateEmail)
	})
}

func TestURLMappings(t *testing.T) {
	t.Run("the base URL mappings side test", func(t *testing.T) {
		theStorage, err := New()
		require.NoError(t, err, "The memorystorage.New() should not return error")

		err = theStorage.InsertURLMapping(context.Background(), &models.URLMapping{
			Short:  "b6UTxQ",
			Full:   "https://www.tsn.ca",
			UserID: "owner-1",
		})
		assert.NoError(t, err, "The `theStorage.InsertURLMapping()` should not return error")

		err = theStorage.InsertURLMapping(context.Background(), &models.URLMapping{
			Short:  "b6UTxQ",
			Full:   "https://elsewhere.test",
			UserID: "owner-2",
		})
		assert.ErrorIs(t, err, models.ErrShortKeyExists)

		mapping, found, err := theStorage.FindMappingByShort(context.Background(), "b6UTxQ")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "https://www.tsn.ca", mapping.Full)
		assert.Equal(t, "owner-1", mapping.UserID)

		err = theStorage.UpdateURLMapping(context.Background(), "b6UTxQ", "https://www.cbc.ca/news")
		assert.NoError(t, err)

		mapping, found, err = theStorage.FindMappingByShort(context.Background(), "b6UTxQ")
		assert.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "https://www.cbc.ca/news", mapping.Full)
		assert.Equal(t, "owner-1", mapping.UserID, "Update must preserve the owner")
		assert.Equal(t, "b6UTxQ", mapping.Short, "Update must preserve the short key")

		err = theStorage.DeleteURLMapping(context.Background(), "b6UTxQ")
		assert.NoError(t, err)

		_, found, err = theStorage.FindMappingByShort(context.Background(), "b6UTxQ")
		assert.NoError(t, err)
		assert.False(t, found)

		err = theStorage.DeleteURLMapping(context.Background(), "b6UTxQ")
		assert.ErrorIs(t, err, models.ErrNotFound)

		err = theStorage.UpdateURLMapping(context.Background(), "b6UTxQ", "https://anything.test")
		assert.ErrorIs(t, err, models.ErrNotFound)

		err = theStorage.Ping(context.Background())
		assert.NoError(t, err, "The memorystorage.Ping() should not return error")
	})

	t.Run("listing filters by the exact owner", func(t *testing.T) {
		theStorage, err := New()
		require.NoError(t, err)

		for _, mapping := range []models.URLMapping{
			{Short: "aaaaa1", Full: "https://a.test/1", UserID: "owner-a"},
			{Short: "aaaaa2", Full: "https://a.test/2", UserID: "owner-a"},
			{Short: "bbbbb1", Full: "https://b.test/1", UserID: "owner-b"},
		} {
			m := mapping
			require.NoError(t, theStorage.InsertURLMapping(context.Background(), &m))
		}

		mappings, err := theStorage.FindMappingsByUser(context.Background(), "owner-a")
		assert.NoError(t, err)
		assert.Len(t, mappings, 2)
		for _, mapping := range mappings {
			assert.Equal(t, "owner-a", mapping.UserID)
		}

		mappings, err = theStorage.FindMappingsByUser(context.Background(), "owner-c")
		assert.NoError(t, err)
		assert.Empty(t, mappings)
	})

	t.Run("batched removal skips foreign and unknown keys", func(t *testing.T) {
		theStorage, err := New()
		require.NoError(t, err)

		for _, mapping := range []models.URLMapping{
			{Short: "aaaaa1", Full: "https://a.test/1", UserID: "owner-a"},
			{Short: "bbbbb1", Full: "https://b.test/1", UserID: "owner-b"},
		} {
			m := mapping
			require.NoError(t, theStorage.InsertURLMapping(context.Background(), &m))
		}

		err = theStorage.RemoveUsersUrls(context.Background(), map[string][]string{
			"owner-a": {"aaaaa1", "bbbbb1", "unknown"},
		})
		assert.NoError(t, err)

		_, found, err := theStorage.FindMappingByShort(context.Background(), "aaaaa1")
		assert.NoError(t, err)
		assert.False(t, found, "The owner's key should be removed")

		_, found, err = theStorage.FindMappingByShort(context.Background(), "bbbbb1")
		assert.NoError(t, err)
		assert.True(t, found, "A foreign key must survive the batch")
	})
}
