package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/tinylinks/internal/db/memorystorage"
	"github.com/patric-chuzhbe/tinylinks/internal/user"
)

const testCookieName = "tinylinks_session"

var testSigningKey = []byte("test-signing-key")

func newTestAuth(t *testing.T) (*Auth, *memorystorage.MemoryStorage) {
	t.Helper()

	theDB, err := memorystorage.New()
	require.NoError(t, err)

	return New(theDB, testCookieName, testSigningKey), theDB
}

func createTestUser(t *testing.T, theDB *memorystorage.MemoryStorage) string {
	t.Helper()

	userID, err := theDB.CreateUser(context.Background(), &user.User{Email: "alice@example.com"})
	require.NoError(t, err)

	return userID
}

func TestBuildAndParseToken(t *testing.T) {
	theAuth, _ := newTestAuth(t)

	tokenString, err := theAuth.BuildJWTString(&Claims{UserID: "user-1"})
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	userID, err := theAuth.GetUserIDFromToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestGetUserIDFromTokenIsForgivingOnGarbage(t *testing.T) {
	theAuth, _ := newTestAuth(t)

	for _, tokenString := range []string{"", "garbage", "a.b.c"} {
		userID, err := theAuth.GetUserIDFromToken(tokenString)
		assert.NoError(t, err)
		assert.Empty(t, userID, "token: %q", tokenString)
	}
}

func TestGetUserIDFromTokenRejectsForeignSignature(t *testing.T) {
	theAuth, _ := newTestAuth(t)
	theDB, err := memorystorage.New()
	require.NoError(t, err)
	foreignAuth := New(theDB, testCookieName, []byte("another-key"))

	tokenString, err := foreignAuth.BuildJWTString(&Claims{UserID: "user-1"})
	require.NoError(t, err)

	userID, err := theAuth.GetUserIDFromToken(tokenString)
	assert.NoError(t, err)
	assert.Empty(t, userID)
}

func resolveThroughMiddleware(t *testing.T, theAuth *Auth, decorate func(*http.Request)) string {
	t.Helper()

	var resolved string
	handler := theAuth.AuthenticateUser(http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		resolved = SessionFromContext(request.Context()).UserID
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	if decorate != nil {
		decorate(request)
	}
	handler.ServeHTTP(httptest.NewRecorder(), request)

	return resolved
}

func TestAuthenticateUser(t *testing.T) {
	theAuth, theDB := newTestAuth(t)
	userID := createTestUser(t, theDB)

	tokenString, err := theAuth.BuildJWTString(&Claims{UserID: userID})
	require.NoError(t, err)

	t.Run("valid cookie resolves the user", func(t *testing.T) {
		resolved := resolveThroughMiddleware(t, theAuth, func(request *http.Request) {
			request.AddCookie(&http.Cookie{Name: testCookieName, Value: tokenString})
		})
		assert.Equal(t, userID, resolved)
	})

	t.Run("valid Authorization header resolves the user", func(t *testing.T) {
		resolved := resolveThroughMiddleware(t, theAuth, func(request *http.Request) {
			request.Header.Set("Authorization", tokenString)
		})
		assert.Equal(t, userID, resolved)
	})

	t.Run("no token stays anonymous", func(t *testing.T) {
		resolved := resolveThroughMiddleware(t, theAuth, nil)
		assert.Empty(t, resolved)
	})

	t.Run("invalid token stays anonymous", func(t *testing.T) {
		resolved := resolveThroughMiddleware(t, theAuth, func(request *http.Request) {
			request.AddCookie(&http.Cookie{Name: testCookieName, Value: "garbage"})
		})
		assert.Empty(t, resolved)
	})

	t.Run("token naming an unknown user stays anonymous", func(t *testing.T) {
		unknownToken, err := theAuth.BuildJWTString(&Claims{UserID: "no-such-user"})
		require.NoError(t, err)

		resolved := resolveThroughMiddleware(t, theAuth, func(request *http.Request) {
			request.AddCookie(&http.Cookie{Name: testCookieName, Value: unknownToken})
		})
		assert.Empty(t, resolved)
	})
}

func TestIssueSession(t *testing.T) {
	theAuth, theDB := newTestAuth(t)
	userID := createTestUser(t, theDB)

	recorder := httptest.NewRecorder()
	err := theAuth.IssueSession(recorder, userID)
	require.NoError(t, err)

	assert.NotEmpty(t, recorder.Header().Get("Authorization"))

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	resolved, err := theAuth.GetUserIDFromToken(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)
}

func TestClearSession(t *testing.T) {
	theAuth, _ := newTestAuth(t)

	recorder := httptest.NewRecorder()
	theAuth.ClearSession(recorder)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestSessionFromContext(t *testing.T) {
	assert.True(t, SessionFromContext(context.Background()).IsAnonymous())

	ctx := context.WithValue(context.Background(), UserIDKey, "user-1")
	session := SessionFromContext(ctx)
	assert.Equal(t, "user-1", session.UserID)
	assert.False(t, session.IsAnonymous())
}
