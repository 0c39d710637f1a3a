// Package auth provides middleware and helpers for JWT-based session
// handling in HTTP requests. It supports cookie-based or Authorization
// header-based token parsing. Sessions are issued on successful login or
// registration and cleared on logout; no automatic expiry is applied.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v4"

	"github.com/patric-chuzhbe/tinylinks/internal/access"
	"github.com/patric-chuzhbe/tinylinks/internal/user"
)

type userKeeper interface {
	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)
}

// Auth resolves and issues session tokens. A request without a valid token
// is not an error - it simply stays anonymous.
type Auth struct {
	// db is the interface to the user data storage.
	db userKeeper

	// authCookieName is the name of the cookie used to store the JWT.
	authCookieName string

	// authCookieSigningSecretKey is the key used to sign JWTs.
	authCookieSigningSecretKey []byte
}

// Claims represents the JWT claims used by the system.
// It embeds standard JWT claims and adds a user-specific identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key used to store and retrieve the authenticated user's ID.
const UserIDKey ContextKey = "userID"

// New creates a new Auth handler with the given user data access layer,
// cookie name, and JWT signing secret.
func New(
	db userKeeper,
	authCookieName string,
	authCookieSigningSecretKey []byte,
) *Auth {
	return &Auth{
		db:                         db,
		authCookieName:             authCookieName,
		authCookieSigningSecretKey: authCookieSigningSecretKey,
	}
}

// AuthenticateUser is an HTTP middleware that resolves the caller identity
// from a JWT found in the Authorization header or the session cookie. When
// the token is valid and names an existing user, the user ID is stored in
// the request context; otherwise the request proceeds anonymously. Whether
// anonymity is acceptable is decided downstream, per operation.
func (a *Auth) AuthenticateUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		userID := a.resolveUserID(request)
		if userID == "" {
			h.ServeHTTP(response, request)
			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, userID)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// IssueSession signs a JWT for the given user and attaches it to the
// response as both an Authorization header and a session cookie.
func (a *Auth) IssueSession(response http.ResponseWriter, userID string) error {
	JWTString, err := a.BuildJWTString(&Claims{UserID: userID})
	if err != nil {
		return fmt.Errorf("building the session token: %w", err)
	}

	response.Header().Set("Authorization", JWTString)

	http.SetCookie(
		response,
		&http.Cookie{
			Name:     a.authCookieName,
			Value:    JWTString,
			Path:     "/",
			HttpOnly: true,
		},
	)

	return nil
}

// ClearSession expires the session cookie. The next request is anonymous.
func (a *Auth) ClearSession(response http.ResponseWriter) {
	http.SetCookie(
		response,
		&http.Cookie{
			Name:     a.authCookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		},
	)
}

// GetUserIDFromToken parses and verifies a raw token string and returns the
// user ID claim. An invalid or unverifiable token yields an empty ID and no
// error: the caller is simply anonymous.
func (a *Auth) GetUserIDFromToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.authCookieSigningSecretKey, nil
		},
	)
	if err != nil || !token.Valid {
		return "", nil
	}

	return claims.UserID, nil
}

// BuildJWTString signs the claims with the configured secret.
func (a *Auth) BuildJWTString(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, *claims)

	tokenString, err := token.SignedString(a.authCookieSigningSecretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// SessionFromContext rebuilds the access.Session the middleware resolved.
// A request that never went through the middleware, or carried no valid
// token, yields an anonymous session.
func SessionFromContext(ctx context.Context) access.Session {
	userID, _ := ctx.Value(UserIDKey).(string)
	return access.Session{UserID: userID}
}

func (a *Auth) getTokenStringFromAuthorizationHeaderOrCookie(request *http.Request) string {
	tokenString := request.Header.Get("Authorization")
	if tokenString != "" {
		return tokenString
	}
	cookie, err := request.Cookie(a.authCookieName)
	if err == nil {
		tokenString = cookie.Value
	}

	return tokenString
}

// resolveUserID maps a request to a registered user ID, or "" when the
// token is absent, invalid, or names a user that no longer exists.
func (a *Auth) resolveUserID(request *http.Request) string {
	tokenString := a.getTokenStringFromAuthorizationHeaderOrCookie(request)
	if tokenString == "" {
		return ""
	}

	userID, err := a.GetUserIDFromToken(tokenString)
	if err != nil || userID == "" {
		return ""
	}

	_, found, err := a.db.GetUserByID(request.Context(), userID)
	if err != nil || !found {
		return ""
	}

	return userID
}
