// Package authenticator defines the session-handling contract the router
// depends on.
package authenticator

import "net/http"

type Authenticator interface {
	AuthenticateUser(h http.Handler) http.Handler
	IssueSession(response http.ResponseWriter, userID string) error
	ClearSession(response http.ResponseWriter)
}
