// Package models contains the wire-level request/response types of the
// service API and the sentinel errors shared between the stores, the core
// services and the transport layer.
package models

import "errors"

// RegisterRequest is the payload of `POST /api/user/register`.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the payload of `POST /api/user/login`.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type ShortenRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type ShortenResponse struct {
	Result string `json:"result"`
}

// UpdateURLRequest is the payload of `PUT /api/user/urls/{short}`.
// Only the target URL of a mapping may ever change.
type UpdateURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// URLMapping is a single short-key to original-URL association together
// with the ID of the user who created it. Short and UserID are immutable
// for the lifetime of the mapping.
type URLMapping struct {
	Short  string `json:"short"`
	Full   string `json:"full"`
	UserID string `json:"-"`
}

type UserURL struct {
	ShortURL    string `json:"short_url" validate:"required,url"`
	OriginalURL string `json:"original_url" validate:"required,url"`
}

type UserUrls []UserURL

// DeleteURLsRequest carries the short keys submitted for asynchronous removal.
type DeleteURLsRequest []string

// URLDeleteJob is a unit of work for the background URLs remover.
type URLDeleteJob struct {
	UserID       string
	URLsToDelete DeleteURLsRequest
}

// InternalStatsResponse is the payload of `GET /api/internal/stats`.
type InternalStatsResponse struct {
	URLs  int64 `json:"urls"`
	Users int64 `json:"users"`
}

// The outcome taxonomy. The core never renders or logs - it returns one of
// these values and the transport layer decides how to present it.
var (
	// ErrNotFound is returned when no mapping or user exists for the key.
	// It takes precedence over ErrNotOwner so that nonexistent resources
	// are indistinguishable from resources owned by somebody else.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for an empty or malformed required field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateEmail is returned when registering an already taken email.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrNotAuthenticated is returned when the operation requires a resolved
	// caller identity and the session is anonymous.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotOwner is returned when an authenticated caller operates on a
	// mapping created by another user.
	ErrNotOwner = errors.New("the URL belongs to another user")

	// ErrShortKeyExists signals a short key collision on insert. It is
	// consumed by the registry's regeneration loop and never escapes it.
	ErrShortKeyExists = errors.New("short key already exists")

	// ErrShortKeySpaceExhausted is returned when the registry could not find
	// a free short key within its retry budget. It is a fatal precondition
	// violation: the key space or the retry policy needs revision.
	ErrShortKeySpaceExhausted = errors.New("unable to generate an unused short key")
)
