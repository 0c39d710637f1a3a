// Package storage declares the persistence contract shared by the user
// directory, the URL registry and the HTTP layer.
package storage

import (
	"context"

	"github.com/patric-chuzhbe/tinylinks/internal/models"
	"github.com/patric-chuzhbe/tinylinks/internal/user"
)

// Storage is the full data-access surface of the application. Both stores
// live for the whole process; implementations must serialize mutating
// operations against concurrent reads and writes so the uniqueness of short
// keys and emails holds at any time.
type Storage interface {
	// CreateUser stores a new user and returns its ID. When usr.ID is empty
	// an ID is assigned. Fails with models.ErrDuplicateEmail when another
	// user already holds the same email.
	CreateUser(ctx context.Context, usr *user.User) (string, error)

	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)

	// FindUserByEmail performs a case-sensitive exact match against stored
	// emails. Callers must not assume an index behind it.
	FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error)

	GetNumberOfUsers(ctx context.Context) (int64, error)

	// InsertURLMapping stores a new mapping. Fails with
	// models.ErrShortKeyExists when the short key is already taken.
	InsertURLMapping(ctx context.Context, mapping *models.URLMapping) error

	FindMappingByShort(ctx context.Context, short string) (*models.URLMapping, bool, error)

	FindMappingsByUser(ctx context.Context, userID string) ([]models.URLMapping, error)

	// UpdateURLMapping replaces the target URL of an existing mapping.
	// The short key and the owner are preserved.
	UpdateURLMapping(ctx context.Context, short, full string) error

	DeleteURLMapping(ctx context.Context, short string) error

	// RemoveUsersUrls deletes, per user, the given short keys. Keys that do
	// not exist or belong to another user are skipped silently.
	RemoveUsersUrls(ctx context.Context, usersURLs map[string][]string) error

	GetNumberOfShortenedURLs(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error

	Close() error
}
