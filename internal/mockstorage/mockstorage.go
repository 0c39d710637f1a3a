// Package mockstorage provides a testify-based mock implementation
// of the storage interface consumed by the services and the router.
// It is used for unit testing by simulating storage behavior.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/tinylinks/internal/models"
	"github.com/patric-chuzhbe/tinylinks/internal/user"
)

// StorageMock is a testify mock that implements storage.Storage.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks storing a new user.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	args := m.Called(ctx, usr)
	return args.String(0), args.Error(1)
}

// GetUserByID mocks fetching a user by ID.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// FindUserByEmail mocks the email lookup.
func (m *StorageMock) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	args := m.Called(ctx, email)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// GetNumberOfUsers mocks the user counter.
func (m *StorageMock) GetNumberOfUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// InsertURLMapping mocks storing a new URL mapping.
func (m *StorageMock) InsertURLMapping(ctx context.Context, mapping *models.URLMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

// FindMappingByShort mocks the short key lookup.
func (m *StorageMock) FindMappingByShort(ctx context.Context, short string) (*models.URLMapping, bool, error) {
	args := m.Called(ctx, short)
	mapping, _ := args.Get(0).(*models.URLMapping)
	return mapping, args.Bool(1), args.Error(2)
}

// FindMappingsByUser mocks the owner-scoped listing.
func (m *StorageMock) FindMappingsByUser(ctx context.Context, userID string) ([]models.URLMapping, error) {
	args := m.Called(ctx, userID)
	mappings, _ := args.Get(0).([]models.URLMapping)
	return mappings, args.Error(1)
}

// UpdateURLMapping mocks replacing the target URL of a mapping.
func (m *StorageMock) UpdateURLMapping(ctx context.Context, short, full string) error {
	args := m.Called(ctx, short, full)
	return args.Error(0)
}

// DeleteURLMapping mocks removing a mapping.
func (m *StorageMock) DeleteURLMapping(ctx context.Context, short string) error {
	args := m.Called(ctx, short)
	return args.Error(0)
}

// RemoveUsersUrls mocks the batched per-user removal.
func (m *StorageMock) RemoveUsersUrls(ctx context.Context, usersURLs map[string][]string) error {
	args := m.Called(ctx, usersURLs)
	return args.Error(0)
}

// GetNumberOfShortenedURLs mocks the mapping counter.
func (m *StorageMock) GetNumberOfShortenedURLs(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Ping mocks the health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the storage.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
