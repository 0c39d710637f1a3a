// Package memorystorage is the in-memory storage backend. Both stores live
// exactly as long as the process; nothing is written to disk.
package memorystorage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/patric-chuzhbe/tinylinks/internal/models"
	"github.com/patric-chuzhbe/tinylinks/internal/user"
)

// MemoryStorage keeps users and URL mappings in plain maps. Each store side
// is guarded by its own RWMutex; check-then-act sequences that protect the
// uniqueness invariants (email, short key) run under the write lock.
type MemoryStorage struct {
	usersMu sync.RWMutex
	users   map[string]user.User

	urlsMu sync.RWMutex
	urls   map[string]models.URLMapping
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		users: map[string]user.User{},
		urls:  map[string]models.URLMapping{},
	}, nil
}

// CreateUser stores usr and returns its ID, assigning a new UUID when
// usr.ID is empty. The email uniqueness check is a linear scan performed
// under the write lock.
func (theStorage *MemoryStorage) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	theStorage.usersMu.Lock()
	defer theStorage.usersMu.Unlock()

	for _, existing := range theStorage.users {
		if existing.Email == usr.Email {
			return "", models.ErrDuplicateEmail
		}
	}

	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	theStorage.users[usr.ID] = *usr

	return usr.ID, nil
}

func (theStorage *MemoryStorage) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	theStorage.usersMu.RLock()
	defer theStorage.usersMu.RUnlock()

	usr, found := theStorage.users[userID]
	if !found {
		return nil, false, nil
	}

	return &usr, true, nil
}

func (theStorage *MemoryStorage) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	theStorage.usersMu.RLock()
	defer theStorage.usersMu.RUnlock()

	for _, usr := range theStorage.users {
		if usr.Email == email {
			found := usr
			return &found, true, nil
		}
	}

	return nil, false, nil
}

func (theStorage *MemoryStorage) GetNumberOfUsers(ctx context.Context) (int64, error) {
	theStorage.usersMu.RLock()
	defer theStorage.usersMu.RUnlock()

	return int64(len(theStorage.users)), nil
}

func (theStorage *MemoryStorage) InsertURLMapping(ctx context.Context, mapping *models.URLMapping) error {
	theStorage.urlsMu.Lock()
	defer theStorage.urlsMu.Unlock()

	if _, exists := theStorage.urls[mapping.Short]; exists {
		return models.ErrShortKeyExists
	}
	theStorage.urls[mapping.Short] = *mapping

	return nil
}

func (theStorage *MemoryStorage) FindMappingByShort(ctx context.Context, short string) (*models.URLMapping, bool, error) {
	theStorage.urlsMu.RLock()
	defer theStorage.urlsMu.RUnlock()

	mapping, found := theStorage.urls[short]
	if !found {
		return nil, false, nil
	}

	return &mapping, true, nil
}

func (theStorage *MemoryStorage) FindMappingsByUser(ctx context.Context, userID string) ([]models.URLMapping, error) {
	theStorage.urlsMu.RLock()
	defer theStorage.urlsMu.RUnlock()

	var result []models.URLMapping
	for _, mapping := range theStorage.urls {
		if mapping.UserID == userID {
			result = append(result, mapping)
		}
	}

	return result, nil
}

func (theStorage *MemoryStorage) UpdateURLMapping(ctx context.Context, short, full string) error {
	theStorage.urlsMu.Lock()
	defer theStorage.urlsMu.Unlock()

	mapping, found := theStorage.urls[short]
	if !found {
		return models.ErrNotFound
	}

	mapping.Full = full
	theStorage.urls[short] = mapping

	return nil
}

func (theStorage *MemoryStorage) DeleteURLMapping(ctx context.Context, short string) error {
	theStorage.urlsMu.Lock()
	defer theStorage.urlsMu.Unlock()

	if _, found := theStorage.urls[short]; !found {
		return models.ErrNotFound
	}
	delete(theStorage.urls, short)

	return nil
}

func (theStorage *MemoryStorage) RemoveUsersUrls(ctx context.Context, usersURLs map[string][]string) error {
	theStorage.urlsMu.Lock()
	defer theStorage.urlsMu.Unlock()

	for userID, shorts := range usersURLs {
		for _, short := range shorts {
			mapping, found := theStorage.urls[short]
			if !found || mapping.UserID != userID {
				continue
			}
			delete(theStorage.urls, short)
		}
	}

	return nil
}

func (theStorage *MemoryStorage) GetNumberOfShortenedURLs(ctx context.Context) (int64, error) {
	theStorage.urlsMu.RLock()
	defer theStorage.urlsMu.RUnlock()

	return int64(len(theStorage.urls)), nil
}

func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}
