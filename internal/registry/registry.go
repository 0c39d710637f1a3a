// Package registry implements the URL registry: creation of short keys with
// collision handling, lookups, owner-scoped listing, updates and removal.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/patric-chuzhbe/tinylinks/internal/models"
	"github.com/patric-chuzhbe/tinylinks/internal/shortcode"
)

// TriesToGenerateUniqueKey bounds the regeneration loop on short key
// collisions. With a 62^6 key space against the expected live set a single
// try almost surely suffices; exhausting the budget means the key space or
// this policy needs revision.
const TriesToGenerateUniqueKey = 10

type urlsKeeper interface {
	InsertURLMapping(ctx context.Context, mapping *models.URLMapping) error
	FindMappingByShort(ctx context.Context, short string) (*models.URLMapping, bool, error)
	FindMappingsByUser(ctx context.Context, userID string) ([]models.URLMapping, error)
	UpdateURLMapping(ctx context.Context, short, full string) error
	DeleteURLMapping(ctx context.Context, short string) error
}

// Registry owns short key assignment. Ownership checks are not performed
// here - callers go through the access controller first.
type Registry struct {
	db urlsKeeper
}

func New(db urlsKeeper) *Registry {
	return &Registry{db: db}
}

// Create generates a short key for the given target URL, regenerating on
// collision, and stores the mapping with the caller recorded as its owner.
// Fails with models.ErrShortKeySpaceExhausted when no free key was found
// within TriesToGenerateUniqueKey tries.
func (r *Registry) Create(ctx context.Context, userID, full string) (*models.URLMapping, error) {
	for try := 0; try < TriesToGenerateUniqueKey; try++ {
		short, err := shortcode.Generate()
		if err != nil {
			return nil, fmt.Errorf("generating a short key: %w", err)
		}

		mapping := &models.URLMapping{
			Short:  short,
			Full:   full,
			UserID: userID,
		}
		err = r.db.InsertURLMapping(ctx, mapping)
		if errors.Is(err, models.ErrShortKeyExists) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return mapping, nil
	}

	return nil, models.ErrShortKeySpaceExhausted
}

func (r *Registry) Get(ctx context.Context, short string) (*models.URLMapping, bool, error) {
	return r.db.FindMappingByShort(ctx, short)
}

// ListByOwner returns the mappings created by the given user. The result is
// unordered; an owner without mappings gets an empty result, not an error.
func (r *Registry) ListByOwner(ctx context.Context, userID string) ([]models.URLMapping, error) {
	return r.db.FindMappingsByUser(ctx, userID)
}

// Update replaces the target URL of the mapping. The short key and the
// owner never change.
func (r *Registry) Update(ctx context.Context, short, newFull string) error {
	return r.db.UpdateURLMapping(ctx, short, newFull)
}

func (r *Registry) Delete(ctx context.Context, short string) error {
	return r.db.DeleteURLMapping(ctx, short)
}
