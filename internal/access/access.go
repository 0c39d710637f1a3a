// Package access decides, per request, whether a caller may perform an
// operation on a URL mapping. Decisions are derived fresh from the session
// and the stores; nothing is persisted here.
package access

import (
	"context"

	"github.com/patric-chuzhbe/tinylinks/internal/models"
)

// Session is the per-request resolved caller identity. A zero Session is
// anonymous. How the identity travels (signed cookie, header) is a
// transport concern; by the time a Session exists the token has already
// been verified.
type Session struct {
	UserID string
}

func (s Session) IsAnonymous() bool {
	return s.UserID == ""
}

// Operation enumerates the ownership-gated operations on a single mapping.
type Operation int

const (
	OpRead Operation = iota
	OpUpdate
	OpDelete
)

type mappingFinder interface {
	FindMappingByShort(ctx context.Context, short string) (*models.URLMapping, bool, error)
}

// Controller authorizes mapping operations against the URL store.
type Controller struct {
	db mappingFinder
}

func New(db mappingFinder) *Controller {
	return &Controller{db: db}
}

// Authorize resolves the mapping for short and checks the session against
// it, returning the mapping on success. Denials, in order of precedence:
//
//   - models.ErrNotFound - the mapping does not exist. Checked first so the
//     answer for a nonexistent key never differs from the answer for a key
//     owned by somebody else.
//   - models.ErrNotAuthenticated - the session is anonymous.
//   - models.ErrNotOwner - authenticated, but the mapping belongs to
//     another user.
//
// The operation kind does not change the decision today: read, update and
// delete of a single mapping are all owner-only. It stays in the signature
// so callers state their intent and the table can diverge later.
func (c *Controller) Authorize(
	ctx context.Context,
	session Session,
	short string,
	op Operation,
) (*models.URLMapping, error) {
	mapping, found, err := c.db.FindMappingByShort(ctx, short)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrNotFound
	}

	if session.IsAnonymous() {
		return nil, models.ErrNotAuthenticated
	}

	if mapping.UserID != session.UserID {
		return nil, models.ErrNotOwner
	}

	return mapping, nil
}

// RequireAuthenticated gates operations that need a caller identity but no
// particular mapping: creating mappings and listing one's own.
func (c *Controller) RequireAuthenticated(session Session) error {
	if session.IsAnonymous() {
		return models.ErrNotAuthenticated
	}

	return nil
}
