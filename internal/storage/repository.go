// Package storage translates between entity shapes and the relational
// backend. It owns persistence of item records exclusively; callers hold no
// cached copies between requests.
package storage

import (
	"context"

	"github.com/joaosp7/teste-principia-backend/internal/models"
)

// ListQuery is the canonical, bounded query descriptor produced by the API
// boundary. Page and Limit are always positive, Sort and Order always hold
// one of their whitelisted values, and an empty Search means "no filter".
type ListQuery struct {
	Page   int
	Limit  int
	Search string
	Sort   string
	Order  string
}

// Offset returns the row offset of the requested page window.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// CreateItemParams carries the validated fields for a new item. The store
// assigns id and timestamps.
type CreateItemParams struct {
	Name        string
	Status      models.Status
	Description *string
}

// ItemPatch carries a partial update. Nil fields are left untouched; the
// store refreshes updatedAt on every successful update regardless.
type ItemPatch struct {
	Status      *models.Status
	Description *string
}

// Repository exposes the datastore operations required by the items service.
// Point-lookup absence is a normal outcome reported via the boolean return,
// not an error.
type Repository interface {
	Ping(ctx context.Context) error

	// InsertItem persists a new record and returns it with server-generated
	// id and timestamps. A name collision yields an error wrapping
	// ErrConflict.
	InsertItem(ctx context.Context, params CreateItemParams) (models.Item, error)

	// ListItems executes a filtered, sorted, offset-paginated scan and
	// returns the page rows together with the count of all rows matching the
	// filter ignoring the page window.
	ListItems(ctx context.Context, query ListQuery) ([]models.Item, int, error)

	// GetItem returns the record, or ok=false when no row matches.
	GetItem(ctx context.Context, id string) (models.Item, bool, error)

	// UpdateItem applies the patch and refreshes updatedAt, returning the
	// post-update record or ok=false when the row no longer exists.
	UpdateItem(ctx context.Context, id string, patch ItemPatch) (models.Item, bool, error)

	// DeleteItem removes the row if present. Deleting a non-existent id is
	// not an error.
	DeleteItem(ctx context.Context, id string) error

	Close(ctx context.Context) error
}
