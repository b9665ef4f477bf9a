package items

import (
	"context"
	"log/slog"

	"github.com/joaosp7/teste-principia-backend/internal/models"
	"github.com/joaosp7/teste-principia-backend/internal/storage"
)

// Service enforces the existence-checked mutation policy on top of the item
// store. Create and list pass straight through; get, update, and delete
// confirm the row exists before touching it.
type Service struct {
	store  storage.Repository
	logger *slog.Logger
}

func NewService(store storage.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Create persists a new item. Name uniqueness is enforced by the store.
func (s *Service) Create(ctx context.Context, params storage.CreateItemParams) (models.Item, error) {
	return s.store.InsertItem(ctx, params)
}

// List executes the normalized query and computes pagination metadata. An
// empty result set is not a failure.
func (s *Service) List(ctx context.Context, query storage.ListQuery) ([]models.Item, PageMetadata, error) {
	rows, total, err := s.store.ListItems(ctx, query)
	if err != nil {
		return nil, PageMetadata{}, err
	}
	return rows, NewPageMetadata(query, total), nil
}

// Get returns the item or a NotFoundError carrying the requested id.
func (s *Service) Get(ctx context.Context, id string) (models.Item, error) {
	item, ok, err := s.store.GetItem(ctx, id)
	if err != nil {
		return models.Item{}, err
	}
	if !ok {
		s.logger.Info("item lookup missed", "item_id", id)
		return models.Item{}, &NotFoundError{ID: id}
	}
	return item, nil
}

// Update applies the patch only after confirming the item exists. The
// existence check and the write are separate round trips; a concurrent delete
// between them surfaces as NotFoundError from the write's own row check.
func (s *Service) Update(ctx context.Context, id string, patch storage.ItemPatch) (models.Item, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return models.Item{}, err
	}
	item, ok, err := s.store.UpdateItem(ctx, id, patch)
	if err != nil {
		return models.Item{}, err
	}
	if !ok {
		return models.Item{}, &NotFoundError{ID: id}
	}
	return item, nil
}

// Delete removes the item after confirming it exists. The store-level delete
// itself is idempotent.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteItem(ctx, id)
}
