package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joaosp7/teste-principia-backend/internal/models"
)

// MemoryRepository keeps items in process memory behind a RWMutex. It backs
// the memory storage driver and the unit tests, applying the same filter,
// sort, and pagination semantics as the Postgres repository.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.Item
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]models.Item),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) Ping(context.Context) error {
	return nil
}

func (r *MemoryRepository) InsertItem(_ context.Context, params CreateItemParams) (models.Item, error) {
	status := params.Status
	if status == "" {
		status = models.StatusTodo
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Name == params.Name {
			return models.Item{}, fmt.Errorf("insert item: %w", ErrConflict)
		}
	}

	now := r.now()
	item := models.Item{
		ID:          uuid.NewString(),
		Name:        params.Name,
		Status:      status,
		Description: copyString(params.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.items[item.ID] = item
	return item, nil
}

func (r *MemoryRepository) ListItems(_ context.Context, query ListQuery) ([]models.Item, int, error) {
	r.mu.RLock()
	matched := make([]models.Item, 0, len(r.items))
	needle := strings.ToLower(query.Search)
	for _, item := range r.items {
		if needle != "" && !strings.Contains(strings.ToLower(item.Name), needle) {
			continue
		}
		matched = append(matched, item)
	}
	r.mu.RUnlock()

	sortItems(matched, query.Sort, query.Order)

	total := len(matched)
	start := query.Offset()
	if start >= total {
		return []models.Item{}, total, nil
	}
	end := start + query.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *MemoryRepository) GetItem(_ context.Context, id string) (models.Item, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	return item, ok, nil
}

func (r *MemoryRepository) UpdateItem(_ context.Context, id string, patch ItemPatch) (models.Item, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return models.Item{}, false, nil
	}
	if patch.Status != nil {
		item.Status = *patch.Status
	}
	if patch.Description != nil {
		item.Description = copyString(patch.Description)
	}
	item.UpdatedAt = r.now()
	r.items[id] = item
	return item, true, nil
}

func (r *MemoryRepository) DeleteItem(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *MemoryRepository) Close(context.Context) error {
	return nil
}

func sortItems(items []models.Item, field, order string) {
	descending := strings.EqualFold(order, "DESC")
	sort.SliceStable(items, func(i, j int) bool {
		var less bool
		switch field {
		case "name":
			less = items[i].Name < items[j].Name
		case "updatedAt":
			less = items[i].UpdatedAt.Before(items[j].UpdatedAt)
		default:
			less = items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		if descending {
			return !less && !equalSortKey(items[i], items[j], field)
		}
		return less
	})
}

func equalSortKey(a, b models.Item, field string) bool {
	switch field {
	case "name":
		return a.Name == b.Name
	case "updatedAt":
		return a.UpdatedAt.Equal(b.UpdatedAt)
	default:
		return a.CreatedAt.Equal(b.CreatedAt)
	}
}

func copyString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

var _ Repository = (*MemoryRepository)(nil)
