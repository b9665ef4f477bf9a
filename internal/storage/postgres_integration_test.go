//go:build postgres

package storage_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/joaosp7/teste-principia-backend/internal/models"
	"github.com/joaosp7/teste-principia-backend/internal/storage"
)

// openPostgresRepository connects to the database named by
// ITEMS_TEST_POSTGRES_DSN, applies the schema, and clears the item table so
// each test starts from an empty dataset.
func openPostgresRepository(t *testing.T) *storage.PostgresRepository {
	t.Helper()
	dsn := os.Getenv("ITEMS_TEST_POSTGRES_DSN")
	if strings.TrimSpace(dsn) == "" {
		t.Skip("ITEMS_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	repo, err := storage.NewPostgresRepository(dsn, storage.WithApplicationName("items-test"))
	if err != nil {
		t.Fatalf("open postgres repository: %v", err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := repo.TruncateItemsForTest(ctx); err != nil {
		t.Fatalf("truncate item table: %v", err)
	}

	t.Cleanup(func() {
		if err := repo.Close(context.Background()); err != nil {
			t.Fatalf("close repository: %v", err)
		}
	})
	return repo
}

func TestPostgresItemLifecycle(t *testing.T) {
	repo := openPostgresRepository(t)
	ctx := context.Background()

	description := "lifecycle"
	created, err := repo.InsertItem(ctx, storage.CreateItemParams{Name: "Task A", Description: &description})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if created.ID == "" || created.Status != models.StatusTodo {
		t.Fatalf("unexpected created row: %+v", created)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("expected database timestamps, got %+v", created)
	}

	fetched, ok, err := repo.GetItem(ctx, created.ID)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if fetched.Name != "Task A" {
		t.Fatalf("unexpected fetched row: %+v", fetched)
	}

	status := models.StatusDone
	updated, ok, err := repo.UpdateItem(ctx, created.ID, storage.ItemPatch{Status: &status})
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}
	if updated.Status != models.StatusDone {
		t.Fatalf("expected status done, got %s", updated.Status)
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Fatalf("updatedAt regressed: %+v", updated)
	}

	if err := repo.DeleteItem(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteItem(ctx, created.ID); err != nil {
		t.Fatalf("second delete must not fail: %v", err)
	}
	if _, ok, err := repo.GetItem(ctx, created.ID); err != nil || ok {
		t.Fatalf("expected a clean miss after delete: ok=%v err=%v", ok, err)
	}
}

func TestPostgresDuplicateNameConflicts(t *testing.T) {
	repo := openPostgresRepository(t)
	ctx := context.Background()

	if _, err := repo.InsertItem(ctx, storage.CreateItemParams{Name: "Task A"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err := repo.InsertItem(ctx, storage.CreateItemParams{Name: "Task A"})
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestPostgresListFilterSortPaginate(t *testing.T) {
	repo := openPostgresRepository(t)
	ctx := context.Background()

	for _, name := range []string{"alpha task", "beta task", "Alan's chore"} {
		if _, err := repo.InsertItem(ctx, storage.CreateItemParams{Name: name}); err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
	}

	query := storage.ListQuery{Page: 1, Limit: 10, Search: "AL", Sort: "name", Order: "ASC"}
	rows, total, err := repo.ListItems(ctx, query)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("expected 2 ILIKE matches, got total=%d rows=%d", total, len(rows))
	}
	if rows[0].Name != "Alan's chore" || rows[1].Name != "alpha task" {
		t.Fatalf("unexpected ascending order: %s, %s", rows[0].Name, rows[1].Name)
	}

	query = storage.ListQuery{Page: 2, Limit: 2, Sort: "name", Order: "ASC"}
	rows, total, err = repo.ListItems(ctx, query)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if total != 3 || len(rows) != 1 {
		t.Fatalf("expected the trailing row on page 2, got total=%d rows=%d", total, len(rows))
	}
}
