package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joaosp7/teste-principia-backend/internal/models"
)

const itemColumns = `id, name, status, description, "createdAt", "updatedAt"`

// sortColumns whitelists the identifiers that may be interpolated into an
// ORDER BY clause. Everything else is rejected before reaching the backend.
var sortColumns = map[string]string{
	"createdAt": `"createdAt"`,
	"updatedAt": `"updatedAt"`,
	"name":      "name",
}

// PostgresRepository persists items in a Postgres table accessed through a
// shared pgx connection pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
	cfg  PostgresConfig
}

// NewPostgresRepository opens a Postgres-backed repository. Schema migrations
// are applied separately via EnsureSchema.
func NewPostgresRepository(dsn string, opts ...Option) (*PostgresRepository, error) {
	cfg := newPostgresConfig(dsn, opts...)
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres dsn required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = cfg.MaxConnections
	}
	if cfg.MinConnections > 0 {
		poolCfg.MinConns = cfg.MinConnections
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.HealthCheckInterval > 0 {
		poolCfg.HealthCheckPeriod = cfg.HealthCheckInterval
	}
	if cfg.AcquireTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.AcquireTimeout
	}
	if cfg.ApplicationName != "" {
		if poolCfg.ConnConfig.RuntimeParams == nil {
			poolCfg.ConnConfig.RuntimeParams = make(map[string]string)
		}
		poolCfg.ConnConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	return &PostgresRepository{pool: pool, cfg: cfg}, nil
}

// Ping issues a trivial query to confirm the backend is reachable.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return &StoreError{Op: "ping", Err: err}
	}
	return nil
}

func (r *PostgresRepository) InsertItem(ctx context.Context, params CreateItemParams) (models.Item, error) {
	status := params.Status
	if status == "" {
		status = models.StatusTodo
	}
	row := r.pool.QueryRow(ctx, `
INSERT INTO item (name, status, description)
VALUES ($1, $2, $3)
RETURNING `+itemColumns, params.Name, status, params.Description)
	item, err := scanItem(row)
	if err != nil {
		return models.Item{}, translateError("insert item", err)
	}
	return item, nil
}

func (r *PostgresRepository) ListItems(ctx context.Context, query ListQuery) ([]models.Item, int, error) {
	sortColumn, ok := sortColumns[query.Sort]
	if !ok {
		return nil, 0, &StoreError{Op: "list items", Err: fmt.Errorf("unsupported sort field %q", query.Sort)}
	}
	direction := strings.ToUpper(query.Order)
	if direction != "ASC" && direction != "DESC" {
		return nil, 0, &StoreError{Op: "list items", Err: fmt.Errorf("unsupported sort order %q", query.Order)}
	}

	var (
		where string
		args  []any
	)
	if query.Search != "" {
		where = ` WHERE name ILIKE '%' || $1 || '%'`
		args = append(args, query.Search)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM item`+where, args...).Scan(&total); err != nil {
		return nil, 0, translateError("count items", err)
	}

	stmt := fmt.Sprintf(`SELECT %s FROM item%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		itemColumns, where, sortColumn, direction, len(args)+1, len(args)+2)
	args = append(args, query.Limit, query.Offset())

	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, translateError("list items", err)
	}
	defer rows.Close()

	items := make([]models.Item, 0, query.Limit)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, translateError("scan item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translateError("list items", err)
	}
	return items, total, nil
}

func (r *PostgresRepository) GetItem(ctx context.Context, id string) (models.Item, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM item WHERE id = $1`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Item{}, false, nil
		}
		return models.Item{}, false, translateError("get item", err)
	}
	return item, true, nil
}

func (r *PostgresRepository) UpdateItem(ctx context.Context, id string, patch ItemPatch) (models.Item, bool, error) {
	set := []string{`"updatedAt" = now()`}
	args := []any{id}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		set = append(set, fmt.Sprintf("status = $%d", len(args)))
	}
	if patch.Description != nil {
		args = append(args, *patch.Description)
		set = append(set, fmt.Sprintf("description = $%d", len(args)))
	}

	stmt := fmt.Sprintf(`UPDATE item SET %s WHERE id = $1 RETURNING %s`, strings.Join(set, ", "), itemColumns)
	row := r.pool.QueryRow(ctx, stmt, args...)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Item{}, false, nil
		}
		return models.Item{}, false, translateError("update item", err)
	}
	return item, true, nil
}

func (r *PostgresRepository) DeleteItem(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM item WHERE id = $1`, id); err != nil {
		return translateError("delete item", err)
	}
	return nil
}

// Close releases the connection pool, bounded by the provided context.
func (r *PostgresRepository) Close(ctx context.Context) error {
	if r == nil || r.pool == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		r.pool.Close()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func scanItem(row pgx.Row) (models.Item, error) {
	var (
		item      models.Item
		updatedAt *time.Time
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Status, &item.Description, &item.CreatedAt, &updatedAt); err != nil {
		return models.Item{}, err
	}
	if updatedAt != nil {
		item.UpdatedAt = *updatedAt
	} else {
		item.UpdatedAt = item.CreatedAt
	}
	return item, nil
}

var _ Repository = (*PostgresRepository)(nil)
