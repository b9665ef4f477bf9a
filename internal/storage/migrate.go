package storage

import (
	"context"
	"fmt"
)

// schemaStatements mirror the original items table layout: a server-generated
// UUID primary key, an enumerated status column, a unique name, and
// default-now timestamps.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,
	`DO $$ BEGIN
		CREATE TYPE item_status_enum AS ENUM ('todo', 'doing', 'done');
	EXCEPTION WHEN duplicate_object THEN NULL;
	END $$`,
	`CREATE TABLE IF NOT EXISTS item (
		id uuid NOT NULL DEFAULT uuid_generate_v4(),
		name text NOT NULL,
		status item_status_enum NOT NULL DEFAULT 'todo',
		description text,
		"createdAt" timestamp NOT NULL DEFAULT now(),
		"updatedAt" timestamp DEFAULT now(),
		CONSTRAINT item_name_unique UNIQUE (name),
		CONSTRAINT item_pkey PRIMARY KEY (id)
	)`,
}

// EnsureSchema applies the items schema. Statements are idempotent, so
// running it against an already-migrated database is safe.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// TruncateItemsForTest empties the item table so integration tests can run
// against a clean dataset without duplicating the schema definition.
func (r *PostgresRepository) TruncateItemsForTest(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `TRUNCATE TABLE item`); err != nil {
		return fmt.Errorf("truncate item table: %w", err)
	}
	return nil
}
