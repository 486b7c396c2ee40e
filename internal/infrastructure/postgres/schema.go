package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema crea las tablas si no existen. El esquema es chico y estable;
// no hay tooling de migraciones, un cambio incompatible requiere intervención manual.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
			external_id BIGINT PRIMARY KEY,
			name        TEXT NOT NULL,
			price       BIGINT NOT NULL DEFAULT 0,
			link        TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS product_stock (
			product_id      BIGINT NOT NULL REFERENCES products (external_id) ON DELETE CASCADE,
			warehouse_id    TEXT NOT NULL,
			source_count    INT NOT NULL DEFAULT 0,
			recipient_count INT NOT NULL DEFAULT 0,
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (product_id, warehouse_id)
		)`,
		`CREATE TABLE IF NOT EXISTS subscribers (
			chat_id    BIGINT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
