package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain/entity"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
}

// NewProductRepository construye el adaptador de productos.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

// GetByExternalID obtiene un producto por su id del catálogo upstream.
// Devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByExternalID(externalID int64) (*entity.Product, error) {
	query := `
		SELECT external_id, name, price, link, created_at, updated_at
		FROM products WHERE external_id = $1`
	var p entity.Product
	err := r.pool.QueryRow(context.Background(), query, externalID).Scan(
		&p.ExternalID, &p.Name, &p.Price, &p.Link, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Upsert inserta el producto al primer avistamiento o refresca nombre, precio y link.
func (r *ProductRepo) Upsert(product *entity.Product) error {
	query := `
		INSERT INTO products (external_id, name, price, link, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (external_id)
		DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price,
		              link = EXCLUDED.link, updated_at = now()`
	_, err := r.pool.Exec(context.Background(), query,
		product.ExternalID, product.Name, product.Price, product.Link,
	)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// Count devuelve el total de productos rastreados.
func (r *ProductRepo) Count() (int64, error) {
	var n int64
	err := r.pool.QueryRow(context.Background(), `SELECT count(*) FROM products`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
