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

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación del ledger de stock sobre PostgreSQL.
type StockRepo struct {
	pool *pgxpool.Pool
}

// NewStockRepository construye el adaptador del ledger.
func NewStockRepository(pool *pgxpool.Pool) *StockRepo {
	return &StockRepo{pool: pool}
}

// Get obtiene la fila del ledger de un producto en un almacén.
// Devuelve (nil, nil) si el par todavía no fue observado.
func (r *StockRepo) Get(productID int64, warehouseID string) (*entity.StockRecord, error) {
	query := `
		SELECT product_id, warehouse_id, source_count, recipient_count, updated_at
		FROM product_stock WHERE product_id = $1 AND warehouse_id = $2`
	var s entity.StockRecord
	err := r.pool.QueryRow(context.Background(), query, productID, warehouseID).Scan(
		&s.ProductID, &s.WarehouseID, &s.SourceCount, &s.RecipientCount, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza los conteos observados (por producto y almacén).
func (r *StockRepo) Upsert(record *entity.StockRecord) error {
	query := `
		INSERT INTO product_stock (product_id, warehouse_id, source_count, recipient_count, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET source_count = EXCLUDED.source_count,
		              recipient_count = EXCLUDED.recipient_count, updated_at = now()`
	_, err := r.pool.Exec(context.Background(), query,
		record.ProductID, record.WarehouseID, record.SourceCount, record.RecipientCount,
	)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}
