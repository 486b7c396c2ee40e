package repository

import "github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain/entity"

// StockRepository define el puerto del ledger de stock por producto+almacén.
// Get devuelve (nil, nil) cuando la fila no existe todavía: el detector
// trata la ausencia como "primer avistamiento" en ese almacén.
type StockRepository interface {
	Get(productID int64, warehouseID string) (*entity.StockRecord, error)
	Upsert(record *entity.StockRecord) error
}
