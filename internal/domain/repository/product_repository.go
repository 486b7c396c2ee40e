package repository

import "github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	GetByExternalID(externalID int64) (*entity.Product, error)
	// Upsert crea el producto al primer avistamiento o refresca nombre/precio/link.
	Upsert(product *entity.Product) error
	Count() (int64, error)
}
