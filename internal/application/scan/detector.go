package scan

import (
	"time"

	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain/catalog"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain/entity"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain/repository"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/pkg/config"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/pkg/logger"
)

// Detector reconcilia lo observado en una pasada contra el ledger de stock:
// upsert del producto, diff por almacén, regla de significancia por tamaño de
// caja y emisión de eventos de reabastecimiento. El ledger se actualiza antes
// de emitir el evento: preferimos perder una notificación a dejar estado viejo.
type Detector struct {
	products   repository.ProductRepository
	stocks     repository.StockRepository
	warehouses []config.Warehouse
	log        *logger.Logger
}

// NewDetector construye el detector.
func NewDetector(
	products repository.ProductRepository,
	stocks repository.StockRepository,
	warehouses []config.Warehouse,
	log *logger.Logger,
) *Detector {
	return &Detector{
		products:   products,
		stocks:     stocks,
		warehouses: warehouses,
		log:        log,
	}
}

// Process procesa un item del catálogo con los conteos de todos los almacenes
// (mapa por identificador de almacén; ausencia equivale a conteos en cero).
// Devuelve los eventos de reabastecimiento a despachar, en el orden de los
// almacenes configurados. Un fallo de persistencia en un almacén se loguea y
// no interrumpe el resto: cada par producto+almacén se actualiza de forma
// independiente.
func (d *Detector) Process(item CatalogItem, counts map[string]Counts) []RestockEvent {
	existing, err := d.products.GetByExternalID(item.ID)
	if err != nil {
		d.log.Error().Err(err).Int64("product_id", item.ID).Msg("leer producto")
		return nil
	}

	now := time.Now()
	product := &entity.Product{
		ExternalID: item.ID,
		Name:       item.Name,
		Price:      item.Price,
		Link:       item.Link,
		UpdatedAt:  now,
	}
	if existing != nil {
		product.CreatedAt = existing.CreatedAt
	} else {
		product.CreatedAt = now
	}
	// Nombre y precio se refrescan en cada pasada, haya o no cambio de stock.
	if err := d.products.Upsert(product); err != nil {
		d.log.Error().Err(err).Int64("product_id", item.ID).Msg("upsert producto")
		return nil
	}

	isNew := existing == nil
	boxSize, hasBox := catalog.ExtractBoxSize(item.Name)

	var events []RestockEvent
	for _, wh := range d.warehouses {
		c := counts[wh.ID]

		record, err := d.stocks.Get(item.ID, wh.ID)
		if err != nil {
			d.log.Error().Err(err).
				Int64("product_id", item.ID).
				Str("warehouse", wh.ID).
				Msg("leer stock")
			continue
		}

		old := 0
		if record != nil {
			old = record.SourceCount
		}

		// Ledger primero, notificación después.
		if err := d.stocks.Upsert(&entity.StockRecord{
			ProductID:      item.ID,
			WarehouseID:    wh.ID,
			SourceCount:    c.Source,
			RecipientCount: c.Recipient,
			UpdatedAt:      now,
		}); err != nil {
			d.log.Error().Err(err).
				Int64("product_id", item.ID).
				Str("warehouse", wh.ID).
				Msg("upsert stock")
			continue
		}

		// Primer avistamiento del producto o del par producto+almacén:
		// no hay contra qué comparar, no se notifica.
		if isNew || record == nil {
			continue
		}

		if !significant(old, c.Source, boxSize, hasBox) {
			continue
		}

		d.log.Warn().
			Int64("product_id", item.ID).
			Str("warehouse", wh.ID).
			Int("old", old).
			Int("new", c.Source).
			Msg("reabastecimiento detectado")

		events = append(events, RestockEvent{
			ProductID:     item.ID,
			ProductName:   item.Name,
			WarehouseID:   wh.ID,
			WarehouseName: wh.DisplayName,
			PreviousCount: old,
			NewCount:      c.Source,
			BoxSize:       boxSize,
		})
	}

	return events
}

// significant decide si un cambio de sourceCount amerita notificación.
// Los reabastecimientos llegan en incrementos de caja: un aumento que no
// supera una caja se asume ruido de redondeo del upstream.
func significant(old, new int, boxSize int, hasBox bool) bool {
	if new <= old || new <= 0 {
		return false
	}
	if hasBox {
		return new-old > boxSize
	}
	return true
}
