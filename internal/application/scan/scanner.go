package scan

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/pkg/config"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/pkg/logger"
)

// Scanner recorre el catálogo completo en batches de ids de tamaño fijo y
// alimenta el detector con los conteos de disponibilidad de cada almacén.
// A lo sumo un escaneo en vuelo: una segunda invocación mientras otro corre
// devuelve domain.ErrScanInProgress sin hacer nada.
type Scanner struct {
	client     AvailabilityClient
	detector   *Detector
	notifier   Notifier
	warehouses []config.Warehouse
	batchSize  int
	log        *logger.Logger

	running atomic.Bool

	mu         sync.Mutex
	lastScanAt time.Time
}

// NewScanner construye el escáner del catálogo.
func NewScanner(
	client AvailabilityClient,
	detector *Detector,
	notifier Notifier,
	warehouses []config.Warehouse,
	cfg config.ScanConfig,
	log *logger.Logger,
) *Scanner {
	return &Scanner{
		client:     client,
		detector:   detector,
		notifier:   notifier,
		warehouses: warehouses,
		batchSize:  cfg.BatchSize,
		log:        log,
	}
}

// Running indica si hay un escaneo en curso.
func (s *Scanner) Running() bool {
	return s.running.Load()
}

// LastScanAt devuelve el instante de fin del último escaneo completado
// (cero si todavía no corrió ninguno).
func (s *Scanner) LastScanAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScanAt
}

// Run ejecuta una pasada completa del catálogo: ventanas de ids
// [offset, offset+batchSize) desde cero, avanzando siempre el offset en
// batchSize. El único criterio de terminación es un batch vacío; un error
// upstream degrada a batch vacío y por tanto también termina la pasada.
func (s *Scanner) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return domain.ErrScanInProgress
	}
	defer s.running.Store(false)

	scanID := uuid.New().String()
	log := s.log.With().Str("scan_id", scanID).Logger()

	log.Info().Msg("iniciando actualización de productos")
	offset := int64(0)

	for {
		ids := idWindow(offset, s.batchSize)

		items := s.client.FetchCatalogBatch(ctx, ids)
		if len(items) == 0 {
			log.Info().Int64("offset", offset).Msg("fin de la lista de productos")
			break
		}

		itemIDs := make([]int64, 0, len(items))
		for _, it := range items {
			itemIDs = append(itemIDs, it.ID)
		}

		// Una consulta por almacén, en paralelo: son lecturas independientes.
		// El diff por item necesita los conteos de todos los almacenes a la vez,
		// así que se recolecta todo antes de procesar.
		byWarehouse := s.fetchAllWarehouses(ctx, itemIDs)

		for _, item := range items {
			counts := make(map[string]Counts, len(s.warehouses))
			for _, wh := range s.warehouses {
				counts[wh.ID] = byWarehouse[wh.ID][item.ID]
			}
			for _, event := range s.detector.Process(item, counts) {
				s.notifier.Broadcast(ctx, event)
			}
		}

		offset += int64(s.batchSize)
		log.Info().Int64("offset", offset).Msg("batch procesado")
	}

	s.mu.Lock()
	s.lastScanAt = time.Now()
	s.mu.Unlock()

	log.Info().Msg("actualización de productos completada")
	return nil
}

// fetchAllWarehouses consulta la disponibilidad de todos los almacenes en
// paralelo y devuelve, por almacén, los conteos mapeados por id de producto.
func (s *Scanner) fetchAllWarehouses(ctx context.Context, itemIDs []int64) map[string]map[int64]Counts {
	results := make([]map[int64]Counts, len(s.warehouses))

	var wg sync.WaitGroup
	for i, wh := range s.warehouses {
		wg.Add(1)
		go func(i int, wh config.Warehouse) {
			defer wg.Done()
			source, recipient := s.client.FetchAvailability(ctx, wh.SourceAccountID, itemIDs, itemIDs)
			results[i] = countsByID(itemIDs, source, recipient)
		}(i, wh)
	}
	wg.Wait()

	byWarehouse := make(map[string]map[int64]Counts, len(s.warehouses))
	for i, wh := range s.warehouses {
		byWarehouse[wh.ID] = results[i]
	}
	return byWarehouse
}

// countsByID alinea las listas de conteos con los ids de entrada por posición.
// Una lista más corta que los ids se rellena con ceros en la cola.
func countsByID(ids []int64, source, recipient []int) map[int64]Counts {
	out := make(map[int64]Counts, len(ids))
	for i, id := range ids {
		var c Counts
		if i < len(source) {
			c.Source = source[i]
		}
		if i < len(recipient) {
			c.Recipient = recipient[i]
		}
		out[id] = c
	}
	return out
}

// idWindow genera el rango semiabierto de ids [offset, offset+size).
func idWindow(offset int64, size int) []int64 {
	ids := make([]int64, size)
	for i := range ids {
		ids[i] = offset + int64(i)
	}
	return ids
}
