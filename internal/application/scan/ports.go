package scan

import "context"

// CatalogItem un producto tal como lo devuelve el catálogo en una pasada.
// Vive solo mientras se procesa el batch; el estado durable es entity.Product.
type CatalogItem struct {
	ID    int64
	Name  string
	Price int64 // centavos de KZT
	Link  string
}

// Counts cantidades observadas de un producto en un almacén.
type Counts struct {
	Source    int
	Recipient int
}

// RestockEvent evento efímero emitido por el detector cuando un incremento de
// stock supera el umbral de ruido. Se consume una vez y se descarta.
type RestockEvent struct {
	ProductID     int64
	ProductName   string
	WarehouseID   string
	WarehouseName string
	PreviousCount int
	NewCount      int
	BoxSize       int // 0 = desconocido
}

// AvailabilityClient define el puerto hacia el API upstream de GreenLeaf.
// Ambas operaciones degradan errores de red a resultados vacíos: el caller
// nunca maneja errores de este límite. Las listas de conteos vienen alineadas
// posicionalmente con los ids de entrada; una respuesta corta se rellena con
// ceros al mapear (ver countsByID).
type AvailabilityClient interface {
	FetchCatalogBatch(ctx context.Context, ids []int64) []CatalogItem
	FetchAvailability(ctx context.Context, sourceAccountID int, sourceIDs, recipientIDs []int64) (source []int, recipient []int)
}

// Notifier define el puerto de salida hacia el despachador de notificaciones.
type Notifier interface {
	Broadcast(ctx context.Context, event RestockEvent)
}
