package entity

import "time"

// StockRecord estado observado de un producto en un almacén (fila por producto+almacén).
// SourceCount es la cantidad disponible para enviar desde el almacén; RecipientCount
// la cantidad reservada/entrante. Ambos reflejan siempre la última observación:
// pueden subir o bajar libremente entre pasadas.
type StockRecord struct {
	ProductID      int64
	WarehouseID    string
	SourceCount    int
	RecipientCount int
	UpdatedAt      time.Time
}
