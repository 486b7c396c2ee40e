package entity

import "time"

// Product representa un producto del catálogo GreenLeaf rastreado de forma durable.
// ExternalID es el identificador estable del upstream; Price está en centavos de KZT.
// Se crea al primer avistamiento y se actualiza (precio, nombre) en cada pasada;
// este núcleo nunca lo borra.
type Product struct {
	ExternalID int64
	Name       string
	Price      int64
	Link       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
