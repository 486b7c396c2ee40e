package catalog

import (
	"regexp"
	"strconv"
)

// El upstream reporta reabastecimientos en incrementos de caja; el tamaño de caja
// viene embebido en el nombre del producto como "N per box", a veces con una
// palabra calificadora entre medio ("24 pcs per box", "12 units per box").
var boxSizeRe = regexp.MustCompile(`(?i)\b(\d+)\s*(?:pcs?\.?\s+|pieces\s+|units?\s+|qty\.?\s+)?per\s+box\b`)

// ExtractBoxSize extrae el tamaño de caja del nombre visible de un producto.
// Devuelve (0, false) si el nombre no lleva la pista de empaque: en ese caso
// no hay umbral de ruido y cualquier incremento positivo es significativo.
func ExtractBoxSize(displayName string) (int, bool) {
	m := boxSizeRe.FindStringSubmatch(displayName)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
