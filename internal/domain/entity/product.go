package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario.
// Quantity es el stock en mano cacheado; solo lo modifica el servicio de ledger a través de movimientos.
type Product struct {
	ID           int64
	Name         string
	UnitPrice    decimal.Decimal
	CategoryID   int64
	CategoryName string // solo en lecturas (join con categories)
	Quantity     int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
