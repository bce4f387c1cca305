package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. El stock siempre inicia en 0.
type CreateProductRequest struct {
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CategoryID int64           `json:"category_id"`
}

// UpdateProductRequest body para PUT /api/products/:id. No incluye stock: solo cambia vía movimientos.
type UpdateProductRequest struct {
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CategoryID int64           `json:"category_id"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
	Quantity     int64           `json:"quantity"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items      []ProductResponse `json:"items"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	Total      int64             `json:"total"`
	Order      string            `json:"order"`
}

// QuantityResponse stock en mano de un producto.
type QuantityResponse struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// ReconciliationResponse comparación entre el stock cacheado y el historial de movimientos.
type ReconciliationResponse struct {
	ProductID   int64 `json:"product_id"`
	Cached      int64 `json:"cached"`
	TotalIn     int64 `json:"total_in"`
	TotalOut    int64 `json:"total_out"`
	FromHistory int64 `json:"from_history"`
	Consistent  bool  `json:"consistent"`
}

// StockSummaryResponse totales para el dashboard.
type StockSummaryResponse struct {
	TotalQuantity int64 `json:"total_quantity"`
	Products      int64 `json:"products"`
	Employees     int64 `json:"employees"`
}
