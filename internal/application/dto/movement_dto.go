package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest body para POST /api/movements.
// Direction acepta "IN"/"OUT" (o los códigos heredados "1"/"0").
type RecordMovementRequest struct {
	EmployeeID int64  `json:"employee_id"`
	ProductID  int64  `json:"product_id"`
	Supplier   string `json:"supplier"`
	Quantity   int64  `json:"quantity"`
	Direction  string `json:"direction"`
}

// MovementResponse movimiento creado o listado.
type MovementResponse struct {
	ID           int64            `json:"id"`
	EmployeeID   int64            `json:"employee_id"`
	EmployeeName string           `json:"employee_name,omitempty"`
	ProductID    int64            `json:"product_id"`
	ProductName  string           `json:"product_name,omitempty"`
	Supplier     string           `json:"supplier"`
	Quantity     int64            `json:"quantity"`
	Direction    string           `json:"direction"`
	Value        *decimal.Decimal `json:"value,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// RecordMovementResponse resultado de registrar un movimiento.
type RecordMovementResponse struct {
	Movement    MovementResponse `json:"movement"`
	NewQuantity int64            `json:"new_quantity"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items      []MovementResponse `json:"items"`
	Page       int                `json:"page"`
	TotalPages int                `json:"total_pages"`
	Total      int64              `json:"total"`
	Order      string             `json:"order"`
}

// InsufficientStockResponse cuerpo 409 cuando la salida excede el stock.
type InsufficientStockResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Available int64  `json:"available"`
}

// MovementHistoryResponse historial de movimientos de un producto.
type MovementHistoryResponse struct {
	ProductID int64              `json:"product_id"`
	Items     []MovementResponse `json:"items"`
	Page      PageResponse       `json:"page"`
}
