package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction sentido de un movimiento de stock.
type Direction string

// Sentidos de movimiento.
const (
	DirectionIN  Direction = "IN"  // entrada
	DirectionOUT Direction = "OUT" // salida
)

// ParseDirection normaliza el sentido recibido. Acepta "IN"/"OUT" (sin distinguir mayúsculas)
// y los códigos heredados "1" (entrada) y "0" (salida). Cualquier otro valor devuelve ok=false.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "IN", "1":
		return DirectionIN, true
	case "OUT", "0":
		return DirectionOUT, true
	}
	return "", false
}

// Valid indica si el sentido es IN u OUT.
func (d Direction) Valid() bool {
	return d == DirectionIN || d == DirectionOUT
}

// Signed devuelve la cantidad con el signo del sentido (+ entrada, - salida).
func (d Direction) Signed(quantity int64) int64 {
	if d == DirectionOUT {
		return -quantity
	}
	return quantity
}

// Movement es un registro inmutable del ledger. ID y CreatedAt los asigna el servidor.
type Movement struct {
	ID         int64
	EmployeeID int64
	ProductID  int64
	Supplier   string
	Quantity   int64 // siempre positivo; el signo lo da Direction
	Direction  Direction
	CreatedAt  time.Time
}

// MovementView movimiento con los nombres de empleado y producto resueltos, para listados.
type MovementView struct {
	Movement
	EmployeeName string
	ProductName  string
	UnitPrice    decimal.Decimal
	Value        decimal.Decimal // UnitPrice * Quantity
}
