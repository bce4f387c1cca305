package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementOrder criterio de orden para listados de movimientos.
type MovementOrder string

// Órdenes soportados. MovementOrderIDDesc es el valor por defecto.
const (
	MovementOrderNameAsc   MovementOrder = "name_asc"
	MovementOrderNameDesc  MovementOrder = "name_desc"
	MovementOrderValueAsc  MovementOrder = "value_asc"
	MovementOrderValueDesc MovementOrder = "value_desc"
	MovementOrderDateAsc   MovementOrder = "date_asc"
	MovementOrderDateDesc  MovementOrder = "date_desc"
	MovementOrderIDAsc     MovementOrder = "id_asc"
	MovementOrderIDDesc    MovementOrder = "id_desc"
)

// ParseMovementOrder devuelve el orden conocido o MovementOrderIDDesc.
func ParseMovementOrder(s string) MovementOrder {
	switch o := MovementOrder(s); o {
	case MovementOrderNameAsc, MovementOrderNameDesc, MovementOrderValueAsc, MovementOrderValueDesc,
		MovementOrderDateAsc, MovementOrderDateDesc, MovementOrderIDAsc, MovementOrderIDDesc:
		return o
	}
	return MovementOrderIDDesc
}

// MovementTotals sumas del historial de un producto.
type MovementTotals struct {
	In  int64
	Out int64
}

// Net entradas menos salidas.
func (t MovementTotals) Net() int64 { return t.In - t.Out }

// MovementRepository define el puerto de persistencia para movimientos. No hay update ni delete:
// los movimientos son inmutables.
type MovementRepository interface {
	// Create inserta el movimiento y completa ID y CreatedAt asignados por la base.
	Create(ctx context.Context, movement *entity.Movement) error
	List(ctx context.Context, order MovementOrder, limit, offset int) ([]*entity.MovementView, error)
	Count(ctx context.Context) (int64, error)
	ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]*entity.MovementView, error)
	TotalsByProduct(ctx context.Context, productID int64) (MovementTotals, error)
}
