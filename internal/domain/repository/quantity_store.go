package repository

import "context"

// QuantityReader acceso de solo lectura al stock en mano (listados, pantallas).
type QuantityReader interface {
	// GetQuantity devuelve domain.ErrNotFound si el producto no existe.
	GetQuantity(ctx context.Context, productID int64) (int64, error)
	// TotalQuantity suma del stock de todos los productos y cantidad de productos.
	TotalQuantity(ctx context.Context) (total int64, products int64, err error)
}

// QuantityStore única superficie de mutación del stock en mano.
// Solo debe obtenerse atada a una transacción (TxRunner), junto con el insert del movimiento.
type QuantityStore interface {
	QuantityReader
	// GetQuantityForUpdate lee y bloquea la fila del producto hasta el fin de la transacción.
	GetQuantityForUpdate(ctx context.Context, productID int64) (int64, error)
	SetQuantity(ctx context.Context, productID, quantity int64) error
}
