package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductOrder criterio de orden para el listado de productos.
type ProductOrder string

// Órdenes soportados. ProductOrderIDDesc es el valor por defecto.
const (
	ProductOrderNameAsc  ProductOrder = "name_asc"
	ProductOrderNameDesc ProductOrder = "name_desc"
	ProductOrderIDAsc    ProductOrder = "id_asc"
	ProductOrderIDDesc   ProductOrder = "id_desc"
)

// ParseProductOrder devuelve el orden conocido o ProductOrderIDDesc.
func ParseProductOrder(s string) ProductOrder {
	switch o := ProductOrder(s); o {
	case ProductOrderNameAsc, ProductOrderNameDesc, ProductOrderIDAsc, ProductOrderIDDesc:
		return o
	}
	return ProductOrderIDDesc
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// No expone escritura de Quantity: eso es exclusivo de QuantityStore.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	// Update cambia nombre, precio y categoría. Nunca escribe Quantity; la completa con el valor
	// almacenado. Devuelve domain.ErrNotFound si el producto o la categoría no existen.
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, order ProductOrder, limit, offset int) ([]*entity.Product, error)
	Count(ctx context.Context) (int64, error)
}
