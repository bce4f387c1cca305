package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto con stock 0 y completa su ID.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (name, unit_price, category_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		product.Name, product.UnitPrice, product.CategoryID, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert product: %w", err)
	}
	product.Quantity = 0
	return nil
}

const productSelect = `
		SELECT p.id, p.name, p.unit_price, p.category_id, c.name, p.quantity, p.created_at, p.updated_at
		FROM products p
		JOIN categories c ON c.id = p.category_id`

// productOrderClauses traduce cada orden a SQL fijo.
var productOrderClauses = map[repository.ProductOrder]string{
	repository.ProductOrderNameAsc:  "p.name ASC, p.id ASC",
	repository.ProductOrderNameDesc: "p.name DESC, p.id DESC",
	repository.ProductOrderIDAsc:    "p.id ASC",
	repository.ProductOrderIDDesc:   "p.id DESC",
}

// GetByID obtiene un producto por ID con el nombre de su categoría. Devuelve nil, nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, productSelect+" WHERE p.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update modifica nombre, precio y categoría. La columna quantity no se toca: su valor
// vigente se devuelve en product.Quantity.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, unit_price = $3, category_id = $4, updated_at = now()
		WHERE id = $1
		RETURNING quantity, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		product.ID, product.Name, product.UnitPrice, product.CategoryID,
	).Scan(&product.Quantity, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// List lista productos con su categoría, en el orden indicado.
func (r *ProductRepo) List(ctx context.Context, order repository.ProductOrder, limit, offset int) ([]*entity.Product, error) {
	clause, ok := productOrderClauses[order]
	if !ok {
		clause = productOrderClauses[repository.ProductOrderIDDesc]
	}
	rows, err := r.q.Query(ctx, productSelect+" ORDER BY "+clause+" LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Count total de productos.
func (r *ProductRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.Name, &p.UnitPrice, &p.CategoryID, &p.CategoryName, &p.Quantity,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
