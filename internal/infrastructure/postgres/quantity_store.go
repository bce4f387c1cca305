package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.QuantityStore = (*QuantityStore)(nil)

// QuantityStore stock en mano de products.quantity (usable con pool o tx).
// Con pool se expone solo como repository.QuantityReader; las escrituras llegan atadas a la tx del TxRunner.
type QuantityStore struct {
	q Querier
}

// NewQuantityStore construye el adaptador. Pasar pool o tx (Querier).
func NewQuantityStore(q Querier) *QuantityStore {
	return &QuantityStore{q: q}
}

// GetQuantity obtiene el stock actual sin bloquear.
func (s *QuantityStore) GetQuantity(ctx context.Context, productID int64) (int64, error) {
	var qty int64
	err := s.q.QueryRow(ctx, `SELECT quantity FROM products WHERE id = $1`, productID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get quantity: %w", err)
	}
	return qty, nil
}

// GetQuantityForUpdate obtiene el stock y bloquea la fila del producto (SELECT FOR UPDATE).
// Dos movimientos sobre el mismo producto quedan serializados; productos distintos no se bloquean entre sí.
func (s *QuantityStore) GetQuantityForUpdate(ctx context.Context, productID int64) (int64, error) {
	var qty int64
	err := s.q.QueryRow(ctx, `SELECT quantity FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get quantity for update: %w", err)
	}
	return qty, nil
}

// SetQuantity fija el stock del producto. La columna tiene CHECK (quantity >= 0).
func (s *QuantityStore) SetQuantity(ctx context.Context, productID, quantity int64) error {
	if quantity < 0 {
		return domain.ErrInvalidInput
	}
	cmd, err := s.q.Exec(ctx,
		`UPDATE products SET quantity = $2, updated_at = now() WHERE id = $1`,
		productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("set quantity: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TotalQuantity suma de stock y cantidad de productos.
func (s *QuantityStore) TotalQuantity(ctx context.Context) (int64, int64, error) {
	var total, products int64
	err := s.q.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0)::BIGINT, COUNT(*) FROM products`).Scan(&total, &products)
	if err != nil {
		return 0, 0, fmt.Errorf("total quantity: %w", err)
	}
	return total, products, nil
}
