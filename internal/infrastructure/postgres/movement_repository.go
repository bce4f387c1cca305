package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementViewSelect = `
		SELECT m.id, m.employee_id, m.product_id, m.supplier, m.quantity, m.direction, m.created_at,
		       TRIM(e.first_name || ' ' || e.last_name), p.name, p.unit_price, p.unit_price * m.quantity AS value
		FROM movements m
		JOIN employees e ON e.id = m.employee_id
		JOIN products p ON p.id = m.product_id`

// orderClauses traduce cada orden a SQL fijo; nunca se interpola texto del cliente.
var orderClauses = map[repository.MovementOrder]string{
	repository.MovementOrderNameAsc:   "p.name ASC, m.id ASC",
	repository.MovementOrderNameDesc:  "p.name DESC, m.id DESC",
	repository.MovementOrderValueAsc:  "value ASC, m.id ASC",
	repository.MovementOrderValueDesc: "value DESC, m.id DESC",
	repository.MovementOrderDateAsc:   "m.created_at ASC, m.id ASC",
	repository.MovementOrderDateDesc:  "m.created_at DESC, m.id DESC",
	repository.MovementOrderIDAsc:     "m.id ASC",
	repository.MovementOrderIDDesc:    "m.id DESC",
}

// MovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento. ID y fecha los asigna la base (BIGSERIAL, now()).
func (r *MovementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	query := `
		INSERT INTO movements (employee_id, product_id, supplier, quantity, direction)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		movement.EmployeeID, movement.ProductID, movement.Supplier,
		movement.Quantity, string(movement.Direction),
	).Scan(&movement.ID, &movement.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// List lista movimientos con empleado y producto, en el orden indicado.
func (r *MovementRepo) List(ctx context.Context, order repository.MovementOrder, limit, offset int) ([]*entity.MovementView, error) {
	clause, ok := orderClauses[order]
	if !ok {
		clause = orderClauses[repository.MovementOrderIDDesc]
	}
	query := movementViewSelect + " ORDER BY " + clause + " LIMIT $1 OFFSET $2"
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return scanMovementViews(rows)
}

// Count total de movimientos.
func (r *MovementRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM movements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return n, nil
}

// ListByProduct lista movimientos de un producto, más reciente primero.
func (r *MovementRepo) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]*entity.MovementView, error) {
	query := movementViewSelect + " WHERE m.product_id = $1 ORDER BY m.id DESC LIMIT $2 OFFSET $3"
	rows, err := r.q.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list by product: %w", err)
	}
	return scanMovementViews(rows)
}

// TotalsByProduct suma entradas y salidas del historial de un producto.
func (r *MovementRepo) TotalsByProduct(ctx context.Context, productID int64) (repository.MovementTotals, error) {
	query := `
		SELECT COALESCE(SUM(quantity) FILTER (WHERE direction = 'IN'), 0)::BIGINT,
		       COALESCE(SUM(quantity) FILTER (WHERE direction = 'OUT'), 0)::BIGINT
		FROM movements WHERE product_id = $1`
	var t repository.MovementTotals
	if err := r.q.QueryRow(ctx, query, productID).Scan(&t.In, &t.Out); err != nil {
		return repository.MovementTotals{}, fmt.Errorf("movement totals: %w", err)
	}
	return t, nil
}

func scanMovementViews(rows pgx.Rows) ([]*entity.MovementView, error) {
	defer rows.Close()
	list := make([]*entity.MovementView, 0)
	for rows.Next() {
		var v entity.MovementView
		var direction string
		if err := rows.Scan(&v.ID, &v.EmployeeID, &v.ProductID, &v.Supplier, &v.Quantity, &direction, &v.CreatedAt,
			&v.EmployeeName, &v.ProductName, &v.UnitPrice, &v.Value); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		v.Direction = entity.Direction(direction)
		list = append(list, &v)
	}
	return list, rows.Err()
}
