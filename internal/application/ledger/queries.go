package ledger

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// GetQuantity stock en mano actual de un producto (solo lectura).
func (s *Service) GetQuantity(ctx context.Context, productID int64) (int64, error) {
	if productID <= 0 {
		return 0, domain.ErrInvalidInput
	}
	return s.quantities.GetQuantity(ctx, productID)
}

// ListMovementsInput página (base 1) y orden solicitados. Valores inválidos toman los defaults.
type ListMovementsInput struct {
	Page  int
	Order string
}

// MovementPage página de movimientos con totales.
type MovementPage struct {
	Items      []*entity.MovementView
	Page       int
	TotalPages int
	Total      int64
	Order      repository.MovementOrder
}

// ListMovements lista movimientos paginados de a 10, con empleado, producto y valor.
func (s *Service) ListMovements(ctx context.Context, in ListMovementsInput) (*MovementPage, error) {
	page := clampPage(in.Page)
	order := repository.ParseMovementOrder(in.Order)

	total, err := s.movements.Count(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.movements.List(ctx, order, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return &MovementPage{
		Items:      items,
		Page:       page,
		TotalPages: totalPages(total),
		Total:      total,
		Order:      order,
	}, nil
}

// RecentMovements últimos movimientos registrados (dashboard). limit <= 0 usa 5.
func (s *Service) RecentMovements(ctx context.Context, limit int) ([]*entity.MovementView, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.movements.List(ctx, repository.MovementOrderDateDesc, limit, 0)
}

// ListProductMovements historial de un producto, más reciente primero.
func (s *Service) ListProductMovements(ctx context.Context, productID int64, limit, offset int) ([]*entity.MovementView, error) {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.movements.ListByProduct(ctx, productID, limit, offset)
}

// StockSummary totales del dashboard.
type StockSummary struct {
	TotalQuantity int64
	Products      int64
	Employees     int64
}

// StockSummary suma el stock en mano de todos los productos y cuenta los empleados.
func (s *Service) StockSummary(ctx context.Context) (*StockSummary, error) {
	total, products, err := s.quantities.TotalQuantity(ctx)
	if err != nil {
		return nil, err
	}
	employees, err := s.employees.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &StockSummary{TotalQuantity: total, Products: products, Employees: employees}, nil
}

// clampPage lleva la página al rango [1, maxPage] para que el offset nunca desborde.
func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	if page > maxPage {
		return maxPage
	}
	return page
}

func totalPages(total int64) int {
	return int((total + pageSize - 1) / pageSize)
}

// Reconciliation resultado de contrastar el stock cacheado con el historial.
type Reconciliation struct {
	ProductID  int64
	Cached     int64
	Totals     repository.MovementTotals
	Consistent bool
}

// Reconcile verifica que el stock cacheado sea igual a entradas menos salidas. Bloquea la fila
// del producto mientras lee ambos valores, así ningún movimiento concurrente se cuela entre las dos lecturas.
func (s *Service) Reconcile(ctx context.Context, productID int64) (*Reconciliation, error) {
	if productID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	var rec *Reconciliation
	err := s.txRunner.Run(ctx, func(movRepo repository.MovementRepository, store repository.QuantityStore) error {
		cached, err := store.GetQuantityForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		totals, err := movRepo.TotalsByProduct(ctx, productID)
		if err != nil {
			return err
		}
		rec = &Reconciliation{
			ProductID:  productID,
			Cached:     cached,
			Totals:     totals,
			Consistent: cached == totals.Net(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !rec.Consistent {
		s.log.Error().
			Int64("product_id", productID).
			Int64("cached", rec.Cached).
			Int64("from_history", rec.Totals.Net()).
			Msg("stock cacheado no coincide con el historial")
	}
	return rec, nil
}
