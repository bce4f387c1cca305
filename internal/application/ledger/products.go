package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ProductInput datos editables de un producto. El stock no es editable: solo cambia vía movimientos.
type ProductInput struct {
	Name       string
	UnitPrice  decimal.Decimal
	CategoryID int64
}

func (in *ProductInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.UnitPrice.IsNegative() || in.CategoryID <= 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

// CreateProduct da de alta un producto con stock 0.
func (s *Service) CreateProduct(ctx context.Context, name string, unitPrice decimal.Decimal, categoryID int64) (*entity.Product, error) {
	in := ProductInput{Name: name, UnitPrice: unitPrice, CategoryID: categoryID}
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	p := &entity.Product{
		Name:       in.Name,
		UnitPrice:  in.UnitPrice,
		CategoryID: in.CategoryID,
		Quantity:   0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct cambia nombre, precio y categoría. El nuevo precio afecta el valor mostrado
// de los movimientos ya registrados (valor = precio vigente x cantidad).
func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*entity.Product, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &entity.Product{
		ID:         id,
		Name:       in.Name,
		UnitPrice:  in.UnitPrice,
		CategoryID: in.CategoryID,
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().
		Int64("product_id", id).
		Str("unit_price", in.UnitPrice.String()).
		Int64("category_id", in.CategoryID).
		Msg("producto actualizado")
	return p, nil
}

// GetProduct obtiene un producto; ErrNotFound si no existe.
func (s *Service) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// ListProductsInput página (base 1) y orden solicitados.
type ListProductsInput struct {
	Page  int
	Order string
}

// ProductPage página de productos con totales.
type ProductPage struct {
	Items      []*entity.Product
	Page       int
	TotalPages int
	Total      int64
	Order      repository.ProductOrder
}

// ListProducts lista productos paginados de a 10 con el nombre de su categoría.
func (s *Service) ListProducts(ctx context.Context, in ListProductsInput) (*ProductPage, error) {
	page := clampPage(in.Page)
	order := repository.ParseProductOrder(in.Order)

	total, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.products.List(ctx, order, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return &ProductPage{
		Items:      items,
		Page:       page,
		TotalPages: totalPages(total),
		Total:      total,
		Order:      order,
	}, nil
}
