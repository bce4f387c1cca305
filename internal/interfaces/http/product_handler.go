package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// productService catálogo de productos y lecturas de stock por producto. Lo implementa *ledger.Service.
type productService interface {
	CreateProduct(ctx context.Context, name string, unitPrice decimal.Decimal, categoryID int64) (*entity.Product, error)
	UpdateProduct(ctx context.Context, id int64, in ledger.ProductInput) (*entity.Product, error)
	ListProducts(ctx context.Context, in ledger.ListProductsInput) (*ledger.ProductPage, error)
	GetProduct(ctx context.Context, id int64) (*entity.Product, error)
	GetQuantity(ctx context.Context, productID int64) (int64, error)
	ListProductMovements(ctx context.Context, productID int64, limit, offset int) ([]*entity.MovementView, error)
	Reconcile(ctx context.Context, productID int64) (*ledger.Reconciliation, error)
}

// ProductHandler maneja las peticiones HTTP de productos y su stock (protegido).
type ProductHandler struct {
	svc productService
}

// NewProductHandler construye el handler.
func NewProductHandler(svc productService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// Create godoc
// @Summary      Crear producto (stock inicial 0)
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	p, err := h.svc.CreateProduct(c.Context(), in.Name, in.UnitPrice, in.CategoryID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toProductResponse(p))
}

// Update godoc
// @Summary      Editar nombre, precio y categoría de un producto (el stock no es editable)
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                       true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Datos del producto"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := productIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	p, err := h.svc.UpdateProduct(c.Context(), id, ledger.ProductInput{
		Name:       in.Name,
		UnitPrice:  in.UnitPrice,
		CategoryID: in.CategoryID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toProductResponse(p))
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        page   query  int     false  "Página (base 1)"
// @Param        order  query  string  false  "name_asc|name_desc|id_asc|id_desc"
// @Success      200    {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page, err := h.svc.ListProducts(c.Context(), ledger.ListProductsInput{
		Page:  c.QueryInt("page", 1),
		Order: c.Query("order"),
	})
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.ProductResponse, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, toProductResponse(p))
	}
	return c.JSON(dto.ProductListResponse{
		Items:      items,
		Page:       page.Page,
		TotalPages: page.TotalPages,
		Total:      page.Total,
		Order:      string(page.Order),
	})
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, ok := productIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	p, err := h.svc.GetProduct(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toProductResponse(p))
}

// Quantity godoc
// @Summary      Stock en mano de un producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del producto"
// @Success      200  {object}  dto.QuantityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/quantity [get]
func (h *ProductHandler) Quantity(c *fiber.Ctx) error {
	id, ok := productIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	qty, err := h.svc.GetQuantity(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.QuantityResponse{ProductID: id, Quantity: qty})
}

// Movements godoc
// @Summary      Historial de movimientos de un producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id      path   int  true   "ID del producto"
// @Param        limit   query  int  false  "Límite (por defecto 20, máximo 100)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200     {object}  dto.MovementHistoryResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *ProductHandler) Movements(c *fiber.Ctx) error {
	id, ok := productIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()

	list, err := h.svc.ListProductMovements(c.Context(), id, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementHistoryResponse{
		ProductID: id,
		Items:     toMovementResponses(list),
		Page:      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// Reconcile godoc
// @Summary      Verificar stock contra historial
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/reconcile [get]
func (h *ProductHandler) Reconcile(c *fiber.Ctx) error {
	id, ok := productIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	rec, err := h.svc.Reconcile(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReconciliationResponse{
		ProductID:   rec.ProductID,
		Cached:      rec.Cached,
		TotalIn:     rec.Totals.In,
		TotalOut:    rec.Totals.Out,
		FromHistory: rec.Totals.Net(),
		Consistent:  rec.Consistent,
	})
}

func productIDParam(c *fiber.Ctx) (int64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		UnitPrice:    p.UnitPrice,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Quantity:     p.Quantity,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
