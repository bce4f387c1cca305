package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// movementService operaciones del ledger que usa el handler. Lo implementa *ledger.Service.
type movementService interface {
	RecordMovementFromRequest(ctx context.Context, in dto.RecordMovementRequest) (*ledger.MovementResult, error)
	ListMovements(ctx context.Context, in ledger.ListMovementsInput) (*ledger.MovementPage, error)
	RecentMovements(ctx context.Context, limit int) ([]*entity.MovementView, error)
	StockSummary(ctx context.Context) (*ledger.StockSummary, error)
}

// MovementHandler maneja las peticiones HTTP de movimientos de stock (protegido).
type MovementHandler struct {
	svc movementService
}

// NewMovementHandler construye el handler.
func NewMovementHandler(svc movementService) *MovementHandler {
	return &MovementHandler{svc: svc}
}

// Record godoc
// @Summary      Registrar movimiento de stock
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave para evitar registros duplicados"
// @Param        body  body  dto.RecordMovementRequest  true  "employee_id, product_id, supplier, quantity, direction (IN/OUT)"
// @Success      201   {object}  dto.RecordMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.svc.RecordMovementFromRequest(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RecordMovementResponse{
		Movement:    toMovementResponse(&entity.MovementView{Movement: res.Movement}),
		NewQuantity: res.NewQuantity,
	})
}

// List godoc
// @Summary      Listar movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        page   query  int     false  "Página (base 1)"
// @Param        order  query  string  false  "name_asc|name_desc|value_asc|value_desc|date_asc|date_desc|id_asc|id_desc"
// @Success      200    {object}  dto.MovementListResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	page, err := h.svc.ListMovements(c.Context(), ledger.ListMovementsInput{
		Page:  c.QueryInt("page", 1),
		Order: c.Query("order"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementListResponse{
		Items:      toMovementResponses(page.Items),
		Page:       page.Page,
		TotalPages: page.TotalPages,
		Total:      page.Total,
		Order:      string(page.Order),
	})
}

// Recent godoc
// @Summary      Movimientos recientes (dashboard)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Cantidad (por defecto 5, máximo 50)"
// @Success      200    {array}  dto.MovementResponse
// @Router       /api/movements/recent [get]
func (h *MovementHandler) Recent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit > 50 {
		limit = 50
	}
	list, err := h.svc.RecentMovements(c.Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementResponses(list))
}

// Summary godoc
// @Summary      Totales de stock y empleados
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockSummaryResponse
// @Router       /api/stock/summary [get]
func (h *MovementHandler) Summary(c *fiber.Ctx) error {
	s, err := h.svc.StockSummary(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockSummaryResponse{TotalQuantity: s.TotalQuantity, Products: s.Products, Employees: s.Employees})
}

func toMovementResponse(v *entity.MovementView) dto.MovementResponse {
	out := dto.MovementResponse{
		ID:           v.ID,
		EmployeeID:   v.EmployeeID,
		EmployeeName: v.EmployeeName,
		ProductID:    v.ProductID,
		ProductName:  v.ProductName,
		Supplier:     v.Supplier,
		Quantity:     v.Quantity,
		Direction:    string(v.Direction),
		CreatedAt:    v.CreatedAt,
	}
	if v.ProductName != "" {
		value := v.Value
		out.Value = &value
	}
	return out
}

func toMovementResponses(list []*entity.MovementView) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, v := range list {
		out = append(out, toMovementResponse(v))
	}
	return out
}
