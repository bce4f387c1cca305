package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router. Idempotency es opcional (nil = sin control de duplicados).
type RouterDeps struct {
	Movements   movementService
	Products    productService
	Idempotency idempotencyStore
	JWTSecret   string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	readers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleConsulta)

	// Movimientos
	movementHandler := NewMovementHandler(deps.Movements)
	movements := api.Group("/movements")
	record := []fiber.Handler{writers}
	if deps.Idempotency != nil {
		record = append(record, Idempotency(deps.Idempotency))
	}
	record = append(record, movementHandler.Record)
	movements.Post("/", record...)
	movements.Get("/", readers, movementHandler.List)
	movements.Get("/recent", readers, movementHandler.Recent)

	api.Get("/stock/summary", readers, movementHandler.Summary)

	// Productos
	productHandler := NewProductHandler(deps.Products)
	products := api.Group("/products")
	products.Post("/", RequireRole(jwt.RoleAdmin), productHandler.Create)
	products.Get("/", readers, productHandler.List)
	products.Put("/:id", RequireRole(jwt.RoleAdmin), productHandler.Update)
	products.Get("/:id", readers, productHandler.GetByID)
	products.Get("/:id/quantity", readers, productHandler.Quantity)
	products.Get("/:id/movements", readers, productHandler.Movements)
	products.Get("/:id/reconcile", RequireRole(jwt.RoleAdmin), productHandler.Reconcile)
}
