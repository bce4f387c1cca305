package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrDuplicateRequest  = errors.New("solicitud duplicada")
	// ErrTransientStorage indica conflicto o timeout de la base de datos; la operación completa
	// puede reintentarse.
	ErrTransientStorage = errors.New("error transitorio de almacenamiento")
	// ErrCommitUncertain acompaña a ErrTransientStorage cuando el COMMIT se cortó por timeout o
	// conexión: la transacción pudo haberse aplicado. No se reintenta automáticamente.
	ErrCommitUncertain = errors.New("resultado del commit desconocido")
)

// InsufficientStockError rechazo de negocio de una salida: lleva la cantidad disponible
// para que el llamador pueda volver a pedir el dato. errors.Is(err, ErrInsufficientStock) es true.
type InsufficientStockError struct {
	ProductID int64
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %d: solicitado %d, disponible %d",
		e.ProductID, e.Requested, e.Available)
}

// Is permite comparar con ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
