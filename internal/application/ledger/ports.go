package ledger

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Los conflictos y timeouts de la base
// se devuelven envueltos en domain.ErrTransientStorage.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		store repository.QuantityStore,
	) error) error
}

// Metrics recibe los resultados del ledger. pkg/metrics lo implementa con Prometheus.
type Metrics interface {
	MovementRecorded(direction entity.Direction)
	MovementRejected(reason string)
	MovementRetried()
}

type noopMetrics struct{}

func (noopMetrics) MovementRecorded(entity.Direction) {}
func (noopMetrics) MovementRejected(string)           {}
func (noopMetrics) MovementRetried()                  {}
