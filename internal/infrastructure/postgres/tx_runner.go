package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Cada llamada abre su propia transacción: no hay sesión de base compartida a nivel de proceso.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los errores de conflicto o timeout (en fn, begin o commit) se devuelven envueltos en
// domain.ErrTransientStorage; si el fallo del commit deja el resultado en duda se agrega
// domain.ErrCommitUncertain. El resto se devuelve tal cual.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	store repository.QuantityStore,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return classify(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	movRepo := NewMovementRepository(tx)
	store := NewQuantityStore(tx)

	if err := fn(movRepo, store); err != nil {
		return classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classifyCommit(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// classifyCommit distingue fallos de COMMIT con resultado conocido de los inciertos.
// Un SQLSTATE (p. ej. 40001) o un error previo al envío (SafeToRetry) garantizan que nada se
// aplicó. Un timeout o un corte de conexión tras enviar el COMMIT no: el servidor pudo haber
// confirmado y repetir la operación registraría el movimiento dos veces.
func classifyCommit(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) || pgconn.SafeToRetry(err) || !isTransient(err) {
		return classify(err)
	}
	return fmt.Errorf("%w: %w: %w", domain.ErrTransientStorage, domain.ErrCommitUncertain, err)
}

func classify(err error) error {
	if isTransient(err) {
		return fmt.Errorf("%w: %w", domain.ErrTransientStorage, err)
	}
	return err
}
