package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// MovementInput entrada para registrar un movimiento de stock.
type MovementInput struct {
	EmployeeID int64
	ProductID  int64
	Supplier   string
	Quantity   int64
	Direction  entity.Direction
}

// MovementResult movimiento creado y stock resultante.
type MovementResult struct {
	Movement         entity.Movement
	PreviousQuantity int64
	NewQuantity      int64
}

func (in *MovementInput) validate() error {
	in.Supplier = strings.TrimSpace(in.Supplier)
	if in.EmployeeID <= 0 || in.ProductID <= 0 {
		return domain.ErrInvalidInput
	}
	if in.Quantity <= 0 || in.Supplier == "" || !in.Direction.Valid() {
		return domain.ErrInvalidInput
	}
	return nil
}

// RecordMovementFromRequest adapta el request HTTP al caso de uso RecordMovement.
// Un sentido desconocido es ErrInvalidInput; nunca se asume un sentido por defecto.
func (s *Service) RecordMovementFromRequest(ctx context.Context, in dto.RecordMovementRequest) (*MovementResult, error) {
	direction, ok := entity.ParseDirection(in.Direction)
	if !ok {
		s.metrics.MovementRejected("invalid_input")
		return nil, domain.ErrInvalidInput
	}
	return s.RecordMovement(ctx, MovementInput{
		EmployeeID: in.EmployeeID,
		ProductID:  in.ProductID,
		Supplier:   in.Supplier,
		Quantity:   in.Quantity,
		Direction:  direction,
	})
}

// RecordMovement valida y aplica un movimiento: dentro de una transacción bloquea la fila del
// producto (SELECT FOR UPDATE), calcula el stock resultante, rechaza salidas que lo dejarían
// negativo y guarda movimiento y nuevo stock juntos. Ante ErrTransientStorage reintenta la
// operación completa (releyendo el stock) hasta MaxAttempts veces, salvo que el commit haya
// quedado en duda (domain.ErrCommitUncertain).
func (s *Service) RecordMovement(ctx context.Context, in MovementInput) (*MovementResult, error) {
	if err := in.validate(); err != nil {
		s.metrics.MovementRejected("invalid_input")
		return nil, err
	}

	exists, err := s.employees.Exists(ctx, in.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("verificar empleado: %w", err)
	}
	if !exists {
		s.metrics.MovementRejected("not_found")
		return nil, domain.ErrNotFound
	}

	var result *MovementResult
	for attempt := 1; ; attempt++ {
		result, err = s.apply(ctx, in)
		if err == nil || !retryable(err) || attempt >= s.maxAttempts {
			break
		}
		s.metrics.MovementRetried()
		s.log.Warn().Err(err).
			Int64("product_id", in.ProductID).
			Int("attempt", attempt).
			Msg("conflicto transitorio, reintentando movimiento")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", domain.ErrTransientStorage, ctx.Err())
		case <-time.After(s.retryBackoff * time.Duration(attempt)):
		}
	}

	if err != nil {
		s.reportFailure(in, err)
		return nil, err
	}

	s.metrics.MovementRecorded(in.Direction)
	s.log.Info().
		Int64("movement_id", result.Movement.ID).
		Int64("product_id", in.ProductID).
		Int64("employee_id", in.EmployeeID).
		Str("direction", string(in.Direction)).
		Int64("quantity", in.Quantity).
		Int64("new_quantity", result.NewQuantity).
		Msg("movimiento registrado")
	return result, nil
}

// apply es un intento único: todo o nada dentro de la transacción.
func (s *Service) apply(ctx context.Context, in MovementInput) (*MovementResult, error) {
	var result *MovementResult
	err := s.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		store repository.QuantityStore,
	) error {
		q0, err := store.GetQuantityForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		q1 := q0 + in.Direction.Signed(in.Quantity)
		if in.Direction == entity.DirectionOUT && q1 < 0 {
			return &domain.InsufficientStockError{
				ProductID: in.ProductID,
				Requested: in.Quantity,
				Available: q0,
			}
		}
		if in.Direction == entity.DirectionIN && q1 < q0 {
			// desbordamiento de int64
			return domain.ErrInvalidInput
		}

		mov := &entity.Movement{
			EmployeeID: in.EmployeeID,
			ProductID:  in.ProductID,
			Supplier:   in.Supplier,
			Quantity:   in.Quantity,
			Direction:  in.Direction,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		if err := store.SetQuantity(ctx, in.ProductID, q1); err != nil {
			return err
		}
		result = &MovementResult{Movement: *mov, PreviousQuantity: q0, NewQuantity: q1}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// retryable indica si repetir la operación completa es seguro: conflicto o timeout transitorio
// cuyo commit no quedó en duda.
func retryable(err error) bool {
	return errors.Is(err, domain.ErrTransientStorage) && !errors.Is(err, domain.ErrCommitUncertain)
}

func (s *Service) reportFailure(in MovementInput, err error) {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		s.metrics.MovementRejected("insufficient_stock")
		s.log.Info().
			Int64("product_id", in.ProductID).
			Int64("requested", insufficient.Requested).
			Int64("available", insufficient.Available).
			Msg("salida rechazada por stock insuficiente")
	case errors.Is(err, domain.ErrNotFound):
		s.metrics.MovementRejected("not_found")
	case errors.Is(err, domain.ErrInvalidInput):
		s.metrics.MovementRejected("invalid_input")
	case errors.Is(err, domain.ErrCommitUncertain):
		s.metrics.MovementRejected("commit_uncertain")
		s.log.Error().Err(err).Int64("product_id", in.ProductID).Msg("commit con resultado incierto; no se reintenta")
	case errors.Is(err, domain.ErrTransientStorage):
		s.metrics.MovementRejected("transient")
		s.log.Error().Err(err).Int64("product_id", in.ProductID).Msg("movimiento abortado tras reintentos")
	default:
		s.metrics.MovementRejected("internal")
		s.log.Error().Err(err).Int64("product_id", in.ProductID).Msg("registrar movimiento")
	}
}
