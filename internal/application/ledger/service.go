package ledger

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const (
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 50 * time.Millisecond
	pageSize            = 10 // listados paginados de movimientos y productos
	maxPage             = math.MaxInt/pageSize - 1
	defaultRecentLimit  = 5
)

// Options parámetros opcionales del servicio. Los valores cero toman los defaults.
type Options struct {
	MaxAttempts  int           // intentos totales ante ErrTransientStorage
	RetryBackoff time.Duration // espera base entre intentos (lineal); negativo = sin espera
	Logger       zerolog.Logger
	Metrics      Metrics
}

// Service es el servicio de ledger de stock: único dueño de la mutación de Product.Quantity.
// Registra movimientos de forma transaccional con bloqueo de fila (SELECT FOR UPDATE) y
// expone lecturas para la capa de listados.
type Service struct {
	txRunner   TxRunner
	products   repository.ProductRepository
	employees  repository.EmployeeRepository
	quantities repository.QuantityReader
	movements  repository.MovementRepository

	maxAttempts  int
	retryBackoff time.Duration
	log          zerolog.Logger
	metrics      Metrics
}

// NewService construye el servicio. products, quantities y movements son los repositorios
// atados al pool (solo lectura, salvo el alta de productos); las escrituras del ledger pasan por txRunner.
func NewService(
	txRunner TxRunner,
	products repository.ProductRepository,
	employees repository.EmployeeRepository,
	quantities repository.QuantityReader,
	movements repository.MovementRepository,
	opts Options,
) *Service {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBackoff < 0 {
		opts.RetryBackoff = 0
	} else if opts.RetryBackoff == 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}
	if opts.Metrics == nil {
		opts.Metrics = noopMetrics{}
	}
	return &Service{
		txRunner:     txRunner,
		products:     products,
		employees:    employees,
		quantities:   quantities,
		movements:    movements,
		maxAttempts:  opts.MaxAttempts,
		retryBackoff: opts.RetryBackoff,
		log:          opts.Logger.With().Str("component", "ledger").Logger(),
		metrics:      opts.Metrics,
	}
}
