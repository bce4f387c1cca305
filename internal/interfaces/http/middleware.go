package http

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/pkg/metrics"
)

const (
	HeaderRequestID      = "X-Request-ID"
	HeaderIdempotencyKey = "Idempotency-Key"
	LocalRequestID       = "request_id"

	localKeepIdempotencyKey = "keep_idempotency_key"
)

// RequestID propaga X-Request-ID o genera uno nuevo (UUID v4).
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalRequestID, id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

// RequestLogger registra cada petición (método, ruta, estado, latencia) y alimenta las métricas HTTP.
// m puede ser nil.
func RequestLogger(log zerolog.Logger, m *metrics.HTTPMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}
		elapsed := time.Since(start)
		route := c.Route().Path

		if m != nil {
			m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
			m.LatencyMS.WithLabelValues(route).Observe(float64(elapsed.Microseconds()) / 1000)
		}

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error().Err(err)
		}
		rid, _ := c.Locals(LocalRequestID).(string)
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", elapsed).
			Str("request_id", rid).
			Msg("http")
		return err
	}
}

// idempotencyStore contrato mínimo para reservar claves. Lo implementa *redis.IdempotencyStore.
type idempotencyStore interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Idempotency rechaza con 409 DUPLICATE_REQUEST una segunda petición con la misma Idempotency-Key
// (por usuario). Si la petición no tuvo efecto (respuesta no 2xx) la clave se libera para permitir el reintento;
// si el resultado quedó en duda (commit incierto) la clave se conserva.
// Sin cabecera, la petición pasa sin control. Debe usarse DESPUÉS de AuthMiddleware.
func Idempotency(store idempotencyStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if key == "" {
			return c.Next()
		}
		key = GetUserID(c) + ":" + key

		ok, err := store.Acquire(c.Context(), key)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "IDEMPOTENCY_UNAVAILABLE",
				Message: "no se pudo verificar la clave de idempotencia, intente más tarde",
			})
		}
		if !ok {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Code:    "DUPLICATE_REQUEST",
				Message: "la solicitud con esta Idempotency-Key ya fue procesada",
			})
		}

		err = c.Next()
		keep, _ := c.Locals(localKeepIdempotencyKey).(bool)
		if status := c.Response().StatusCode(); !keep && (err != nil || status < 200 || status >= 300) {
			_ = store.Release(c.Context(), key)
		}
		return err
	}
}
