package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

const namespace = "stock_ledger"

// LedgerMetrics resultados del registro de movimientos. Implementa ledger.Metrics.
type LedgerMetrics struct {
	Recorded *prometheus.CounterVec
	Rejected *prometheus.CounterVec
	Retries  prometheus.Counter
}

// NewLedgerMetrics crea y registra las métricas del ledger en reg.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	m := &LedgerMetrics{
		Recorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "movements_recorded_total",
			Help:      "Movimientos aceptados y confirmados, por sentido.",
		}, []string{"direction"}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "movements_rejected_total",
			Help:      "Movimientos rechazados o fallidos, por motivo.",
		}, []string{"reason"}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "movement_retries_total",
			Help:      "Reintentos por conflicto o timeout transitorio de la base.",
		}),
	}
	reg.MustRegister(m.Recorded, m.Rejected, m.Retries)
	return m
}

func (m *LedgerMetrics) MovementRecorded(direction entity.Direction) {
	m.Recorded.WithLabelValues(string(direction)).Inc()
}

func (m *LedgerMetrics) MovementRejected(reason string) {
	m.Rejected.WithLabelValues(reason).Inc()
}

func (m *LedgerMetrics) MovementRetried() {
	m.Retries.Inc()
}

// HTTPMetrics contador y latencia de peticiones HTTP.
type HTTPMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

// NewHTTPMetrics crea y registra las métricas HTTP en reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total de peticiones HTTP.",
	}, []string{"route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "Latencia de peticiones HTTP en milisegundos.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route"})

	reg.MustRegister(requests, latency)
	return &HTTPMetrics{Requests: requests, LatencyMS: latency}
}

// Handler expone las métricas del gatherer en formato Prometheus.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
