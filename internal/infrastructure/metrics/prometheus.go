// Package metrics expone métricas Prometheus del orquestador de ensambles y de la API HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Ensamble-api/internal/application/assembly"
)

var _ assembly.Metrics = (*Prometheus)(nil)

// Prometheus colectores propios sobre un registry dedicado (no el global).
type Prometheus struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	requests   *prometheus.CounterVec
}

// New registra los colectores. namespace prefija todas las métricas (p. ej. "ensamble").
func New(namespace string) *Prometheus {
	reg := prometheus.NewRegistry()
	p := &Prometheus{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assembly_operations_total",
			Help:      "Operaciones de ensamble por tipo y resultado.",
		}, []string{"operation", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assembly_operation_duration_seconds",
			Help:      "Duración de creación/reversión de ensambles.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Solicitudes HTTP por método, ruta y estado.",
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		p.operations, p.durations, p.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// ObserveCreate registra el resultado de una creación.
func (p *Prometheus) ObserveCreate(outcome string, elapsed time.Duration) {
	p.observe("create", outcome, elapsed)
}

// ObserveReverse registra el resultado de una reversión.
func (p *Prometheus) ObserveReverse(outcome string, elapsed time.Duration) {
	p.observe("reverse", outcome, elapsed)
}

func (p *Prometheus) observe(op, outcome string, elapsed time.Duration) {
	p.operations.WithLabelValues(op, outcome).Inc()
	p.durations.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveRequest cuenta una solicitud HTTP. route es el patrón de la ruta, no la URL concreta.
func (p *Prometheus) ObserveRequest(method, route string, status int) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler devuelve el handler HTTP de exposición (/metrics).
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry expone el registry para tests.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }
