// Package metrics agrupa los colectores Prometheus del servicio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics colectores registrados en un registry propio (evita choques entre tests).
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Listado de catálogo por modo (json/html) y estado del sobre
	ListingsTotal *prometheus.CounterVec

	// Altas, cambios y bajas por entidad
	MutationsTotal *prometheus.CounterVec

	// Tiempo real
	LiveEventsTotal  *prometheus.CounterVec
	LiveDroppedTotal *prometheus.CounterVec
	LiveSubscribers  prometheus.Gauge

	registry *prometheus.Registry
}

// New crea y registra los colectores bajo el namespace dado.
func New(namespace string) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ListingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_listings_total",
			Help:      "Catalog listings served, by response mode and envelope status",
		}, []string{"mode", "status"}),
		MutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Catalog and cart mutations, by entity, operation and outcome",
		}, []string{"entity", "op", "outcome"}),
		LiveEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_events_total",
			Help:      "Live events published to connected browsers",
		}, []string{"event"}),
		LiveDroppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_dropped_total",
			Help:      "Live deliveries dropped because a subscriber buffer was full",
		}, []string{"topic"}),
		LiveSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_subscribers",
			Help:      "Browsers currently connected to the live stream",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ListingsTotal,
		m.MutationsTotal,
		m.LiveEventsTotal,
		m.LiveDroppedTotal,
		m.LiveSubscribers,
	)
	return m
}

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry para tests y para registrar colectores adicionales.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware mide cada petición usando la ruta registrada (no la URL cruda).
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveListing cuenta un listado servido.
func (m *Metrics) ObserveListing(mode, status string) {
	if m == nil {
		return
	}
	m.ListingsTotal.WithLabelValues(mode, status).Inc()
}

// ObserveMutation cuenta una operación de escritura.
func (m *Metrics) ObserveMutation(entity, op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.MutationsTotal.WithLabelValues(entity, op, outcome).Inc()
}

// ObserveLiveEvent cuenta un evento emitido en tiempo real.
func (m *Metrics) ObserveLiveEvent(event string) {
	if m == nil {
		return
	}
	m.LiveEventsTotal.WithLabelValues(event).Inc()
}

// ObserveLiveDrop cuenta una entrega descartada.
func (m *Metrics) ObserveLiveDrop(topic string) {
	if m == nil {
		return
	}
	m.LiveDroppedTotal.WithLabelValues(topic).Inc()
}

// LiveConnected ajusta el gauge de navegadores conectados (+1 / -1).
func (m *Metrics) LiveConnected(delta int) {
	if m == nil {
		return
	}
	m.LiveSubscribers.Add(float64(delta))
}
