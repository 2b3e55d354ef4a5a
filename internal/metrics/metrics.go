package metrics

import (
	"net/http"
	"time"

	"sheetpos/pos/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sheetpos"

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics records POS health signals on its own registry. A nil *Metrics
// is a valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	fetchAttempts   *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	catalogLoads    *prometheus.CounterVec
	catalogProducts prometheus.Gauge
	catalogRejected prometheus.Gauge
	cartOperations  *prometheus.CounterVec
	checkouts       prometheus.Counter
	salesTotal      prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Catalog download attempts by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of catalog download attempts.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"strategy"}),
		catalogLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_loads_total",
			Help:      "Catalog imports by result kind.",
		}, []string{"result"}),
		catalogProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_products",
			Help:      "Products in the current catalog.",
		}),
		catalogRejected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_rejected_rows",
			Help:      "Rows rejected by the last successful import.",
		}),
		cartOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Cart mutations by operation and result kind.",
		}, []string{"operation", "result"}),
		checkouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Completed checkouts.",
		}),
		salesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_amount_total",
			Help:      "Sum of receipt grand totals.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.fetchAttempts,
		m.fetchDuration,
		m.catalogLoads,
		m.catalogProducts,
		m.catalogRejected,
		m.cartOperations,
		m.checkouts,
		m.salesTotal,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) FetchAttempt(strategy, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.fetchAttempts.WithLabelValues(strategy, outcome).Inc()
	m.fetchDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

func (m *Metrics) CatalogLoaded(products, rejected int) {
	if m == nil {
		return
	}
	m.catalogLoads.WithLabelValues(OutcomeSuccess).Inc()
	m.catalogProducts.Set(float64(products))
	m.catalogRejected.Set(float64(rejected))
}

func (m *Metrics) CatalogLoadFailed(err error) {
	if m == nil {
		return
	}
	m.catalogLoads.WithLabelValues(resultLabel(err)).Inc()
}

func (m *Metrics) CartOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.cartOperations.WithLabelValues(operation, resultLabel(err)).Inc()
}

func (m *Metrics) Checkout(total float64) {
	if m == nil {
		return
	}
	m.checkouts.Inc()
	m.salesTotal.Add(total)
}

func resultLabel(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	if kind := domain.KindOf(err); kind != "" {
		return kind.String()
	}
	return OutcomeError
}
