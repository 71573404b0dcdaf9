package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "crypto_compare"

// Fetch result label values
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

// -----------------------------------------------------------------------------

// Metrics holds the dashboard collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	FetchTotal     *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
	Assets         prometheus.Gauge
	ComparisonSize prometheus.Gauge
	WSClients      prometheus.Gauge
}

// -----------------------------------------------------------------------------

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Market data refreshes by result",
		}, []string{"result"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of market data fetches in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Assets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "assets",
			Help:      "Assets in the current list",
		}),
		ComparisonSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "comparison_size",
			Help:      "Entries in the comparison set",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "Connected websocket clients",
		}),
	}

	m.Registry.MustRegister(
		m.FetchTotal,
		m.FetchDuration,
		m.Assets,
		m.ComparisonSize,
		m.WSClients,
	)

	// Pre-create the label values so they export as zero
	for _, r := range []string{ResultSuccess, ResultFailure, ResultSkipped} {
		m.FetchTotal.WithLabelValues(r)
	}

	return m
}

// -----------------------------------------------------------------------------

// ObserveFetch records one completed fetch
func (m *Metrics) ObserveFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
	if err != nil {
		m.FetchTotal.WithLabelValues(ResultFailure).Inc()
		return
	}
	m.FetchTotal.WithLabelValues(ResultSuccess).Inc()
}

func (m *Metrics) ObserveSkipped() {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(ResultSkipped).Inc()
}

func (m *Metrics) SetAssets(n int) {
	if m == nil {
		return
	}
	m.Assets.Set(float64(n))
}

func (m *Metrics) SetComparisonSize(n int) {
	if m == nil {
		return
	}
	m.ComparisonSize.Set(float64(n))
}

func (m *Metrics) SetWSClients(n int) {
	if m == nil {
		return
	}
	m.WSClients.Set(float64(n))
}

// -----------------------------------------------------------------------------

// Handler serves the private registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
