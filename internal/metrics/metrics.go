package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry            *prometheus.Registry
	transactionsCreated *prometheus.CounterVec
	engineDuration      prometheus.Histogram
	coinsInCirculation  prometheus.Gauge
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	return &Collector{
		registry: registry,
		transactionsCreated: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "coin_transactions_created_total",
			Help: "Coin transactions appended to the ledger",
		}, []string{"type", "reason", "status"}),
		engineDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "coin_ledger_engine_duration_seconds",
			Help:    "Time spent inside the ledger engine critical section",
			Buckets: prometheus.DefBuckets,
		}),
		coinsInCirculation: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "coins_in_circulation",
			Help: "Sum of all coin balances across accounts",
		}),
	}
}

func (c *Collector) ObserveTransaction(txType, reason, status string, seconds float64) {
	c.transactionsCreated.WithLabelValues(txType, reason, status).Inc()
	c.engineDuration.Observe(seconds)
}

func (c *Collector) SetCirculation(total int64) {
	c.coinsInCirculation.Set(float64(total))
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
