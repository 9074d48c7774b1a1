// Package metrics exposes Prometheus collectors for aggregation runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ppiankov/newsdesk/internal/source"
)

const namespace = "newsdesk"

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics records query and run outcomes. It satisfies aggregate.Recorder.
type Metrics struct {
	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	itemsFetched  prometheus.Counter
	runs          prometheus.Counter
	poolItems     prometheus.Gauge
	runFailures   prometheus.Gauge
	lastRun       prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Keyword queries by outcome and failure kind.",
		}, []string{"outcome", "kind"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Wall time of a single keyword query.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"outcome"}),
		itemsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_fetched_total",
			Help:      "Items returned by successful queries.",
		}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed aggregation runs.",
		}),
		poolItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_items",
			Help:      "Items in the pool of the most recent run.",
		}),
		runFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_failed_queries",
			Help:      "Failed queries in the most recent run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the most recent run completed.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.queries, m.queryDuration, m.itemsFetched, m.runs, m.poolItems, m.runFailures, m.lastRun,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveQuery records one keyword query. A nil err is a success.
func (m *Metrics) ObserveQuery(err error, items int, d time.Duration) {
	if err != nil {
		m.queries.WithLabelValues(outcomeFailure, source.KindOf(err).String()).Inc()
		m.queryDuration.WithLabelValues(outcomeFailure).Observe(d.Seconds())
		return
	}
	m.queries.WithLabelValues(outcomeSuccess, "").Inc()
	m.queryDuration.WithLabelValues(outcomeSuccess).Observe(d.Seconds())
	m.itemsFetched.Add(float64(items))
}

// ObserveRun records a completed run.
func (m *Metrics) ObserveRun(poolSize, failures int, _ time.Duration) {
	m.runs.Inc()
	m.poolItems.Set(float64(poolSize))
	m.runFailures.Set(float64(failures))
	m.lastRun.SetToCurrentTime()
}

// WriteTextfile writes everything gathered by g to path in the text
// exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
