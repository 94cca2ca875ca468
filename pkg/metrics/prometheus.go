package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	queriesTotal *prometheus.CounterVec
	rowsRead     *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	cacheTotal   *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New creates a recorder registered with the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered with reg. Collectors that are
// already registered are reused, so the constructor may run more than once.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	return &Recorder{
		queriesTotal: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdash_queries_total",
				Help: "Total number of queries issued per table",
			},
			[]string{"table"},
		)).(*prometheus.CounterVec),
		rowsRead: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdash_rows_read_total",
				Help: "Total number of rows read per table",
			},
			[]string{"table"},
		)).(*prometheus.CounterVec),
		errorsTotal: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdash_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		)).(*prometheus.CounterVec),
		cacheTotal: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdash_cache_lookups_total",
				Help: "Cache lookups by result (hit, miss, error)",
			},
			[]string{"result"},
		)).(*prometheus.CounterVec),
		latency: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockdash_query_duration_seconds",
				Help:    "Duration of table queries in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"table"},
		)).(*prometheus.HistogramVec),
	}
}

func register(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

// RecordQuery records one query against table.
func (r *Recorder) RecordQuery(table string, rows int, seconds float64) {
	r.queriesTotal.WithLabelValues(table).Inc()
	r.rowsRead.WithLabelValues(table).Add(float64(rows))
	r.latency.WithLabelValues(table).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordCache records a cache lookup outcome.
func (r *Recorder) RecordCache(result string) {
	r.cacheTotal.WithLabelValues(result).Inc()
}
