package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    RenderLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "stockdash",
            Subsystem: "view",
            Name:      "render_seconds",
            Help:      "Latency of view renders by view and output format",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"view", "format"},
    )

    RenderErrors = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "stockdash",
            Subsystem: "view",
            Name:      "errors_total",
            Help:      "Failed view renders by view and status code",
        },
        []string{"view", "status"},
    )

    ChartsThrottled = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "stockdash",
            Subsystem: "chart",
            Name:      "throttled_total",
            Help:      "Chart requests rejected by the rate limiter",
        },
    )
)

func Register() {
    once.Do(func() {
        prometheus.MustRegister(RenderLatency, RenderErrors, ChartsThrottled)
    })
}
