package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_RecordQuery(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordQuery("top10_volatility", 10, 0.01)
	r.RecordQuery("top10_volatility", 10, 0.02)
	r.RecordError("query")
	r.RecordCache("hit")

	assert.Equal(t, float64(2), testutil.ToFloat64(r.queriesTotal.WithLabelValues("top10_volatility")))
	assert.Equal(t, float64(20), testutil.ToFloat64(r.rowsRead.WithLabelValues("top10_volatility")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.errorsTotal.WithLabelValues("query")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.cacheTotal.WithLabelValues("hit")))
}

func TestNewWithRegistry_Twice(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewWithRegistry(reg)
	b := NewWithRegistry(reg)

	a.RecordError("x")
	assert.Equal(t, float64(1), testutil.ToFloat64(b.errorsTotal.WithLabelValues("x")))
}
