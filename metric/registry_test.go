package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r.Core)
	require.NotNil(t, r.PrometheusRegistry())
	require.NotNil(t, r.Handler())
}

func TestMetrics_Record(t *testing.T) {
	r := NewRegistry()

	r.Core.SignalsCreated.WithLabelValues("sensory").Inc()
	r.Core.SignalsRouted.WithLabelValues("sensory", "substrate:comprehension").Inc()
	r.Core.RoutePassThrough.WithLabelValues("memory", "no_socket").Inc()
	r.Core.SocketsConnected.Set(2)
	r.Core.EngineStatus.Set(1)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(r.Core.SignalsCreated.WithLabelValues("sensory")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(r.Core.SignalsRouted.WithLabelValues("sensory", "substrate:comprehension")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(r.Core.RoutePassThrough.WithLabelValues("memory", "no_socket")))
	assert.Equal(t, float64(2), testutil.ToFloat64(r.Core.SocketsConnected))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.Core.EngineStatus))
}

func TestNewRegistry_IsolatedRegistries(t *testing.T) {
	// Two registries must not collide: each owns its own prometheus.Registry
	a := NewRegistry()
	b := NewRegistry()

	a.Core.TextProcessed.Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(a.Core.TextProcessed))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.Core.TextProcessed))
}
