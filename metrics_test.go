package accessmiddleware

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_PrometheusMetrics(t *testing.T) {
	t.Run("IncCounter registers lazily and counts per tag set", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewPrometheusMetricsWithRegisterer(registry)

		metrics.IncCounter("access_auth_decisions_total", map[string]string{"result": "allowed", "reason": ""})
		metrics.IncCounter("access_auth_decisions_total", map[string]string{"result": "allowed", "reason": ""})
		metrics.IncCounter("access_auth_decisions_total", map[string]string{"result": "denied", "reason": "expired"})

		count, err := testutil.GatherAndCount(registry, "access_auth_decisions_total")
		require.NoError(t, err)
		assert.Equal(t, 2, count, "one series per tag combination")
	})

	t.Run("ObserveHistogram and SetGauge register their collectors", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewPrometheusMetricsWithRegisterer(registry)

		metrics.ObserveHistogram("access_check_duration_seconds", 0.01, map[string]string{"result": "allowed"})
		metrics.SetGauge("access_keyset_keys", 3, map[string]string{"domain": testTeamDomain})

		families, err := registry.Gather()
		require.NoError(t, err)
		assert.Len(t, families, 2)
	})
}

func Test_NoopMetrics(t *testing.T) {
	metrics := &NoopMetrics{}
	metrics.IncCounter("x", nil)
	metrics.ObserveHistogram("x", 1, nil)
	metrics.SetGauge("x", 1, nil)
}
