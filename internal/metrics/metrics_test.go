// internal/metrics/metrics_test.go
package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_DeliveryObserver(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveAttempt("http_status", 20*time.Millisecond)
	m.ObserveAttempt("ok", 30*time.Millisecond)
	m.ObserveOutcome("delivered")

	require.Equal(t, 1.0, testutil.ToFloat64(m.DeliveryAttempts.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.DeliveryAttempts.WithLabelValues("http_status")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.DeliveryOutcomes.WithLabelValues("delivered")))
}

func TestMetrics_StateIsOneHot(t *testing.T) {
	m := New(prometheus.NewRegistry())
	all := []string{"connecting", "streaming", "faulted"}

	m.SetState("connecting", all)
	m.SetState("streaming", all)

	require.Equal(t, 0.0, testutil.ToFloat64(m.LoopState.WithLabelValues("connecting")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.LoopState.WithLabelValues("streaming")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.LoopState.WithLabelValues("faulted")))
}

func TestMetrics_LastReading(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Reading(23.5, 65.2)

	require.Equal(t, 23.5, testutil.ToFloat64(m.Temperature))
	require.Equal(t, 65.2, testutil.ToFloat64(m.Humidity))
}
