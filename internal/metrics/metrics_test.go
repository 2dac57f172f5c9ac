package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New(time.Now())
	m.CommandDispatched("aim")
	m.CommandDispatched("aim")
	m.CommandFailed("validation")
	m.PanicRecovered()
	m.PersistFailed("save")
	m.SetPopulation(3, 7)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.commandsTotal.WithLabelValues("aim")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commandFailures.WithLabelValues("validation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.panicsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistFailures.WithLabelValues("save")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.playersOnline))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.npcsLive))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CommandDispatched("x")
		m.CommandFailed("x")
		m.PanicRecovered()
		m.PersistFailed("x")
		m.ConnectionAccepted()
		m.SetPopulation(1, 1)
		m.ObserveTick(time.Millisecond)
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New(time.Now())
	m.ObserveTick(2 * time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "gridworld_tick_duration_seconds_count 1")
	assert.Contains(t, string(body), "gridworld_uptime_seconds")
}
