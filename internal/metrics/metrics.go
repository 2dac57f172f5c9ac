// Package metrics exposes game-server counters to Prometheus.
package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus metric descriptors for the game server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry  *prometheus.Registry
	startTime time.Time

	commandsTotal    *prometheus.CounterVec
	commandFailures  *prometheus.CounterVec
	panicsTotal      prometheus.Counter
	persistFailures  *prometheus.CounterVec
	connectionsTotal prometheus.Counter
	playersOnline    prometheus.Gauge
	npcsLive         prometheus.Gauge
	tickDuration     prometheus.Histogram
	uptimeSeconds    prometheus.Gauge
	goroutines       prometheus.Gauge
}

// New creates the metrics on their own registry.
func New(startTime time.Time) *Metrics {
	m := &Metrics{
		registry:  prometheus.NewRegistry(),
		startTime: startTime,
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridworld_commands_total",
			Help: "Commands dispatched, by command name.",
		}, []string{"command"}),
		commandFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridworld_command_failures_total",
			Help: "Rejected commands, by error code.",
		}, []string{"code"}),
		panicsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gridworld_handler_panics_total",
			Help: "Handler panics recovered at the dispatch boundary.",
		}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridworld_persist_failures_total",
			Help: "Failed storage operations, by operation.",
		}, []string{"op"}),
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gridworld_connections_total",
			Help: "Accepted connections since server start.",
		}),
		playersOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridworld_players_online",
			Help: "Players currently in the world.",
		}),
		npcsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridworld_npcs",
			Help: "NPCs currently in the world.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridworld_tick_duration_seconds",
			Help:    "Wall time spent in one game-loop tick.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		uptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridworld_uptime_seconds",
			Help: "Server uptime in seconds.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridworld_goroutines",
			Help: "Number of active goroutines.",
		}),
	}

	m.registry.MustRegister(
		m.commandsTotal,
		m.commandFailures,
		m.panicsTotal,
		m.persistFailures,
		m.connectionsTotal,
		m.playersOnline,
		m.npcsLive,
		m.tickDuration,
		m.uptimeSeconds,
		m.goroutines,
	)
	return m
}

func (m *Metrics) CommandDispatched(name string) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(name).Inc()
}

func (m *Metrics) CommandFailed(code string) {
	if m == nil {
		return
	}
	m.commandFailures.WithLabelValues(code).Inc()
}

func (m *Metrics) PanicRecovered() {
	if m == nil {
		return
	}
	m.panicsTotal.Inc()
}

func (m *Metrics) PersistFailed(op string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) ConnectionAccepted() {
	if m == nil {
		return
	}
	m.connectionsTotal.Inc()
}

// SetPopulation is called once per tick from the game loop.
func (m *Metrics) SetPopulation(players, npcs int) {
	if m == nil {
		return
	}
	m.playersOnline.Set(float64(players))
	m.npcsLive.Set(float64(npcs))
}

func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(d.Seconds())
}

// Handler returns an http.Handler that refreshes process gauges before
// serving the registry.
func (m *Metrics) Handler() http.Handler {
	inner := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.uptimeSeconds.Set(time.Since(m.startTime).Seconds())
		m.goroutines.Set(float64(runtime.NumGoroutine()))
		inner.ServeHTTP(w, r)
	})
}
