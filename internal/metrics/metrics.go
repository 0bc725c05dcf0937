package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	CommandsTotal    *prometheus.CounterVec
	CommandDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	ReactionRunsTotal *prometheus.CounterVec

	BatchesTotal         *prometheus.CounterVec
	BatchScenariosTotal  prometheus.Counter
	BatchDurationSeconds prometheus.Histogram

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	RateLimitHitsTotal *prometheus.CounterVec

	ActiveReactorsTotal prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		CommandsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reactor_bot_commands_total",
				Help: "Total number of bot commands processed",
			},
			[]string{"command", "status"},
		),
		CommandDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reactor_bot_command_duration_seconds",
				Help:    "Command handling duration in seconds",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"command"},
		),
		RequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "reactor_bot_requests_in_flight",
				Help: "Number of updates currently being processed",
			},
		),

		ReactionRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reactor_bot_reaction_runs_total",
				Help: "Total number of reaction runs by output mode",
			},
			[]string{"mode"},
		),

		BatchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reactor_bot_batches_total",
				Help: "Total number of scenario batches by status",
			},
			[]string{"status"},
		),
		BatchScenariosTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reactor_bot_batch_scenarios_total",
				Help: "Total number of scenarios evaluated in batches",
			},
		),
		BatchDurationSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reactor_bot_batch_duration_seconds",
				Help:    "Batch evaluation duration in seconds",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2},
			},
		),

		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reactor_bot_cache_hits_total",
				Help: "Total number of batch cache hits",
			},
		),
		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reactor_bot_cache_misses_total",
				Help: "Total number of batch cache misses",
			},
		),

		RateLimitHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reactor_bot_rate_limit_hits_total",
				Help: "Total number of rate limit hits",
			},
			[]string{"user_id"},
		),

		ActiveReactorsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "reactor_bot_active_reactors",
				Help: "Number of reactor instances currently registered",
			},
		),
	}

	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordCommand(command, status string, duration time.Duration) {
	m.CommandsTotal.WithLabelValues(command, status).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

func (m *Metrics) RecordReactionRun(mode string) {
	m.ReactionRunsTotal.WithLabelValues(mode).Inc()
}

func (m *Metrics) RecordBatch(status string, scenarios int, duration time.Duration) {
	m.BatchesTotal.WithLabelValues(status).Inc()
	m.BatchScenariosTotal.Add(float64(scenarios))
	m.BatchDurationSeconds.Observe(duration.Seconds())
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) RecordRateLimitHit(userID string) {
	m.RateLimitHitsTotal.WithLabelValues(userID).Inc()
}

func (m *Metrics) SetActiveReactors(count float64) {
	m.ActiveReactorsTotal.Set(count)
}

func (m *Metrics) IncRequestsInFlight() {
	m.RequestsInFlight.Inc()
}

func (m *Metrics) DecRequestsInFlight() {
	m.RequestsInFlight.Dec()
}
