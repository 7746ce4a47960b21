package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	runTotal      *prometheus.CounterVec
	phaseDuration *prometheus.HistogramVec
	runsInFlight  prometheus.Gauge
	queueLag      *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	runTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docpipeline",
			Subsystem: "worker",
			Name:      "pipeline_run_total",
			Help:      "Total pipeline runs by outcome.",
		},
		[]string{"service", "outcome"},
	)
	phaseDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docpipeline",
			Subsystem: "worker",
			Name:      "pipeline_phase_duration_seconds",
			Help:      "Pipeline run duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "outcome"},
	)
	runsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docpipeline",
			Subsystem: "worker",
			Name:      "pipeline_runs_in_flight",
			Help:      "Number of pipeline runs currently executing.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docpipeline",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between upload and pipeline start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(runTotal, phaseDuration, runsInFlight, queueLag)

	return &WorkerMetrics{
		registry:      registry,
		runTotal:      runTotal,
		phaseDuration: phaseDuration,
		runsInFlight:  runsInFlight,
		queueLag:      queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartRun() {
	m.runsInFlight.Inc()
}

func (m *WorkerMetrics) FinishRun(service, outcome string, duration time.Duration, err error) {
	m.runsInFlight.Dec()

	if err != nil {
		outcome = "error"
	}
	if outcome == "" {
		outcome = "unknown"
	}

	m.runTotal.WithLabelValues(service, outcome).Inc()
	m.phaseDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
