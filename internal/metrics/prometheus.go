package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Pipeline metrics
	TriageRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asclepius_triage_requests_total",
			Help: "Total number of triage requests",
		},
		[]string{"status"}, // status: success|validation_error|classifier_error|council_error|synthesis_error
	)

	TriageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "asclepius_triage_duration_seconds",
			Help:    "End-to-end triage duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"stage"}, // stage: classification|council|synthesis|total
	)

	// Verdict metrics
	Verdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asclepius_verdicts_total",
			Help: "Total verdicts by final risk level",
		},
		[]string{"risk_level", "consensus"},
	)

	RiskAdjustments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asclepius_risk_adjustments_total",
			Help: "Verdicts where the council adjusted the model's risk level",
		},
		[]string{"from", "to"},
	)

	SafetyAlerts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asclepius_safety_alerts_total",
			Help: "Safety alerts emitted on verdicts",
		},
		[]string{"severity", "specialty"},
	)

	// Council metrics
	OpinionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asclepius_opinion_failures_total",
			Help: "Specialist producers dropped from the council",
		},
		[]string{"specialty"},
	)

	CouncilSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asclepius_council_size",
			Help:    "Opinions surviving the fan-out per patient",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	// System metrics
	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asclepius_kafka_messages_total",
			Help: "Total Kafka messages produced",
		},
		[]string{"topic", "status"}, // status: success|error
	)

	ActiveStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "asclepius_active_streams",
			Help: "Currently open triage event streams",
		},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(TriageRequests)
	prometheus.MustRegister(TriageDuration)
	prometheus.MustRegister(Verdicts)
	prometheus.MustRegister(RiskAdjustments)
	prometheus.MustRegister(SafetyAlerts)
	prometheus.MustRegister(OpinionFailures)
	prometheus.MustRegister(CouncilSize)
	prometheus.MustRegister(KafkaMessages)
	prometheus.MustRegister(ActiveStreams)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordStage records the duration of one pipeline stage
func RecordStage(stage string, duration time.Duration) {
	TriageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}
