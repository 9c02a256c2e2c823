package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Reconciliation Metrics
	ReconciliationsTotal      *prometheus.CounterVec
	VerificationAttemptsTotal *prometheus.CounterVec
	CorrelationFailuresTotal  *prometheus.CounterVec

	// Gateway Metrics
	GatewayRequestsTotal   *prometheus.CounterVec
	GatewayRequestDuration *prometheus.HistogramVec

	// Webhook Metrics
	WebhookCallbacksTotal  *prometheus.CounterVec
	SignatureFailuresTotal prometheus.Counter
}

func NewMetrics() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer)
}

// NewTestMetrics registers against a throwaway registry so test binaries
// can build as many instances as they need.
func NewTestMetrics() *Metrics {
	return newMetrics(prometheus.NewRegistry())
}

func newMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payments_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "payments_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served",
			},
		),

		ReconciliationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_reconciliations_total",
				Help: "Total number of reconciliation attempts by confirmation outcome and applied result",
			},
			[]string{"outcome", "result"},
		),
		VerificationAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_verification_attempts_total",
				Help: "Total number of status verification attempts by driving mode",
			},
			[]string{"mode", "result"},
		),
		CorrelationFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_correlation_failures_total",
				Help: "Total number of confirmations that could not be matched to a transaction",
			},
			[]string{"reason"},
		),

		GatewayRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_gateway_requests_total",
				Help: "Total number of payment gateway calls",
			},
			[]string{"operation", "status"},
		),
		GatewayRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payments_gateway_request_duration_seconds",
				Help:    "Duration of payment gateway calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"operation"},
		),

		WebhookCallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_webhook_callbacks_total",
				Help: "Total number of webhook callbacks received by handling result",
			},
			[]string{"result"},
		),
		SignatureFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "payments_webhook_signature_failures_total",
				Help: "Total number of webhook callbacks with a missing or invalid signature",
			},
		),
	}
}

func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration.Seconds())
}

func (m *Metrics) RecordReconciliation(outcome, result string) {
	m.ReconciliationsTotal.WithLabelValues(outcome, result).Inc()
}

func (m *Metrics) RecordVerification(mode, result string) {
	m.VerificationAttemptsTotal.WithLabelValues(mode, result).Inc()
}

func (m *Metrics) RecordCorrelationFailure(reason string) {
	m.CorrelationFailuresTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordGatewayRequest(operation, status string, duration time.Duration) {
	m.GatewayRequestsTotal.WithLabelValues(operation, status).Inc()
	m.GatewayRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) RecordWebhookCallback(result string) {
	m.WebhookCallbacksTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordSignatureFailure() {
	m.SignatureFailuresTotal.Inc()
}
