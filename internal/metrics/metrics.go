package metrics

import (
	"sync"
	"time"

	"github.com/go-trellis/trellis/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ensure Metrics implements core.Recorder at compile time
var _ core.Recorder = (*Metrics)(nil)

const (
	resultSuccess = "success"
	resultError   = "error"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Authentication Metrics
	OAuthCallbackTotal  *prometheus.CounterVec
	ExternalAPIDuration *prometheus.HistogramVec
	LoginTotal          *prometheus.CounterVec
	LogoutTotal         *prometheus.CounterVec
	DisconnectTotal     *prometheus.CounterVec
	MerchantsConnected  *prometheus.GaugeVec

	// Background Work Metrics
	CronRunsTotal        *prometheus.CounterVec
	CronRecordsProcessed *prometheus.CounterVec
	CronUnitsProcessed   *prometheus.CounterVec
	CronErrorsTotal      *prometheus.CounterVec
	CronRunDuration      *prometheus.HistogramVec
	LambdaRunsTotal      *prometheus.CounterVec
	LambdaRunDuration    *prometheus.HistogramVec
	ReviewsCreatedTotal  *prometheus.CounterVec

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database Query Metrics
	DatabaseQueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) core.Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	return &Metrics{
		OAuthCallbackTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trellis_oauth_callbacks_total",
				Help: "Total number of OAuth callbacks handled",
			},
			[]string{"provider", "result"}, // provider: beans, instagram
		),
		ExternalAPIDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trellis_external_api_duration_seconds",
				Help:    "Duration of calls to upstream OAuth and graph APIs",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		LoginTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trellis_logins_total",
				Help: "Total number of merchant logins",
			},
			[]string{"integration", "result"},
		),
		LogoutTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trellis_logouts_total",
				Help: "Total number of merchant logouts",
			},
			[]string{"integration"},
		),
		DisconnectTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trellis_disconnects_total",
				Help: "Total number of account disconnections",
			},
			[]string{"integration", "target"}, // target: beans, third_party
		),
		MerchantsConnected: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "trellis_merchants_connected",
				Help: "Current number of active merchants with a linked third-party account",
			},
			[]string{"integration"},
		),

		CronRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trellis_cron_runs_total",
				Help: "Total number of cron runs",
			},
			[]string{"cron", "strategy"},
		),
		CronRecordsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trellis_cron_records_processed_total",
				Help: "Total number of records processed by crons",
			},
			[]string{"cron"},
		),
		CronUnitsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trellis_cron_units_processed_total",
				Help: "Total number of work units produced by crons",
			},
			[]string{"cron"},
		),
		CronErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trellis_cron_errors_total",
				Help: "Total number of per-record cron errors",
			},
			[]string{"cron"},
		),
		CronRunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trellis_cron_run_duration_seconds",
				Help:    "Duration of cron runs",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"cron"},
		),
		LambdaRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trellis_lambda_runs_total",
				Help: "Total number of lambda invocations",
			},
			[]string{"lambda", "outcome"}, // outcome: success, error, not_found
		),
		LambdaRunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trellis_lambda_run_duration_seconds",
				Help:    "Duration of lambda invocations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"lambda"},
		),
		ReviewsCreatedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trellis_reviews_created_total",
				Help: "Total number of reviews created",
			},
			[]string{"source"}, // api, webhook, cron
		),

		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),

		DatabaseQueryErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trellis_database_query_errors_total",
				Help: "Total number of database query errors during metric collection",
			},
			[]string{"operation"},
		),
	}
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return defaultMetrics
}

func result(success bool) string {
	if success {
		return resultSuccess
	}
	return resultError
}

// RecordOAuthCallback records an OAuth callback outcome
func (m *Metrics) RecordOAuthCallback(provider string, success bool) {
	m.OAuthCallbackTotal.WithLabelValues(provider, result(success)).Inc()
}

// RecordExternalAPICall records external API call duration
func (m *Metrics) RecordExternalAPICall(provider string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordLogin records a merchant login attempt
func (m *Metrics) RecordLogin(integration string, success bool) {
	m.LoginTotal.WithLabelValues(integration, result(success)).Inc()
}

// RecordLogout records a merchant logout
func (m *Metrics) RecordLogout(integration string) {
	m.LogoutTotal.WithLabelValues(integration).Inc()
}

// RecordDisconnect records an account disconnection
func (m *Metrics) RecordDisconnect(integration, target string) {
	m.DisconnectTotal.WithLabelValues(integration, target).Inc()
}

// RecordCronRun records the outcome of one cron run
func (m *Metrics) RecordCronRun(
	name, strategy string,
	records, units, errs int,
	duration time.Duration,
) {
	m.CronRunsTotal.WithLabelValues(name, strategy).Inc()
	m.CronRecordsProcessed.WithLabelValues(name).Add(float64(records))
	m.CronUnitsProcessed.WithLabelValues(name).Add(float64(units))
	m.CronErrorsTotal.WithLabelValues(name).Add(float64(errs))
	m.CronRunDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// RecordLambdaRun records the outcome of one lambda invocation
func (m *Metrics) RecordLambdaRun(name, outcome string, duration time.Duration) {
	m.LambdaRunsTotal.WithLabelValues(name, outcome).Inc()
	m.LambdaRunDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// RecordReviewCreated records a stored review
func (m *Metrics) RecordReviewCreated(source string) {
	m.ReviewsCreatedTotal.WithLabelValues(source).Inc()
}

// SetConnectedMerchants sets the connected merchant gauge (for periodic updates)
func (m *Metrics) SetConnectedMerchants(integration string, count int) {
	m.MerchantsConnected.WithLabelValues(integration).Set(float64(count))
}

// RecordDatabaseQueryError records a database query error during metric collection
func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}
