package core

import (
	"context"
	"time"
)

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Authentication
	RecordOAuthCallback(provider string, success bool)
	RecordExternalAPICall(provider string, duration time.Duration)
	RecordLogin(integration string, success bool)
	RecordLogout(integration string)
	RecordDisconnect(integration, target string)

	// Background work
	RecordCronRun(name, strategy string, records, units, errs int, duration time.Duration)
	RecordLambdaRun(name, outcome string, duration time.Duration)

	// Reviews
	RecordReviewCreated(source string)

	// Gauge Setters (for periodic updates)
	SetConnectedMerchants(integration string, count int)

	// Database Operations
	RecordDatabaseQueryError(operation string)
}

// MetricsStore defines the DB operations needed by CacheWrapper.
type MetricsStore interface {
	CountConnectedMerchants(ctx context.Context, integration string) (int64, error)
}
