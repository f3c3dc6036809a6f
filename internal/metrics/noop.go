package metrics

import (
	"time"

	"github.com/go-trellis/trellis/internal/core"
)

// NoopMetrics is a no-operation implementation of core.Recorder
// All methods are empty and do nothing, providing zero overhead when metrics are disabled
type NoopMetrics struct{}

var _ core.Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() core.Recorder {
	return &NoopMetrics{}
}

// Authentication - noop implementations
func (n *NoopMetrics) RecordOAuthCallback(provider string, success bool)             {}
func (n *NoopMetrics) RecordExternalAPICall(provider string, duration time.Duration) {}
func (n *NoopMetrics) RecordLogin(integration string, success bool)                  {}
func (n *NoopMetrics) RecordLogout(integration string)                               {}
func (n *NoopMetrics) RecordDisconnect(integration, target string)                   {}

// Background work - noop implementations
func (n *NoopMetrics) RecordCronRun(
	name, strategy string,
	records, units, errs int,
	duration time.Duration,
) {
}

func (n *NoopMetrics) RecordLambdaRun(name, outcome string, duration time.Duration) {}
func (n *NoopMetrics) RecordReviewCreated(source string)                             {}

// Gauge Setters - noop implementations
func (n *NoopMetrics) SetConnectedMerchants(integration string, count int) {}

// Database Operations - noop implementations
func (n *NoopMetrics) RecordDatabaseQueryError(operation string) {}
