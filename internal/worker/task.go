package worker

import (
	"context"
	"encoding/json"

	"github.com/go-trellis/trellis/internal/models"
)

// Cron is a batch task run over the merchants of one integration. Process
// handles a single merchant and returns the number of units it produced.
// Process may run more than once for the same merchant and must be
// idempotent.
type Cron interface {
	Name() string
	Integration() string
	Process(ctx context.Context, merchant *models.Merchant) (units int, err error)
}

// Lambda is a task triggered by an inbound signal about one merchant.
// Topic is a dot-separated pattern where "*" matches one segment.
type Lambda interface {
	Name() string
	Integration() string
	Topic() string
	Handle(ctx context.Context, merchant *models.Merchant, payload json.RawMessage) error
}

// RecordError is the failure of one merchant within a batch.
type RecordError struct {
	MerchantID string `json:"merchant_id"`
	Error      string `json:"error"`
}

// Result summarizes one cron run.
type Result struct {
	RecordsProcessed int           `json:"records_processed"`
	UnitsProcessed   int           `json:"units_processed"`
	Errors           []RecordError `json:"errors"`
}

// LambdaResult is the outcome of one lambda invocation. Error is empty on
// success.
type LambdaResult struct {
	Result bool   `json:"result"`
	Error  string `json:"error"`
}
