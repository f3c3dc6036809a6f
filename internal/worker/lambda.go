package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-trellis/trellis/internal/core"
	"github.com/go-trellis/trellis/internal/models"
	"github.com/go-trellis/trellis/internal/store"

	"go.uber.org/zap"
)

// Lambda outcomes reported to metrics
const (
	outcomeSuccess  = "success"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
	outcomePanic    = "panic"
)

// LambdaDispatcher resolves the merchant of a signal and runs a lambda.
type LambdaDispatcher struct {
	store    *store.Store
	registry *Registry
	metrics  core.Recorder
	log      *zap.Logger
}

func NewLambdaDispatcher(
	s *store.Store,
	registry *Registry,
	m core.Recorder,
	log *zap.Logger,
) *LambdaDispatcher {
	return &LambdaDispatcher{
		store:    s,
		registry: registry,
		metrics:  m,
		log:      log.Named("lambda"),
	}
}

// Dispatch runs lambda name for the active merchant whose Beans card id is
// identifier. Handler failures, panics and unknown merchants are reported
// in the result; the returned error is reserved for unknown lambdas and
// storage failures.
func (d *LambdaDispatcher) Dispatch(
	ctx context.Context,
	name, identifier string,
	payload json.RawMessage,
) (*LambdaResult, error) {
	lambda, err := d.registry.Lambda(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	merchant, err := d.store.GetActiveMerchantByCard(ctx, lambda.Integration(), identifier)
	if err != nil {
		if errors.Is(err, store.ErrMerchantNotFound) {
			d.metrics.RecordLambdaRun(name, outcomeNotFound, time.Since(start))
			return &LambdaResult{Result: false, Error: "MERCHANT_NOT_FOUND " + identifier}, nil
		}
		d.metrics.RecordDatabaseQueryError("get_active_merchant_by_card")
		return nil, fmt.Errorf("failed to look up merchant: %w", err)
	}

	outcome := outcomeSuccess
	result := &LambdaResult{Result: true}
	if err := d.handle(ctx, lambda, merchant, payload); err != nil {
		outcome = outcomeError
		var p panicError
		if errors.As(err, &p) {
			outcome = outcomePanic
		}
		d.log.Warn("lambda failed",
			zap.String("lambda", name),
			zap.String("merchant_id", merchant.ID),
			zap.Error(err),
		)
		result = &LambdaResult{Result: false, Error: err.Error()}
	}

	d.metrics.RecordLambdaRun(name, outcome, time.Since(start))
	return result, nil
}

type panicError struct {
	value any
}

func (p panicError) Error() string {
	return fmt.Sprintf("PANIC %v", p.value)
}

func (d *LambdaDispatcher) handle(
	ctx context.Context,
	lambda Lambda,
	merchant *models.Merchant,
	payload json.RawMessage,
) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = panicError{value: p}
		}
	}()
	return lambda.Handle(ctx, merchant, payload)
}
