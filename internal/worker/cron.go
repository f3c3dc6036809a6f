package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-trellis/trellis/internal/core"
	"github.com/go-trellis/trellis/internal/models"
	"github.com/go-trellis/trellis/internal/store"

	"go.uber.org/zap"
)

// CronRunner selects merchant batches and feeds them to a cron.
type CronRunner struct {
	store      *store.Store
	registry   *Registry
	staleAfter time.Duration
	metrics    core.Recorder
	log        *zap.Logger
	now        func() time.Time
}

// NewCronRunner creates a runner. A merchant is OLD once its fetch cursor
// is staleAfter in the past.
func NewCronRunner(
	s *store.Store,
	registry *Registry,
	staleAfter time.Duration,
	m core.Recorder,
	log *zap.Logger,
) *CronRunner {
	return &CronRunner{
		store:      s,
		registry:   registry,
		staleAfter: staleAfter,
		metrics:    m,
		log:        log.Named("cron"),
		now:        time.Now,
	}
}

// Run processes one batch of at most batchSize merchants matching strategy.
// A failing merchant is recorded in the result and the batch goes on.
func (r *CronRunner) Run(
	ctx context.Context,
	name string,
	strategy store.Strategy,
	batchSize int,
) (*Result, error) {
	cron, err := r.registry.Cron(name)
	if err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	if err := r.store.EnsureMigrated(ctx); err != nil {
		return nil, err
	}

	start := r.now()
	merchants, err := r.store.SelectBatch(ctx, cron.Integration(), strategy, batchSize, start.Add(-r.staleAfter))
	if err != nil {
		r.metrics.RecordDatabaseQueryError("select_batch")
		return nil, err
	}

	result := &Result{Errors: []RecordError{}}
	for i := range merchants {
		if err := ctx.Err(); err != nil {
			r.finish(name, strategy, result, start)
			return result, err
		}

		m := &merchants[i]
		units, err := r.process(ctx, cron, m)
		result.RecordsProcessed++
		result.UnitsProcessed += units
		if err != nil {
			r.log.Warn("cron record failed",
				zap.String("cron", name),
				zap.String("merchant_id", m.ID),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, RecordError{MerchantID: m.ID, Error: err.Error()})
		}
	}

	r.finish(name, strategy, result, start)
	return result, nil
}

func (r *CronRunner) process(ctx context.Context, cron Cron, m *models.Merchant) (units int, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = panicError{value: p}
		}
	}()
	return cron.Process(ctx, m)
}

func (r *CronRunner) finish(name string, strategy store.Strategy, result *Result, start time.Time) {
	elapsed := r.now().Sub(start)
	r.metrics.RecordCronRun(name, string(strategy),
		result.RecordsProcessed, result.UnitsProcessed, len(result.Errors), elapsed)
	r.log.Info("cron run finished",
		zap.String("cron", name),
		zap.String("strategy", string(strategy)),
		zap.Int("records_processed", result.RecordsProcessed),
		zap.Int("units_processed", result.UnitsProcessed),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("duration", elapsed),
	)
}

// Stats counts the merchants each strategy would currently select.
func (r *CronRunner) Stats(ctx context.Context, name string) (map[store.Strategy]int64, error) {
	cron, err := r.registry.Cron(name)
	if err != nil {
		return nil, err
	}
	if err := r.store.EnsureMigrated(ctx); err != nil {
		return nil, err
	}

	staleBefore := r.now().Add(-r.staleAfter)
	stats := make(map[store.Strategy]int64, len(store.Strategies))
	for _, strategy := range store.Strategies {
		n, err := r.store.CountByStrategy(ctx, cron.Integration(), strategy, staleBefore)
		if err != nil {
			r.metrics.RecordDatabaseQueryError("count_by_strategy")
			return nil, err
		}
		stats[strategy] = n
	}
	return stats, nil
}
