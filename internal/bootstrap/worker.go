package bootstrap

import (
	"github.com/go-trellis/trellis/internal/config"
	"github.com/go-trellis/trellis/internal/core"
	"github.com/go-trellis/trellis/internal/signal"
	"github.com/go-trellis/trellis/internal/store"
	"github.com/go-trellis/trellis/internal/tasks"
	"github.com/go-trellis/trellis/internal/worker"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// workerSet holds the background task components. The registry, runner and
// dispatcher always exist so operators can run tasks over HTTP; runtime,
// queue and consumer are nil unless enabled.
type workerSet struct {
	registry   *worker.Registry
	runner     *worker.CronRunner
	dispatcher *worker.LambdaDispatcher

	runtime  *worker.Runtime
	queue    *asynq.Client
	consumer *signal.Consumer
}

// initializeWorkers registers the crons and lambdas of every integration
// and wires the asynq runtime and kafka consumer when configured
func initializeWorkers(
	cfg *config.Config,
	db *store.Store,
	integrations []*integration,
	recorder core.Recorder,
	log *zap.Logger,
) (*workerSet, error) {
	registry := worker.NewRegistry()
	for _, in := range integrations {
		if err := registry.RegisterCron(
			tasks.NewFetchReviewsCron(in.name, db, in.reviews, log),
		); err != nil {
			return nil, err
		}
		if err := registry.RegisterLambda(
			tasks.NewDeleteReviewsLambda(in.name, db, log),
		); err != nil {
			return nil, err
		}
	}

	ws := &workerSet{
		registry:   registry,
		runner:     worker.NewCronRunner(db, registry, cfg.CronStaleAfter, recorder, log),
		dispatcher: worker.NewLambdaDispatcher(db, registry, recorder, log),
	}
	log.Info("tasks registered",
		zap.Strings("crons", registry.CronNames()),
		zap.Strings("lambdas", registry.LambdaNames()),
	)

	if !cfg.WorkerEnabled {
		log.Info("background worker disabled, tasks run only through /tasks")
		return ws, nil
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	mux := worker.NewServeMux(registry, ws.runner, ws.dispatcher, cfg.CronBatchSize, log)
	ws.runtime = worker.NewRuntime(redisOpt, cfg.WorkerConcurrency, mux, log)
	if err := ws.runtime.Schedule(registry, []worker.Schedule{
		{Strategy: store.StrategyNew, Spec: cfg.CronScheduleNew},
		{Strategy: store.StrategyOld, Spec: cfg.CronScheduleOld},
	}, cfg.CronBatchSize); err != nil {
		return nil, err
	}

	if cfg.SignalEnabled {
		ws.queue = asynq.NewClient(redisOpt)
		ws.consumer = signal.NewConsumer(
			cfg.KafkaBrokers,
			cfg.SignalTopic,
			cfg.SignalGroupID,
			registry,
			ws.queue,
			log,
		)
		log.Info("signal consumer configured",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.SignalTopic),
			zap.String("group_id", cfg.SignalGroupID),
		)
	}

	return ws, nil
}
