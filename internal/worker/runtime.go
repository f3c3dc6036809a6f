package worker

import (
	"fmt"
	"time"

	"github.com/go-trellis/trellis/internal/store"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Schedule binds a cron spec to the strategy it runs with.
type Schedule struct {
	Strategy store.Strategy
	Spec     string
}

// Runtime is the asynq server processing tasks plus the scheduler
// enqueueing the periodic cron runs.
type Runtime struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	log       *zap.Logger
}

// NewRuntime creates a runtime on the given redis connection.
func NewRuntime(
	redisOpt asynq.RedisConnOpt,
	concurrency int,
	mux *asynq.ServeMux,
	log *zap.Logger,
) *Runtime {
	log = log.Named("worker")
	return &Runtime{
		server: asynq.NewServer(redisOpt, asynq.Config{
			Concurrency: concurrency,
			Logger:      log.Sugar(),
		}),
		scheduler: asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
			Location: time.UTC,
			Logger:   log.Sugar(),
		}),
		mux: mux,
		log: log,
	}
}

// Schedule registers every cron of the registry once per schedule. An
// identical run is not queued again within a minute.
func (rt *Runtime) Schedule(registry *Registry, schedules []Schedule, batchSize int) error {
	for _, name := range registry.CronNames() {
		for _, s := range schedules {
			if s.Spec == "" {
				continue
			}
			task, err := NewCronTask(name, CronPayload{
				Strategy:  string(s.Strategy),
				BatchSize: batchSize,
			}, asynq.Unique(time.Minute))
			if err != nil {
				return err
			}
			entryID, err := rt.scheduler.Register(s.Spec, task)
			if err != nil {
				return fmt.Errorf("failed to schedule %s %s: %w", name, s.Strategy, err)
			}
			rt.log.Info("cron scheduled",
				zap.String("cron", name),
				zap.String("strategy", string(s.Strategy)),
				zap.String("spec", s.Spec),
				zap.String("entry_id", entryID),
			)
		}
	}
	return nil
}

// Start runs the server and the scheduler in the background.
func (rt *Runtime) Start() error {
	if err := rt.server.Start(rt.mux); err != nil {
		return fmt.Errorf("failed to start task server: %w", err)
	}
	if err := rt.scheduler.Start(); err != nil {
		rt.server.Shutdown()
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	return nil
}

// Shutdown stops the scheduler first, then drains the server.
func (rt *Runtime) Shutdown() {
	rt.scheduler.Shutdown()
	rt.server.Shutdown()
}
