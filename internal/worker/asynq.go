package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-trellis/trellis/internal/store"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	cronTaskPrefix   = "cron:"
	lambdaTaskPrefix = "lambda:"
)

// CronTaskType returns the asynq task type of a cron.
func CronTaskType(name string) string {
	return cronTaskPrefix + name
}

// LambdaTaskType returns the asynq task type of a lambda.
func LambdaTaskType(name string) string {
	return lambdaTaskPrefix + name
}

// CronPayload is the payload of a cron task.
type CronPayload struct {
	Strategy  string `json:"strategy"`
	BatchSize int    `json:"batch_size"`
}

// LambdaPayload is the payload of a lambda task.
type LambdaPayload struct {
	Identifier string          `json:"identifier"`
	Payload    json.RawMessage `json:"payload"`
}

// NewCronTask builds the task running cron name once.
func NewCronTask(name string, p CronPayload, opts ...asynq.Option) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(CronTaskType(name), payload, opts...), nil
}

// NewLambdaTask builds the task running lambda name once.
func NewLambdaTask(name string, p LambdaPayload, opts ...asynq.Option) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(LambdaTaskType(name), payload, opts...), nil
}

// Enqueuer submits tasks to the queue. *asynq.Client implements it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NewServeMux routes every registered cron and lambda to its runner.
// Malformed payloads and unknown names are not retried.
func NewServeMux(
	registry *Registry,
	runner *CronRunner,
	dispatcher *LambdaDispatcher,
	defaultBatchSize int,
	log *zap.Logger,
) *asynq.ServeMux {
	log = log.Named("asynq")
	mux := asynq.NewServeMux()

	for _, name := range registry.CronNames() {
		mux.HandleFunc(CronTaskType(name), newCronHandler(name, runner, defaultBatchSize, log))
	}
	for _, name := range registry.LambdaNames() {
		mux.HandleFunc(LambdaTaskType(name), newLambdaHandler(name, dispatcher, log))
	}
	return mux
}

func newCronHandler(
	name string,
	runner *CronRunner,
	defaultBatchSize int,
	log *zap.Logger,
) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p CronPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
		}
		strategy, err := store.ParseStrategy(strings.ToUpper(p.Strategy))
		if err != nil {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		batchSize := p.BatchSize
		if batchSize <= 0 {
			batchSize = defaultBatchSize
		}

		result, err := runner.Run(ctx, name, strategy, batchSize)
		if err != nil {
			if errors.Is(err, ErrUnknownCron) {
				return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
			}
			return err
		}
		writeResult(t, result, log)
		return nil
	}
}

func newLambdaHandler(name string, dispatcher *LambdaDispatcher, log *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p LambdaPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
		}

		result, err := dispatcher.Dispatch(ctx, name, p.Identifier, p.Payload)
		if err != nil {
			if errors.Is(err, ErrUnknownLambda) {
				return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
			}
			return err
		}
		writeResult(t, result, log)
		return nil
	}
}

// writeResult stores the JSON result on the task. Tasks built outside a
// server have no result writer.
func writeResult(t *asynq.Task, result any, log *zap.Logger) {
	rw := t.ResultWriter()
	if rw == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		log.Warn("failed to encode task result", zap.String("task", t.Type()), zap.Error(err))
		return
	}
	if _, err := rw.Write(data); err != nil {
		log.Warn("failed to write task result", zap.String("task", t.Type()), zap.Error(err))
	}
}
