package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-trellis/trellis/internal/worker"

	"github.com/hibiken/asynq"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrInvalidMessage is returned for signals missing a topic or identifier
var ErrInvalidMessage = errors.New("invalid signal message")

const (
	enqueueRetryDelay = time.Second
	fetchRetryDelay   = time.Second
)

// Message is an inbound signal about one merchant, identified by its
// Beans card id.
type Message struct {
	Topic      string          `json:"topic"`
	Identifier string          `json:"identifier"`
	Payload    json.RawMessage `json:"payload"`
}

// Decode parses a signal message.
func Decode(value []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(value, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.Topic == "" || msg.Identifier == "" {
		return nil, fmt.Errorf("%w: topic and identifier are required", ErrInvalidMessage)
	}
	if len(msg.Payload) == 0 {
		msg.Payload = json.RawMessage("{}")
	}
	return &msg, nil
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer turns signals into lambda tasks. Every fetched message is
// committed once its tasks are queued; undecodable messages are logged and
// committed too.
type Consumer struct {
	reader   messageReader
	registry *worker.Registry
	enqueuer worker.Enqueuer
	log      *zap.Logger

	fetchRetryDelay   time.Duration
	enqueueRetryDelay time.Duration
}

// NewConsumer creates a consumer reading topic as part of groupID.
func NewConsumer(
	brokers []string,
	topic, groupID string,
	registry *worker.Registry,
	enqueuer worker.Enqueuer,
	log *zap.Logger,
) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10 << 20,
		StartOffset: kafka.FirstOffset,
	})
	return newConsumer(reader, registry, enqueuer, log)
}

func newConsumer(
	reader messageReader,
	registry *worker.Registry,
	enqueuer worker.Enqueuer,
	log *zap.Logger,
) *Consumer {
	return &Consumer{
		reader:   reader,
		registry: registry,
		enqueuer: enqueuer,
		log:      log.Named("signal"),

		fetchRetryDelay:   fetchRetryDelay,
		enqueueRetryDelay: enqueueRetryDelay,
	}
}

// Run fetches messages until ctx is done or the reader is closed.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				c.log.Info("signal reader closed")
				return nil
			}
			c.log.Warn("failed to fetch signal, retrying", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.fetchRetryDelay):
			}
			continue
		}

		if err := c.handle(ctx, m); err != nil {
			// Only cancellation stops handling; the message is redelivered
			return nil
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.log.Warn("failed to commit signal",
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
				zap.Error(err),
			)
		}
	}
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message) error {
	msg, err := Decode(m.Value)
	if err != nil {
		c.log.Warn("dropping undecodable signal",
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
			zap.Error(err),
		)
		return nil
	}

	for _, lambda := range c.registry.MatchLambdas(msg.Topic) {
		task, err := worker.NewLambdaTask(lambda.Name(), worker.LambdaPayload{
			Identifier: msg.Identifier,
			Payload:    msg.Payload,
		})
		if err != nil {
			c.log.Warn("failed to build lambda task", zap.String("lambda", lambda.Name()), zap.Error(err))
			continue
		}
		if err := c.enqueue(ctx, task); err != nil {
			return err
		}
		c.log.Debug("signal dispatched",
			zap.String("topic", msg.Topic),
			zap.String("lambda", lambda.Name()),
			zap.String("identifier", msg.Identifier),
		)
	}
	return nil
}

// enqueue retries until the task is queued or ctx is done.
func (c *Consumer) enqueue(ctx context.Context, task *asynq.Task) error {
	for {
		_, err := c.enqueuer.EnqueueContext(ctx, task)
		if err == nil {
			return nil
		}
		c.log.Warn("failed to enqueue lambda task, retrying",
			zap.String("task", task.Type()),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.enqueueRetryDelay):
		}
	}
}
