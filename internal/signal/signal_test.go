package signal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-trellis/trellis/internal/models"
	"github.com/go-trellis/trellis/internal/worker"

	"github.com/hibiken/asynq"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	m := r.messages[0]
	r.messages = r.messages[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

// failingReader returns err from every fetch.
type failingReader struct {
	err   error
	calls atomic.Int32
}

func (r *failingReader) FetchMessage(context.Context) (kafka.Message, error) {
	r.calls.Add(1)
	return kafka.Message{}, r.err
}

func (r *failingReader) CommitMessages(context.Context, ...kafka.Message) error { return nil }

func (r *failingReader) Close() error { return nil }

type fakeEnqueuer struct {
	tasks []*asynq.Task
	fail  int
}

func (e *fakeEnqueuer) EnqueueContext(
	_ context.Context,
	task *asynq.Task,
	_ ...asynq.Option,
) (*asynq.TaskInfo, error) {
	if e.fail > 0 {
		e.fail--
		return nil, errors.New("redis unavailable")
	}
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

type stubLambda struct {
	name, topic string
}

func (l stubLambda) Name() string        { return l.name }
func (l stubLambda) Integration() string { return "instagram" }
func (l stubLambda) Topic() string       { return l.topic }
func (l stubLambda) Handle(context.Context, *models.Merchant, json.RawMessage) error {
	return nil
}

func TestDecode(t *testing.T) {
	msg, err := Decode([]byte(`{"topic":"stem.liana.beans.account.delete","identifier":"card_1","payload":{"account_data":{"email":"a@b.c"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "stem.liana.beans.account.delete", msg.Topic)
	assert.Equal(t, "card_1", msg.Identifier)
	assert.JSONEq(t, `{"account_data":{"email":"a@b.c"}}`, string(msg.Payload))

	msg, err = Decode([]byte(`{"topic":"t","identifier":"i"}`))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(msg.Payload))

	_, err = Decode([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = Decode([]byte(`{"topic":"t"}`))
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestConsumer_Run(t *testing.T) {
	registry := worker.NewRegistry()
	require.NoError(t, registry.RegisterLambda(stubLambda{"instagram_delete_reviews", "stem.liana.*.account.delete"}))
	require.NoError(t, registry.RegisterLambda(stubLambda{"other", "stem.liana.*.account.create"}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		messages: []kafka.Message{
			{Offset: 1, Value: []byte(`{"topic":"stem.liana.beans.account.delete","identifier":"card_1","payload":{"account_data":{"email":"a@b.c"}}}`)},
			{Offset: 2, Value: []byte(`garbage`)},
			{Offset: 3, Value: []byte(`{"topic":"stem.liana.beans.account.update","identifier":"card_1"}`)},
		},
	}
	enqueuer := &fakeEnqueuer{fail: 1}

	consumer := newConsumer(reader, registry, enqueuer, zap.NewNop())
	consumer.enqueueRetryDelay = time.Millisecond
	require.NoError(t, consumer.Run(ctx))

	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
	require.Len(t, enqueuer.tasks, 1)
	assert.Equal(t, "lambda:instagram_delete_reviews", enqueuer.tasks[0].Type())

	var payload worker.LambdaPayload
	require.NoError(t, json.Unmarshal(enqueuer.tasks[0].Payload(), &payload))
	assert.Equal(t, "card_1", payload.Identifier)
	assert.JSONEq(t, `{"account_data":{"email":"a@b.c"}}`, string(payload.Payload))
}

func TestConsumer_RunStopsWhenReaderClosed(t *testing.T) {
	for _, readerErr := range []error{io.EOF, io.ErrClosedPipe} {
		t.Run(readerErr.Error(), func(t *testing.T) {
			reader := &failingReader{err: readerErr}
			consumer := newConsumer(reader, worker.NewRegistry(), &fakeEnqueuer{}, zap.NewNop())

			done := make(chan error, 1)
			go func() { done <- consumer.Run(context.Background()) }()

			select {
			case err := <-done:
				require.NoError(t, err)
			case <-time.After(2 * time.Second):
				t.Fatal("Run did not return after the reader was closed")
			}
			assert.Equal(t, int32(1), reader.calls.Load())
		})
	}
}

func TestConsumer_RunBacksOffOnFetchError(t *testing.T) {
	reader := &failingReader{err: errors.New("broker unavailable")}
	consumer := newConsumer(reader, worker.NewRegistry(), &fakeEnqueuer{}, zap.NewNop())
	consumer.fetchRetryDelay = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, consumer.Run(ctx))

	calls := reader.calls.Load()
	assert.GreaterOrEqual(t, calls, int32(2))
	assert.LessOrEqual(t, calls, int32(4))
}
