package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-trellis/trellis/internal/metrics"
	"github.com/go-trellis/trellis/internal/models"
	"github.com/go-trellis/trellis/internal/store"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testIntegration = "instagram"

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createMerchant(t *testing.T, s *store.Store, cardID string, active bool) *models.Merchant {
	t.Helper()
	token := "sk-" + cardID
	m := &models.Merchant{
		Integration:      testIntegration,
		BeansCardID:      cardID,
		BeansAccessToken: &token,
		IsActive:         active,
		Extension:        models.DefaultExtension(testIntegration),
	}
	require.NoError(t, s.CreateMerchant(context.Background(), m))
	return m
}

type fakeCron struct {
	seen  []string
	fail  map[string]error
	panic map[string]bool
	units int
}

func (f *fakeCron) Name() string        { return "fake_cron" }
func (f *fakeCron) Integration() string { return testIntegration }

func (f *fakeCron) Process(_ context.Context, m *models.Merchant) (int, error) {
	f.seen = append(f.seen, m.BeansCardID)
	if f.panic[m.BeansCardID] {
		panic("boom")
	}
	if err := f.fail[m.BeansCardID]; err != nil {
		return 0, err
	}
	return f.units, nil
}

type fakeLambda struct {
	err      error
	panics   bool
	handled  []string
	payloads []json.RawMessage
}

func (f *fakeLambda) Name() string        { return "fake_lambda" }
func (f *fakeLambda) Integration() string { return testIntegration }
func (f *fakeLambda) Topic() string       { return "stem.liana.*.account.delete" }

func (f *fakeLambda) Handle(_ context.Context, m *models.Merchant, payload json.RawMessage) error {
	if f.panics {
		panic("exploded")
	}
	f.handled = append(f.handled, m.ID)
	f.payloads = append(f.payloads, payload)
	return f.err
}

func newRunner(t *testing.T, s *store.Store, crons ...Cron) *CronRunner {
	t.Helper()
	registry := NewRegistry()
	for _, c := range crons {
		require.NoError(t, registry.RegisterCron(c))
	}
	return NewCronRunner(s, registry, 7*24*time.Hour, metrics.NewNoopMetrics(), zap.NewNop())
}

func TestCronRunner_NewStrategyPicksUnfetched(t *testing.T) {
	s := setupTestStore(t)
	m := createMerchant(t, s, "card_new", true)
	cron := &fakeCron{units: 3}
	runner := newRunner(t, s, cron)

	result, err := runner.Run(context.Background(), "fake_cron", store.StrategyNew, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, result.RecordsProcessed)
	assert.Equal(t, 3, result.UnitsProcessed)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{m.BeansCardID}, cron.seen)
}

func TestCronRunner_StrategiesAreExclusive(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createMerchant(t, s, "card_new", true)
	old := createMerchant(t, s, "card_old", true)
	fresh := createMerchant(t, s, "card_fresh", true)
	createMerchant(t, s, "card_inactive", false)

	require.NoError(t, s.AdvanceFetchCursor(ctx, old.ID, time.Now().Add(-30*24*time.Hour)))
	require.NoError(t, s.AdvanceFetchCursor(ctx, fresh.ID, time.Now()))

	tests := []struct {
		strategy store.Strategy
		want     []string
	}{
		{store.StrategyNew, []string{"card_new"}},
		{store.StrategyOld, []string{"card_old"}},
		{store.StrategyAll, []string{"card_new", "card_old"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			cron := &fakeCron{}
			result, err := newRunner(t, s, cron).Run(ctx, "fake_cron", tt.strategy, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cron.seen)
			assert.Equal(t, len(tt.want), result.RecordsProcessed)
		})
	}

	stats, err := newRunner(t, s, &fakeCron{}).Stats(ctx, "fake_cron")
	require.NoError(t, err)
	assert.Equal(t, map[store.Strategy]int64{store.StrategyNew: 1, store.StrategyOld: 1}, stats)
}

func TestCronRunner_ErrorsDoNotStopBatch(t *testing.T) {
	s := setupTestStore(t)
	a := createMerchant(t, s, "card_a", true)
	b := createMerchant(t, s, "card_b", true)
	createMerchant(t, s, "card_c", true)

	cron := &fakeCron{
		units: 1,
		fail:  map[string]error{"card_a": errors.New("graph api down")},
		panic: map[string]bool{"card_b": true},
	}
	result, err := newRunner(t, s, cron).Run(context.Background(), "fake_cron", store.StrategyAll, 10)
	require.NoError(t, err)

	assert.Equal(t, 3, result.RecordsProcessed)
	assert.Equal(t, 1, result.UnitsProcessed)
	require.Len(t, result.Errors, 2)

	byMerchant := map[string]string{}
	for _, e := range result.Errors {
		byMerchant[e.MerchantID] = e.Error
	}
	assert.Equal(t, "graph api down", byMerchant[a.ID])
	assert.Equal(t, "PANIC boom", byMerchant[b.ID])
}

func TestCronRunner_BatchSizeAndUnknownCron(t *testing.T) {
	s := setupTestStore(t)
	for _, card := range []string{"c1", "c2", "c3"} {
		createMerchant(t, s, card, true)
	}
	cron := &fakeCron{}
	runner := newRunner(t, s, cron)

	result, err := runner.Run(context.Background(), "fake_cron", store.StrategyNew, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result.RecordsProcessed)

	_, err = runner.Run(context.Background(), "missing", store.StrategyNew, 2)
	assert.ErrorIs(t, err, ErrUnknownCron)

	_, err = runner.Run(context.Background(), "fake_cron", store.StrategyNew, 0)
	assert.Error(t, err)
}

func newDispatcher(t *testing.T, s *store.Store, l Lambda) *LambdaDispatcher {
	t.Helper()
	registry := NewRegistry()
	require.NoError(t, registry.RegisterLambda(l))
	return NewLambdaDispatcher(s, registry, metrics.NewNoopMetrics(), zap.NewNop())
}

func TestLambdaDispatcher_MerchantNotFound(t *testing.T) {
	s := setupTestStore(t)
	createMerchant(t, s, "card_inactive", false)
	lambda := &fakeLambda{}
	d := newDispatcher(t, s, lambda)

	for _, id := range []string{"card_unknown", "card_inactive"} {
		result, err := d.Dispatch(context.Background(), "fake_lambda", id, json.RawMessage(`{}`))
		require.NoError(t, err)
		assert.False(t, result.Result)
		assert.Equal(t, "MERCHANT_NOT_FOUND "+id, result.Error)
	}
	assert.Empty(t, lambda.handled)
}

func TestLambdaDispatcher_Outcomes(t *testing.T) {
	s := setupTestStore(t)
	m := createMerchant(t, s, "card_1", true)
	payload := json.RawMessage(`{"account_data":{"email":"a@b.c"}}`)

	lambda := &fakeLambda{}
	result, err := newDispatcher(t, s, lambda).Dispatch(context.Background(), "fake_lambda", "card_1", payload)
	require.NoError(t, err)
	assert.Equal(t, &LambdaResult{Result: true}, result)
	assert.Equal(t, []string{m.ID}, lambda.handled)
	assert.JSONEq(t, string(payload), string(lambda.payloads[0]))

	failing := &fakeLambda{err: errors.New("nope")}
	result, err = newDispatcher(t, s, failing).Dispatch(context.Background(), "fake_lambda", "card_1", payload)
	require.NoError(t, err)
	assert.Equal(t, &LambdaResult{Result: false, Error: "nope"}, result)

	panicking := &fakeLambda{panics: true}
	result, err = newDispatcher(t, s, panicking).Dispatch(context.Background(), "fake_lambda", "card_1", payload)
	require.NoError(t, err)
	assert.False(t, result.Result)
	assert.Equal(t, "PANIC exploded", result.Error)

	_, err = newDispatcher(t, s, lambda).Dispatch(context.Background(), "other", "card_1", payload)
	assert.ErrorIs(t, err, ErrUnknownLambda)
}

func TestMatchTopic(t *testing.T) {
	tests := []struct {
		pattern, topic string
		want           bool
	}{
		{"stem.liana.*.account.delete", "stem.liana.loyalty.account.delete", true},
		{"stem.liana.*.account.delete", "stem.liana.account.delete", false},
		{"stem.liana.*.account.delete", "stem.liana.loyalty.account.create", false},
		{"stem.liana.*.account.delete", "stem.liana.a.b.account.delete", false},
		{"stem.liana.loyalty.account.delete", "stem.liana.loyalty.account.delete", true},
		{"*", "anything", true},
		{"", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchTopic(tt.pattern, tt.topic), "%s vs %s", tt.pattern, tt.topic)
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterCron(&fakeCron{}))
	require.NoError(t, registry.RegisterLambda(&fakeLambda{}))

	assert.ErrorIs(t, registry.RegisterCron(&fakeCron{}), ErrDuplicateTask)
	assert.ErrorIs(t, registry.RegisterLambda(&fakeLambda{}), ErrDuplicateTask)

	assert.Equal(t, []string{"fake_cron"}, registry.CronNames())
	assert.Equal(t, []string{"fake_lambda"}, registry.LambdaNames())

	matched := registry.MatchLambdas("stem.liana.beans.account.delete")
	require.Len(t, matched, 1)
	assert.Equal(t, "fake_lambda", matched[0].Name())
	assert.Empty(t, registry.MatchLambdas("stem.liana.beans.account.create"))
}

func TestServeMux_CronTask(t *testing.T) {
	s := setupTestStore(t)
	createMerchant(t, s, "card_1", true)

	cron := &fakeCron{units: 2}
	registry := NewRegistry()
	require.NoError(t, registry.RegisterCron(cron))
	runner := NewCronRunner(s, registry, time.Hour, metrics.NewNoopMetrics(), zap.NewNop())
	dispatcher := NewLambdaDispatcher(s, registry, metrics.NewNoopMetrics(), zap.NewNop())
	mux := NewServeMux(registry, runner, dispatcher, 50, zap.NewNop())

	task, err := NewCronTask("fake_cron", CronPayload{Strategy: "new"})
	require.NoError(t, err)
	assert.Equal(t, "cron:fake_cron", task.Type())
	require.NoError(t, mux.ProcessTask(context.Background(), task))
	assert.Equal(t, []string{"card_1"}, cron.seen)

	bad := asynq.NewTask("cron:fake_cron", []byte("{"))
	err = mux.ProcessTask(context.Background(), bad)
	assert.ErrorIs(t, err, asynq.SkipRetry)

	invalid, err := NewCronTask("fake_cron", CronPayload{Strategy: "SOMETIMES"})
	require.NoError(t, err)
	assert.ErrorIs(t, mux.ProcessTask(context.Background(), invalid), asynq.SkipRetry)
}

func TestServeMux_LambdaTask(t *testing.T) {
	s := setupTestStore(t)
	m := createMerchant(t, s, "card_1", true)

	lambda := &fakeLambda{}
	registry := NewRegistry()
	require.NoError(t, registry.RegisterLambda(lambda))
	runner := NewCronRunner(s, registry, time.Hour, metrics.NewNoopMetrics(), zap.NewNop())
	dispatcher := NewLambdaDispatcher(s, registry, metrics.NewNoopMetrics(), zap.NewNop())
	mux := NewServeMux(registry, runner, dispatcher, 50, zap.NewNop())

	task, err := NewLambdaTask("fake_lambda", LambdaPayload{
		Identifier: "card_1",
		Payload:    json.RawMessage(`{"account_data":{"email":"x@y.z"}}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "lambda:fake_lambda", task.Type())
	require.NoError(t, mux.ProcessTask(context.Background(), task))
	assert.Equal(t, []string{m.ID}, lambda.handled)

	// Unknown merchants are reported in the result, not retried
	missing, err := NewLambdaTask("fake_lambda", LambdaPayload{Identifier: "card_x"})
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), missing))
}
