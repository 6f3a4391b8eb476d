package kafka

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Shopify/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/config"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	mu     sync.Mutex
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	msgs chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.msgs }

type fakeGroup struct {
	sarama.ConsumerGroup
	messages  []*sarama.ConsumerMessage
	session   *fakeSession
	errs      chan error
	calls     int
	closeOnce sync.Once
}

func (g *fakeGroup) Consume(ctx context.Context, _ []string, handler sarama.ConsumerGroupHandler) error {
	g.calls++
	if g.calls > 1 {
		<-ctx.Done()
		return ctx.Err()
	}

	g.session = &fakeSession{ctx: ctx}
	msgs := make(chan *sarama.ConsumerMessage, len(g.messages))
	for _, m := range g.messages {
		msgs <- m
	}
	close(msgs)

	if err := handler.Setup(g.session); err != nil {
		return err
	}
	if err := handler.ConsumeClaim(g.session, &fakeClaim{msgs: msgs}); err != nil {
		return err
	}
	return handler.Cleanup(g.session)
}

func (g *fakeGroup) Errors() <-chan error { return g.errs }

func (g *fakeGroup) Close() error {
	g.closeOnce.Do(func() { close(g.errs) })
	return nil
}

type recorder struct {
	mu      sync.Mutex
	batches [][]models.Reading
}

func (r *recorder) process(readings []models.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, readings)
	return nil
}

func (r *recorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.batches {
		n += len(b)
	}
	return n
}

func message(offset int64, key, value string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{
		Topic:     "pump-site-readings",
		Partition: 0,
		Offset:    offset,
		Key:       []byte(key),
		Value:     []byte(value),
		Timestamp: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestConsume_BatchesAndFlushesOnShutdown(t *testing.T) {
	group := &fakeGroup{
		errs: make(chan error),
		messages: []*sarama.ConsumerMessage{
			message(0, "site-1", `{"siteId":"site-1","temperature":30,"sunlightHours":10,"population":2500,"dieselPrice":1.2}`),
			message(1, "site-2", `not json`),
			message(2, "site-2", `{"temperature":25,"sunlightHours":8,"population":1000,"dieselPrice":1.0}`),
			message(3, "site-3", `{"siteId":"site-3","temperature":20,"sunlightHours":6,"population":500,"dieselPrice":0.9}`),
		},
	}
	rec := &recorder{}
	cfg := config.KafkaConfig{Topic: "pump-site-readings", BatchSize: 2}
	c := newConsumer("consumer-0", cfg, group, rec.process, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Consume(ctx) }()

	require.Eventually(t, func() bool { return rec.total() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	require.Len(t, rec.batches, 2)
	assert.Len(t, rec.batches[0], 2)
	assert.Len(t, rec.batches[1], 1)

	assert.Equal(t, []int64{0, 1, 2, 3}, group.session.marked)
}

func TestDecodeReading_FillsFromEnvelope(t *testing.T) {
	msg := message(42, "site-9", `{"temperature":30,"sunlightHours":10,"population":2500,"dieselPrice":1.2}`)

	r, err := decodeReading(msg)
	require.NoError(t, err)
	assert.Equal(t, "site-9", r.SiteID)
	assert.Equal(t, "pump-site-readings/0/42", r.ID)
	assert.Equal(t, msg.Timestamp, r.Timestamp)
	assert.Equal(t, 2500, r.Population)
}

func TestDecodeReading_PayloadWins(t *testing.T) {
	msg := message(1, "key", `{"id":"r-1","siteId":"site-1","timestamp":"2026-05-01T00:00:00Z","temperature":1}`)

	r, err := decodeReading(msg)
	require.NoError(t, err)
	assert.Equal(t, "r-1", r.ID)
	assert.Equal(t, "site-1", r.SiteID)
	assert.Equal(t, 2026, r.Timestamp.Year())
	assert.Equal(t, time.May, r.Timestamp.Month())
}

func TestDecodeReading_Malformed(t *testing.T) {
	_, err := decodeReading(message(0, "", `{`))
	assert.Error(t, err)
}
