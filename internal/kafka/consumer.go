package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Shopify/sarama"
	"go.uber.org/zap"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/config"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/models"
)

// MessageProcessor is a function that processes batches of readings
type MessageProcessor func([]models.Reading) error

// Consumer represents a Kafka consumer
type Consumer struct {
	id         string
	config     config.KafkaConfig
	group      sarama.ConsumerGroup
	processor  MessageProcessor
	logger     *zap.Logger
	msgBuffer  []models.Reading
	bufferLock sync.Mutex
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(id string, cfg config.KafkaConfig, processor MessageProcessor, logger *zap.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = "solarwaterflow-" + id
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin

	// Optimize for throughput
	saramaConfig.Consumer.Fetch.Min = 1
	saramaConfig.Consumer.Fetch.Default = 1024 * 1024 // 1MB
	saramaConfig.Consumer.MaxWaitTime = 250 * time.Millisecond

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create consumer group %s: %w", cfg.GroupID, err)
	}

	return newConsumer(id, cfg, group, processor, logger), nil
}

func newConsumer(id string, cfg config.KafkaConfig, group sarama.ConsumerGroup, processor MessageProcessor, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{
		id:        id,
		config:    cfg,
		group:     group,
		processor: processor,
		logger:    logger.With(zap.String("consumer", id)),
		msgBuffer: make([]models.Reading, 0, cfg.BatchSize),
	}
}

// Consume reads from the configured topic until ctx is cancelled. The
// consumer group is closed and any buffered readings are flushed on return.
func (c *Consumer) Consume(ctx context.Context) error {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range c.group.Errors() {
			c.logger.Warn("consumer group error", zap.Error(err))
		}
	}()

	flushCtx, stopFlush := context.WithCancel(ctx)
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.periodicFlush(flushCtx)
	}()

	defer func() {
		stopFlush()
		if err := c.group.Close(); err != nil {
			c.logger.Warn("closing consumer group", zap.Error(err))
		}
		wg.Wait()
		c.flushBuffer()
	}()

	handler := &consumerGroupHandler{consumer: c}
	for {
		if err := c.group.Consume(ctx, []string{c.config.Topic}, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("consume %s: %w", c.config.Topic, err)
		}
		// Consume returns on rebalance; rejoin unless we are shutting down.
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) periodicFlush(ctx context.Context) {
	if c.config.BatchTimeout <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(c.config.BatchTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flushBuffer()
		case <-ctx.Done():
			return
		}
	}
}

// addMessage adds a reading to the buffer and flushes if needed
func (c *Consumer) addMessage(reading models.Reading) {
	c.bufferLock.Lock()
	defer c.bufferLock.Unlock()

	c.msgBuffer = append(c.msgBuffer, reading)

	if len(c.msgBuffer) >= c.config.BatchSize {
		c.flushBufferLocked()
	}
}

func (c *Consumer) flushBuffer() {
	c.bufferLock.Lock()
	defer c.bufferLock.Unlock()

	c.flushBufferLocked()
}

func (c *Consumer) flushBufferLocked() {
	if len(c.msgBuffer) == 0 {
		return
	}

	readings := make([]models.Reading, len(c.msgBuffer))
	copy(readings, c.msgBuffer)

	c.msgBuffer = c.msgBuffer[:0]

	if err := c.processor(readings); err != nil {
		c.logger.Error("error processing readings", zap.Int("count", len(readings)), zap.Error(err))
	}
}

// decodeReading parses a message value, filling identity and time from the
// message envelope when the payload omits them.
func decodeReading(msg *sarama.ConsumerMessage) (models.Reading, error) {
	var r models.Reading
	if err := json.Unmarshal(msg.Value, &r); err != nil {
		return models.Reading{}, err
	}
	if r.SiteID == "" {
		r.SiteID = string(msg.Key)
	}
	if r.ID == "" {
		r.ID = fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = msg.Timestamp
	}
	return r, nil
}

// consumerGroupHandler implements sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	consumer *Consumer
}

func (h *consumerGroupHandler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			reading, err := decodeReading(message)
			if err != nil {
				h.consumer.logger.Warn("error unmarshalling message",
					zap.String("topic", message.Topic),
					zap.Int32("partition", message.Partition),
					zap.Int64("offset", message.Offset),
					zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}

			h.consumer.addMessage(reading)
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
