package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/influxdb"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/kafka"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/processor"
)

const shutdownTimeout = 30 * time.Second

// consumeCmd runs the Kafka to InfluxDB telemetry pipeline
var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Process pump-site readings from Kafka into InfluxDB",
	Long: `Consume pump-site readings from Kafka, compute metrics for each valid
reading and write them to InfluxDB together with periodic per-site savings
totals. Stops on SIGINT or SIGTERM.`,
	RunE: runConsume,
}

func runConsume(cmd *cobra.Command, args []string) error {
	influxCtx, influxCancel := context.WithTimeout(cmd.Context(), cfg.InfluxDB.WriteTimeout)
	influxClient, err := influxdb.NewClient(influxCtx, cfg.InfluxDB, logger)
	influxCancel()
	if err != nil {
		return err
	}
	// Closed explicitly once consumers and processor have stopped.

	proc := processor.NewProcessor(influxClient, cfg.Processor, logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var wg sync.WaitGroup
	logger.Info("starting kafka consumers",
		zap.Int("count", cfg.Kafka.ConsumerCount),
		zap.String("topic", cfg.Kafka.Topic))

	for i := 0; i < cfg.Kafka.ConsumerCount; i++ {
		consumer, err := kafka.NewConsumer(fmt.Sprintf("consumer-%d", i), cfg.Kafka, proc.ProcessReadings, logger)
		if err != nil {
			cancel()
			wg.Wait()
			proc.Stop()
			influxClient.Close()
			return fmt.Errorf("create consumer %d: %w", i, err)
		}

		wg.Add(1)
		go func(c *kafka.Consumer, id int) {
			defer wg.Done()
			if err := c.Consume(ctx); err != nil {
				logger.Error("consumer stopped with error", zap.Int("consumer", id), zap.Error(err))
				return
			}
			logger.Info("consumer stopped", zap.Int("consumer", id))
		}(consumer, i)
	}

	select {
	case sig := <-sigChan:
		logger.Info("received termination signal, shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("all consumers stopped")
	case <-time.After(shutdownTimeout):
		logger.Warn("shutdown timed out, forcing exit")
	}

	proc.Stop()

	logger.Info("closing influxdb client")
	influxClient.Close()

	s := proc.Stats()
	logger.Info("shutdown complete",
		zap.Uint64("processed", s.Processed),
		zap.Uint64("invalid", s.Invalid),
		zap.Uint64("dropped", s.Dropped))
	return nil
}
