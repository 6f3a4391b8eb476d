package processor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/config"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/metrics"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/models"
)

// ErrStopped is returned by ProcessReadings once Stop has been called.
var ErrStopped = errors.New("processor stopped")

// Writer persists computed readings and per-site totals.
type Writer interface {
	WriteMetrics(ctx context.Context, points []models.MetricsPoint) error
	WriteSiteSavings(ctx context.Context, savings []models.SiteSavings, ts time.Time) error
}

// Stats is a snapshot of processor counters.
type Stats struct {
	Received    uint64
	Processed   uint64
	Invalid     uint64
	Dropped     uint64
	WriteErrors uint64
}

// Processor computes metrics for incoming pump-site readings
type Processor struct {
	writer     Writer
	config     config.ProcessorConfig
	logger     *zap.Logger
	queue      chan []models.Reading
	wg         sync.WaitGroup
	aggregator *siteAggregator

	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once

	received    atomic.Uint64
	processed   atomic.Uint64
	invalid     atomic.Uint64
	dropped     atomic.Uint64
	writeErrors atomic.Uint64
}

// NewProcessor creates a new processor and starts its workers
func NewProcessor(writer Writer, cfg config.ProcessorConfig, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Processor{
		writer: writer,
		config: cfg,
		logger: logger,
		queue:  make(chan []models.Reading, cfg.QueueSize),
	}

	if cfg.EnableAggregations {
		p.aggregator = newSiteAggregator(writer, cfg.FlushInterval, logger)
	}

	p.wg.Add(cfg.WorkerCount)
	for i := 0; i < cfg.WorkerCount; i++ {
		go p.worker(i)
	}
	logger.Info("processor started",
		zap.Int("workers", cfg.WorkerCount),
		zap.Int("queue_size", cfg.QueueSize),
		zap.Bool("aggregations", cfg.EnableAggregations))

	return p
}

// ProcessReadings enqueues a batch. When the queue is full the batch is
// dropped with a warning rather than blocking the consumer.
func (p *Processor) ProcessReadings(readings []models.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	batch := make([]models.Reading, len(readings))
	copy(batch, readings)

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}

	p.received.Add(uint64(len(batch)))
	select {
	case p.queue <- batch:
	default:
		p.dropped.Add(uint64(len(batch)))
		p.logger.Warn("processing queue is full, dropping readings", zap.Int("count", len(batch)))
	}
	return nil
}

func (p *Processor) worker(id int) {
	defer p.wg.Done()

	for batch := range p.queue {
		p.handle(id, batch)
	}
}

func (p *Processor) handle(worker int, batch []models.Reading) {
	points := make([]models.MetricsPoint, 0, len(batch))
	for _, r := range batch {
		if err := metrics.Validate(r.SystemInputs); err != nil {
			p.invalid.Add(1)
			p.logger.Debug("skipping invalid reading",
				zap.String("site_id", r.SiteID),
				zap.String("reading_id", r.ID),
				zap.Error(err))
			continue
		}
		m := metrics.Compute(r.SystemInputs)
		points = append(points, models.MetricsPoint{
			Reading:        r,
			Metrics:        m,
			Recommendation: metrics.Recommend(m),
		})
	}
	if len(points) == 0 {
		return
	}

	if err := p.writer.WriteMetrics(context.Background(), points); err != nil {
		p.writeErrors.Add(1)
		p.logger.Error("failed to write metrics",
			zap.Int("worker", worker),
			zap.Int("points", len(points)),
			zap.Error(err))
		return
	}
	p.processed.Add(uint64(len(points)))

	if p.aggregator != nil {
		p.aggregator.update(points)
	}
}

// Stats returns the current counters.
func (p *Processor) Stats() Stats {
	return Stats{
		Received:    p.received.Load(),
		Processed:   p.processed.Load(),
		Invalid:     p.invalid.Load(),
		Dropped:     p.dropped.Load(),
		WriteErrors: p.writeErrors.Load(),
	}
}

// Stop drains the queue, waits for workers and flushes the aggregator
func (p *Processor) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.queue)
		p.mu.Unlock()

		p.wg.Wait()

		if p.aggregator != nil {
			p.aggregator.stop()
		}

		s := p.Stats()
		p.logger.Info("processor stopped",
			zap.Uint64("received", s.Received),
			zap.Uint64("processed", s.Processed),
			zap.Uint64("invalid", s.Invalid),
			zap.Uint64("dropped", s.Dropped),
			zap.Uint64("write_errors", s.WriteErrors))
	})
}
