package processor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/models"
)

// siteAggregator accumulates savings per site between flushes
type siteAggregator struct {
	writer Writer
	logger *zap.Logger

	mutex sync.Mutex
	sites map[string]*models.SiteSavings

	done chan struct{}
	wg   sync.WaitGroup
}

func newSiteAggregator(writer Writer, interval time.Duration, logger *zap.Logger) *siteAggregator {
	a := &siteAggregator{
		writer: writer,
		logger: logger,
		sites:  make(map[string]*models.SiteSavings),
		done:   make(chan struct{}),
	}

	if interval > 0 {
		a.wg.Add(1)
		go a.periodicFlush(interval)
	}
	return a
}

func (a *siteAggregator) update(points []models.MetricsPoint) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	for _, p := range points {
		s, ok := a.sites[p.Reading.SiteID]
		if !ok {
			s = &models.SiteSavings{SiteID: p.Reading.SiteID}
			a.sites[p.Reading.SiteID] = s
		}
		s.Region = p.Reading.Region
		s.ReadingCount++
		s.MoneySaved += p.Metrics.MoneySaved
		s.DieselSavedLiters += p.Metrics.DieselSavedLiters
		s.CarbonOffsetKg += p.Metrics.CarbonOffsetKg
		if p.Recommendation.Decision == models.DecisionSufficient {
			s.SufficientCount++
		}
	}
}

func (a *siteAggregator) flush() {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if len(a.sites) == 0 {
		return
	}

	savings := make([]models.SiteSavings, 0, len(a.sites))
	for _, s := range a.sites {
		savings = append(savings, *s)
	}

	// Totals are kept on failure and retried on the next flush.
	if err := a.writer.WriteSiteSavings(context.Background(), savings, time.Now()); err != nil {
		a.logger.Error("failed to write site savings", zap.Int("sites", len(savings)), zap.Error(err))
		return
	}

	a.sites = make(map[string]*models.SiteSavings)
}

func (a *siteAggregator) periodicFlush(interval time.Duration) {
	defer a.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.flush()
		case <-a.done:
			return
		}
	}
}

func (a *siteAggregator) stop() {
	close(a.done)
	a.wg.Wait()
	a.flush()
}
