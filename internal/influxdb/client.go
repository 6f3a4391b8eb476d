package influxdb

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"go.uber.org/zap"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/config"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/models"
)

const (
	measurementMetrics = "solar_water_metrics"
	measurementSavings = "site_savings"
)

// Client represents an InfluxDB v2 client
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	config   config.InfluxDBConfig
	logger   *zap.Logger
}

// NewClient initializes the InfluxDB v2 client and verifies connectivity
func NewClient(ctx context.Context, cfg config.InfluxDBConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := influxdb2.DefaultOptions()
	if cfg.WriteTimeout > 0 {
		opts.SetHTTPRequestTimeout(uint(cfg.WriteTimeout / time.Second))
	}
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)

	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}
	if health.Status != domain.HealthCheckStatusPass {
		client.Close()
		return nil, fmt.Errorf("influxdb unhealthy: status %s", health.Status)
	}

	logger.Info("influxdb connection verified",
		zap.String("url", cfg.URL),
		zap.String("org", cfg.Org),
		zap.String("bucket", cfg.Bucket))

	return &Client{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		config:   cfg,
		logger:   logger,
	}, nil
}

// WriteMetrics writes one solar_water_metrics point per reading.
func (c *Client) WriteMetrics(ctx context.Context, points []models.MetricsPoint) error {
	if len(points) == 0 {
		return nil
	}

	batch := make([]*write.Point, 0, len(points))
	for _, p := range points {
		batch = append(batch, metricsPoint(p))
	}

	if err := c.writeAPI.WritePoint(ctx, batch...); err != nil {
		return fmt.Errorf("write %s: %w", measurementMetrics, err)
	}
	c.logger.Debug("metrics written", zap.Int("points", len(batch)))
	return nil
}

// WriteSiteSavings writes aggregated per-site totals stamped at ts.
func (c *Client) WriteSiteSavings(ctx context.Context, savings []models.SiteSavings, ts time.Time) error {
	if len(savings) == 0 {
		return nil
	}

	batch := make([]*write.Point, 0, len(savings))
	for _, s := range savings {
		batch = append(batch, savingsPoint(s, ts))
	}

	if err := c.writeAPI.WritePoint(ctx, batch...); err != nil {
		return fmt.Errorf("write %s: %w", measurementSavings, err)
	}
	c.logger.Debug("site savings written", zap.Int("sites", len(batch)))
	return nil
}

// Close closes the InfluxDB client
func (c *Client) Close() {
	c.client.Close()
}

func metricsPoint(p models.MetricsPoint) *write.Point {
	ts := p.Reading.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return write.NewPoint(
		measurementMetrics,
		map[string]string{
			"site_id":  p.Reading.SiteID,
			"region":   p.Reading.Region,
			"decision": string(p.Recommendation.Decision),
		},
		map[string]interface{}{
			"temperature":         p.Reading.Temperature,
			"sunlight_hours":      p.Reading.SunlightHours,
			"population":          p.Reading.Population,
			"diesel_price":        p.Reading.DieselPrice,
			"solar_energy_kwh":    p.Metrics.SolarEnergyKWh,
			"water_demand_liters": p.Metrics.WaterDemandLiters,
			"energy_needed_kwh":   p.Metrics.EnergyNeededKWh,
			"diesel_saved_liters": p.Metrics.DieselSavedLiters,
			"money_saved":         p.Metrics.MoneySaved,
			"carbon_offset_kg":    p.Metrics.CarbonOffsetKg,
		},
		ts,
	)
}

func savingsPoint(s models.SiteSavings, ts time.Time) *write.Point {
	return write.NewPoint(
		measurementSavings,
		map[string]string{
			"site_id": s.SiteID,
			"region":  s.Region,
		},
		map[string]interface{}{
			"reading_count":       s.ReadingCount,
			"sufficient_count":    s.SufficientCount,
			"money_saved":         s.MoneySaved,
			"diesel_saved_liters": s.DieselSavedLiters,
			"carbon_offset_kg":    s.CarbonOffsetKg,
		},
		ts,
	)
}
